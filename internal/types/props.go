package types

import "sort"

// Props maps placeholder names to property values.
type Props map[string]Value

// Clone returns an independent copy of p. A nil map clones to an empty one.
func (p Props) Clone() Props {
	out := make(Props, len(p))
	for k, v := range p {
		out[k] = v
	}

	return out
}

// Merge layers overrides on top of defaults into a new map.
func Merge(defaults, overrides Props) Props {
	out := make(Props, len(defaults)+len(overrides))
	for k, v := range defaults {
		out[k] = v
	}
	for k, v := range overrides {
		out[k] = v
	}

	return out
}

// Keys returns the property names in sorted order.
func (p Props) Keys() []string {
	return sortedKeys(p)
}

// Equal reports whether both maps hold the same keys and values.
func (p Props) Equal(o Props) bool {
	if len(p) != len(o) {
		return false
	}
	for k, v := range p {
		ov, ok := o[k]
		if !ok || !v.Equal(ov) {
			return false
		}
	}

	return true
}

// Styles maps CSS property names (camelCase or kebab-case) to values.
type Styles map[string]string

// Clone returns an independent copy of s. A nil map clones to an empty one.
func (s Styles) Clone() Styles {
	out := make(Styles, len(s))
	for k, v := range s {
		out[k] = v
	}

	return out
}

// Keys returns the property names in sorted order. Every generated stylesheet
// walks styles in this order so output is deterministic.
func (s Styles) Keys() []string {
	return sortedKeys(s)
}

// Apply merges patch into a copy of s. An empty value deletes the key.
func (s Styles) Apply(patch Styles) Styles {
	out := s.Clone()
	for k, v := range patch {
		if v == "" {
			delete(out, k)
			continue
		}
		out[k] = v
	}

	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
