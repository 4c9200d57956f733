// Package render performs the textual template substitution and inline style
// injection used by both the exporter and the preview server.
//
// Substitution is purely textual. Property values are inserted without any
// escaping, so a value containing markup changes the structure of the output.
// Exported files depend on this byte-for-byte.
package render

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/conneroisu/webbuilder/internal/types"
)

var (
	placeholderRe = regexp.MustCompile(`\{\{([^{}]+)\}\}`)
	rootTagRe     = regexp.MustCompile(`^<([a-zA-Z]+)`)
	styleAttrRe   = regexp.MustCompile(`style="([^"]*)"`)
)

// Substitute replaces every {{key}} in tmpl with the text of props[key].
// Keys that are absent or null become the empty string.
func Substitute(tmpl string, props types.Props) string {
	return placeholderRe.ReplaceAllStringFunc(tmpl, func(token string) string {
		key := token[2 : len(token)-2]
		return props[key].Text()
	})
}

// Placeholders lists the distinct placeholder names in tmpl in order of first use.
func Placeholders(tmpl string) []string {
	var names []string
	seen := make(map[string]bool)
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		if !seen[m[1]] {
			seen[m[1]] = true
			names = append(names, m[1])
		}
	}

	return names
}

// KebabCase converts a camelCase CSS property name to kebab-case by prefixing
// every upper-case letter with a dash and lower-casing the result.
// backgroundColor becomes background-color; already-kebab names pass through.
func KebabCase(name string) string {
	var b strings.Builder
	b.Grow(len(name) + 4)
	for _, r := range name {
		if unicode.IsUpper(r) {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}

	return strings.ToLower(b.String())
}

// Declarations renders styles as "prop: value" pairs joined with "; ",
// the form used inside an inline style attribute.
func Declarations(styles types.Styles) string {
	keys := styles.Keys()
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, KebabCase(k)+": "+styles[k])
	}

	return strings.Join(parts, "; ")
}

// InjectStyle adds styles to the first tag of fragment. When the first tag
// already has a style attribute the declarations are appended to it;
// otherwise a new attribute is inserted before the first '>'.
// Fragments without markup or empty style maps are returned unchanged.
func InjectStyle(fragment string, styles types.Styles) string {
	if len(styles) == 0 || !strings.Contains(fragment, "<") {
		return fragment
	}
	decl := Declarations(styles)

	end := strings.Index(fragment, ">")
	if end < 0 {
		return fragment
	}
	if strings.Contains(fragment[:end], "style=") {
		loc := styleAttrRe.FindStringSubmatchIndex(fragment)
		if loc == nil {
			return fragment
		}
		existing := fragment[loc[2]:loc[3]]
		return fragment[:loc[0]] + `style="` + existing + "; " + decl + `"` + fragment[loc[1]:]
	}

	return fragment[:end] + ` style="` + decl + `"` + fragment[end:]
}

// TagRoot inserts class="<class>" right after the root tag name. It is a
// textual insertion: a template that already carries a class attribute on
// its root ends up with two. Fragments that do not start with a tag are
// returned unchanged.
func TagRoot(fragment, class string) string {
	loc := rootTagRe.FindStringIndex(fragment)
	if loc == nil {
		return fragment
	}

	return fragment[:loc[1]] + ` class="` + class + `"` + fragment[loc[1]:]
}

// Element renders one template instance: substitution with props, then inline
// styles, then the positional class.
func Element(tmpl string, props types.Props, styles types.Styles, class string) string {
	out := Substitute(tmpl, props)
	out = InjectStyle(out, styles)
	if class != "" {
		out = TagRoot(out, class)
	}

	return out
}
