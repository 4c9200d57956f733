// Package catalog is the read-only store of component templates that elements
// on the canvas are instantiated from.
package catalog

import (
	"fmt"
	"strings"

	"golang.org/x/text/cases"

	"github.com/conneroisu/webbuilder/internal/types"
)

// PropKind describes how an editable property is edited.
type PropKind string

const (
	KindText     PropKind = "text"
	KindColor    PropKind = "color"
	KindNumber   PropKind = "number"
	KindSelect   PropKind = "select"
	KindTextarea PropKind = "textarea"
	KindToggle   PropKind = "toggle"
	KindImage    PropKind = "image"
	KindLink     PropKind = "link"
)

// Valid reports whether k is one of the known kinds.
func (k PropKind) Valid() bool {
	switch k {
	case KindText, KindColor, KindNumber, KindSelect, KindTextarea, KindToggle, KindImage, KindLink:
		return true
	}

	return false
}

// EditableProp is the editor metadata for one template property.
type EditableProp struct {
	Name    string      `yaml:"name" json:"name"`
	Label   string      `yaml:"label" json:"label"`
	Kind    PropKind    `yaml:"kind" json:"kind"`
	Options []string    `yaml:"options,omitempty" json:"options,omitempty"`
	Default types.Value `yaml:"default" json:"default"`
}

// Template is a static HTML fragment with named placeholders.
type Template struct {
	ID            string         `yaml:"id" json:"id"`
	Name          string         `yaml:"name" json:"name"`
	Category      string         `yaml:"category" json:"category"`
	Icon          string         `yaml:"icon" json:"icon"`
	Description   string         `yaml:"description" json:"description"`
	HTML          string         `yaml:"html" json:"html"`
	DefaultProps  types.Props    `yaml:"defaultProps" json:"defaultProps"`
	EditableProps []EditableProp `yaml:"editableProps" json:"editableProps"`
}

// Clone returns a deep copy so callers cannot reach into the catalog.
func (t Template) Clone() Template {
	out := t
	out.DefaultProps = t.DefaultProps.Clone()
	out.EditableProps = make([]EditableProp, len(t.EditableProps))
	for i, p := range t.EditableProps {
		p.Options = append([]string(nil), p.Options...)
		out.EditableProps[i] = p
	}

	return out
}

// Editable returns the editor metadata for the named property.
func (t Template) Editable(name string) (EditableProp, bool) {
	for _, p := range t.EditableProps {
		if p.Name == name {
			return p, true
		}
	}

	return EditableProp{}, false
}

// Catalog is an immutable, ordered set of templates.
type Catalog struct {
	templates []Template
	index     map[string]int
	haystack  []string
}

// New builds a catalog from templates in the given order. Template ids must be unique.
func New(templates ...Template) (*Catalog, error) {
	c := &Catalog{
		templates: make([]Template, 0, len(templates)),
		index:     make(map[string]int, len(templates)),
		haystack:  make([]string, 0, len(templates)),
	}
	fold := cases.Fold()
	for _, t := range templates {
		if t.ID == "" {
			return nil, fmt.Errorf("template %q has an empty id", t.Name)
		}
		if _, dup := c.index[t.ID]; dup {
			return nil, fmt.Errorf("duplicate template id %q", t.ID)
		}
		c.index[t.ID] = len(c.templates)
		c.templates = append(c.templates, t.Clone())
		c.haystack = append(c.haystack, fold.String(t.Name+"\x00"+t.Description+"\x00"+t.Category))
	}

	return c, nil
}

// Extend returns a new catalog with extra appended after the existing templates.
func (c *Catalog) Extend(extra ...Template) (*Catalog, error) {
	all := make([]Template, 0, len(c.templates)+len(extra))
	all = append(all, c.templates...)
	all = append(all, extra...)

	return New(all...)
}

// Lookup returns the template with the given id. A missing id is not an
// error: callers treat it as "render nothing".
func (c *Catalog) Lookup(id string) (Template, bool) {
	i, ok := c.index[id]
	if !ok {
		return Template{}, false
	}

	return c.templates[i].Clone(), true
}

// Has reports whether id is in the catalog.
func (c *Catalog) Has(id string) bool {
	_, ok := c.index[id]
	return ok
}

// All returns every template in insertion order.
func (c *Catalog) All() []Template {
	out := make([]Template, len(c.templates))
	for i, t := range c.templates {
		out[i] = t.Clone()
	}

	return out
}

// Len returns the number of templates.
func (c *Catalog) Len() int { return len(c.templates) }

// FilterByCategory returns the templates in category, in insertion order.
func (c *Catalog) FilterByCategory(category string) []Template {
	var out []Template
	for _, t := range c.templates {
		if t.Category == category {
			out = append(out, t.Clone())
		}
	}

	return out
}

// Search returns templates whose name, description or category contains
// query, ignoring case. An empty query returns the whole catalog.
func (c *Catalog) Search(query string) []Template {
	query = strings.TrimSpace(query)
	if query == "" {
		return c.All()
	}
	needle := cases.Fold().String(query)

	var out []Template
	for i, t := range c.templates {
		if strings.Contains(c.haystack[i], needle) {
			out = append(out, t.Clone())
		}
	}

	return out
}

// CountByCategory returns how many templates each category holds.
func (c *Catalog) CountByCategory() map[string]int {
	counts := make(map[string]int)
	for _, t := range c.templates {
		counts[t.Category]++
	}

	return counts
}
