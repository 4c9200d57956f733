package catalog

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"golang.org/x/net/html"

	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/render"
	"github.com/conneroisu/webbuilder/internal/types"
)

var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"source": true, "track": true, "wbr": true,
}

// Validate runs the integrity check over every template and reports all
// problems found.
func (c *Catalog) Validate() error {
	collector := errors.NewCollector()
	for _, t := range c.templates {
		for _, problem := range CheckTemplate(t) {
			collector.Add(errors.NewValidationError(errors.CodeCatalogIntegrity, problem).
				WithContext("template", t.ID))
		}
	}

	return collector.Err()
}

// CheckTemplate returns a description of every integrity problem in t.
func CheckTemplate(t Template) []string {
	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, t.ID+": "+fmt.Sprintf(format, args...))
	}

	if !IsCategory(t.Category) {
		add("unknown category %q", t.Category)
	}
	for _, name := range render.Placeholders(t.HTML) {
		if _, ok := t.DefaultProps[name]; !ok {
			add("placeholder {{%s}} has no default", name)
		}
	}

	seen := make(map[string]bool)
	for _, p := range t.EditableProps {
		if seen[p.Name] {
			add("editable prop %q declared twice", p.Name)
		}
		seen[p.Name] = true

		switch {
		case !p.Kind.Valid():
			add("editable prop %q has unknown kind %q", p.Name, p.Kind)
		case p.Kind == KindSelect:
			s, _ := p.Default.Str()
			if len(p.Options) == 0 {
				add("select prop %q has no options", p.Name)
			} else if !contains(p.Options, s) {
				add("select prop %q default %q is not an option", p.Name, s)
			}
		case p.Kind == KindNumber:
			if _, ok := p.Default.Num(); !ok {
				add("number prop %q has a %s default", p.Name, p.Default.Kind())
			}
		case p.Kind == KindToggle:
			if _, ok := p.Default.Boolean(); !ok {
				add("toggle prop %q has a %s default", p.Name, p.Default.Kind())
			}
		}
	}

	if err := singleRoot(t.HTML); err != nil {
		add("%v", err)
	}

	return problems
}

// singleRoot checks that markup consists of exactly one top-level element,
// which is what inline styles and the positional class attach to.
func singleRoot(markup string) error {
	z := html.NewTokenizer(strings.NewReader(markup))
	depth, roots := 0, 0

	for {
		switch z.Next() {
		case html.ErrorToken:
			if z.Err() != io.EOF {
				return z.Err()
			}
			if roots != 1 {
				return fmt.Errorf("markup has %d root elements, want 1", roots)
			}
			if depth != 0 {
				return fmt.Errorf("markup has %d unclosed elements", depth)
			}
			return nil
		case html.StartTagToken:
			name, _ := z.TagName()
			if depth == 0 {
				roots++
			}
			if !voidElements[string(name)] {
				depth++
			}
		case html.SelfClosingTagToken:
			if depth == 0 {
				roots++
			}
		case html.EndTagToken:
			depth--
			if depth < 0 {
				return fmt.Errorf("markup closes an element that was never opened")
			}
		case html.TextToken:
			if depth == 0 && strings.TrimSpace(string(z.Text())) != "" {
				return fmt.Errorf("markup has text outside the root element")
			}
		}
	}
}

// CoerceProp converts raw user input for prop name on t into the value kind
// its editor declares. Undeclared properties are kept as strings.
func CoerceProp(t Template, name, raw string) (types.Value, error) {
	p, ok := t.Editable(name)
	if !ok {
		return types.String(raw), nil
	}

	switch p.Kind {
	case KindNumber:
		f, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return types.Value{}, errors.NewValidationError(errors.CodeInvalidProp,
				fmt.Sprintf("%s expects a number, got %q", name, raw))
		}
		return types.Number(f), nil
	case KindToggle:
		b, err := strconv.ParseBool(strings.TrimSpace(raw))
		if err != nil {
			return types.Value{}, errors.NewValidationError(errors.CodeInvalidProp,
				fmt.Sprintf("%s expects true or false, got %q", name, raw))
		}
		return types.Bool(b), nil
	case KindSelect:
		if !contains(p.Options, raw) {
			return types.Value{}, errors.NewValidationError(errors.CodeInvalidProp,
				fmt.Sprintf("%s must be one of %s", name, strings.Join(p.Options, ", ")))
		}
	}

	return types.String(raw), nil
}

// CheckProps verifies that values for declared editable props match their kind.
func CheckProps(t Template, props types.Props) error {
	for name, v := range props {
		p, ok := t.Editable(name)
		if !ok || v.IsNull() {
			continue
		}
		var bad bool
		switch p.Kind {
		case KindNumber:
			_, isNum := v.Num()
			bad = !isNum
		case KindToggle:
			_, isBool := v.Boolean()
			bad = !isBool
		case KindSelect:
			s, isStr := v.Str()
			bad = !isStr || !contains(p.Options, s)
		default:
			_, isStr := v.Str()
			bad = !isStr
		}
		if bad {
			return errors.NewValidationError(errors.CodeInvalidProp,
				fmt.Sprintf("%s: value %q does not fit a %s property", name, v.Text(), p.Kind)).
				WithContext("template", t.ID)
		}
	}

	return nil
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}

	return false
}
