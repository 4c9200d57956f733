// Package export turns a page's element list into the static artifacts a
// project is published as: a standalone HTML document, a separate stylesheet
// and a JSON snapshot.
//
// Elements are addressed by their position in the list at export time. The
// element at index i is tagged with class element-i, so reordering elements
// changes which class selects which fragment between two exports.
//
// Style declarations are written in sorted property order, both inline and
// in the stylesheet, rather than the order the properties were set in.
package export

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/render"
	"github.com/conneroisu/webbuilder/internal/types"
)

// baseCSS is the reset and component boilerplate shipped in every document.
// Each line already carries the document's eight-space indentation.
//
//go:embed base.css
var baseCSS string

// BaseCSS returns the boilerplate stylesheet embedded in exported documents.
func BaseCSS() string { return baseCSS }

// ClassName returns the positional class of the element at index.
func ClassName(index int) string {
	return fmt.Sprintf("element-%d", index)
}

// Fragments renders the body fragment of every element whose template is in
// cat, using base styles only. Elements with an unknown template are skipped
// silently but still consume their index.
func Fragments(elements canvas.List, cat *catalog.Catalog) []string {
	return fragmentsAt(elements, cat, canvas.Desktop)
}

func fragmentsAt(elements canvas.List, cat *catalog.Catalog, bp canvas.Breakpoint) []string {
	out := make([]string, 0, len(elements))
	for i, el := range elements {
		t, ok := cat.Lookup(el.TemplateID)
		if !ok {
			continue
		}
		out = append(out, render.Element(t.HTML, types.Merge(t.DefaultProps, el.Props), el.StylesAt(bp), ClassName(i)))
	}

	return out
}

// Document renders the complete HTML document for elements. Base styles are
// inlined on each fragment; tablet and mobile overrides become media query
// rules keyed by the positional class.
//
// The positional class is added as its own attribute, so a template root that
// already has a class ends up with two. Browsers keep only the first, which
// means template classes such as hero-simple do not apply in the exported page.
func Document(elements canvas.List, projectName string, cat *catalog.Catalog) string {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n")
	b.WriteString("<html lang=\"ru\">\n")
	b.WriteString("<head>\n")
	b.WriteString("    <meta charset=\"UTF-8\">\n")
	b.WriteString("    <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\">\n")
	b.WriteString("    <title>" + projectName + "</title>\n")
	b.WriteString("    <style>\n")
	b.WriteString(baseCSS)
	b.WriteString("        " + MediaQueries(elements) + "\n")
	b.WriteString("    </style>\n")
	b.WriteString("</head>\n")
	b.WriteString("<body>\n")
	b.WriteString("    " + strings.Join(Fragments(elements, cat), "\n    ") + "\n")
	b.WriteString("</body>\n")
	b.WriteString("</html>")

	return b.String()
}

// MediaQueries renders the responsive override block embedded in Document.
// It is empty when no element has tablet or mobile overrides.
func MediaQueries(elements canvas.List) string {
	var b strings.Builder
	for _, tier := range []struct {
		bp    canvas.Breakpoint
		label string
	}{
		{canvas.Tablet, "Tablet Styles"},
		{canvas.Mobile, "Mobile Styles"},
	} {
		var rules []string
		for i, el := range elements {
			styles := el.ResponsiveStyles.For(tier.bp)
			if len(styles) == 0 {
				continue
			}
			rules = append(rules, "  ."+ClassName(i)+" {\n"+strings.Join(declarations(styles, "    "), "\n")+"\n  }")
		}
		if len(rules) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n/* %s */\n@media (max-width: %dpx) {\n%s\n}\n",
			tier.label, tier.bp.MaxWidth(), strings.Join(rules, "\n\n"))
	}

	return b.String()
}

// Stylesheet renders the standalone CSS file: one rule per element with base
// styles, followed by the tablet and mobile media blocks.
func Stylesheet(elements canvas.List) string {
	var b strings.Builder
	b.WriteString("/* Generated CSS */\n\n")

	for i, el := range elements {
		if len(el.Styles) == 0 {
			continue
		}
		b.WriteString("." + ClassName(i) + " {\n")
		for _, d := range declarations(el.Styles, "  ") {
			b.WriteString(d + "\n")
		}
		b.WriteString("}\n\n")
	}

	for _, bp := range []canvas.Breakpoint{canvas.Tablet, canvas.Mobile} {
		opened := false
		for i, el := range elements {
			styles := el.ResponsiveStyles.For(bp)
			if len(styles) == 0 {
				continue
			}
			if !opened {
				label := "Tablet"
				if bp == canvas.Mobile {
					label = "Mobile"
				}
				fmt.Fprintf(&b, "/* %s Styles (max-width: %dpx) */\n@media (max-width: %dpx) {\n",
					label, bp.MaxWidth(), bp.MaxWidth())
				opened = true
			}
			b.WriteString("  ." + ClassName(i) + " {\n")
			for _, d := range declarations(styles, "    ") {
				b.WriteString(d + "\n")
			}
			b.WriteString("  }\n\n")
		}
		if opened {
			b.WriteString("}\n\n")
		}
	}

	return b.String()
}

// declarations renders "indent prop: value;" lines in key order.
func declarations(styles types.Styles, indent string) []string {
	keys := styles.Keys()
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, indent+render.KebabCase(k)+": "+styles[k]+";")
	}

	return out
}
