// Package theme holds the project-wide style tokens. They are kept alongside
// the pages but are not woven into per-element export output.
package theme

import (
	"fmt"
	"strings"

	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/render"
)

// Colors is the palette.
type Colors struct {
	Primary    string `json:"primary" yaml:"primary"`
	Secondary  string `json:"secondary" yaml:"secondary"`
	Accent     string `json:"accent" yaml:"accent"`
	Background string `json:"background" yaml:"background"`
	Text       string `json:"text" yaml:"text"`
	Muted      string `json:"muted" yaml:"muted"`
}

// Typography holds font settings.
type Typography struct {
	FontFamily        string `json:"fontFamily" yaml:"fontFamily"`
	BaseFontSize      string `json:"baseFontSize" yaml:"baseFontSize"`
	HeadingFontFamily string `json:"headingFontFamily" yaml:"headingFontFamily"`
	LineHeight        string `json:"lineHeight" yaml:"lineHeight"`
}

// Spacing holds the base spacing unit.
type Spacing struct {
	BaseUnit string `json:"baseUnit" yaml:"baseUnit"`
}

// GlobalStyles is the flat record of theme tokens.
type GlobalStyles struct {
	Colors     Colors     `json:"colors" yaml:"colors"`
	Typography Typography `json:"typography" yaml:"typography"`
	Spacing    Spacing    `json:"spacing" yaml:"spacing"`
}

// Default returns the tokens a new project starts with.
func Default() GlobalStyles {
	return GlobalStyles{
		Colors: Colors{
			Primary:    "#3b82f6",
			Secondary:  "#8b5cf6",
			Accent:     "#10b981",
			Background: "#ffffff",
			Text:       "#1f2937",
			Muted:      "#6b7280",
		},
		Typography: Typography{
			FontFamily:        "system-ui, -apple-system, sans-serif",
			BaseFontSize:      "16px",
			HeadingFontFamily: "inherit",
			LineHeight:        "1.6",
		},
		Spacing: Spacing{BaseUnit: "8px"},
	}
}

// fields maps dotted keys to the token they address, in display order.
func (g *GlobalStyles) fields() []struct {
	key string
	ptr *string
} {
	return []struct {
		key string
		ptr *string
	}{
		{"colors.primary", &g.Colors.Primary},
		{"colors.secondary", &g.Colors.Secondary},
		{"colors.accent", &g.Colors.Accent},
		{"colors.background", &g.Colors.Background},
		{"colors.text", &g.Colors.Text},
		{"colors.muted", &g.Colors.Muted},
		{"typography.fontFamily", &g.Typography.FontFamily},
		{"typography.baseFontSize", &g.Typography.BaseFontSize},
		{"typography.headingFontFamily", &g.Typography.HeadingFontFamily},
		{"typography.lineHeight", &g.Typography.LineHeight},
		{"spacing.baseUnit", &g.Spacing.BaseUnit},
	}
}

// Keys lists every settable token key.
func Keys() []string {
	var g GlobalStyles
	fs := g.fields()
	keys := make([]string, len(fs))
	for i, f := range fs {
		keys[i] = f.key
	}

	return keys
}

// Get returns the value of the token at key.
func (g GlobalStyles) Get(key string) (string, error) {
	for _, f := range g.fields() {
		if strings.EqualFold(f.key, key) {
			return *f.ptr, nil
		}
	}

	return "", unknownKey(key)
}

// Set returns a copy of g with the token at key replaced.
func (g GlobalStyles) Set(key, value string) (GlobalStyles, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return g, errors.NewValidationError("ERR_EMPTY_TOKEN", fmt.Sprintf("%s cannot be empty", key))
	}
	if strings.ContainsAny(value, "{};<>") {
		return g, errors.NewValidationError("ERR_INVALID_TOKEN",
			fmt.Sprintf("%s contains characters that are not allowed in a CSS value", key))
	}
	out := g
	for _, f := range out.fields() {
		if strings.EqualFold(f.key, key) {
			*f.ptr = value
			return out, nil
		}
	}

	return g, unknownKey(key)
}

// CSSVariables renders the tokens as custom properties on :root.
func (g GlobalStyles) CSSVariables() string {
	var b strings.Builder
	b.WriteString(":root {\n")
	for _, f := range g.fields() {
		group, name, _ := strings.Cut(f.key, ".")
		if group == "colors" {
			name = "color-" + name
		}
		fmt.Fprintf(&b, "  --%s: %s;\n", render.KebabCase(name), *f.ptr)
	}
	b.WriteString("}\n")

	return b.String()
}

func unknownKey(key string) error {
	return errors.NewValidationError("ERR_UNKNOWN_TOKEN",
		fmt.Sprintf("unknown theme key %q (known: %s)", key, strings.Join(Keys(), ", ")))
}
