// Package canvas models the elements placed on a page and the list
// operations the builder applies to them. Every operation returns a new
// list and leaves its input untouched, so earlier lists can be kept as
// history snapshots.
package canvas

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/types"
)

// Breakpoint is a named viewport-width tier.
type Breakpoint string

const (
	Desktop Breakpoint = "desktop"
	Tablet  Breakpoint = "tablet"
	Mobile  Breakpoint = "mobile"
)

// ParseBreakpoint accepts "desktop", "tablet" or "mobile". The empty string is desktop.
func ParseBreakpoint(s string) (Breakpoint, error) {
	switch Breakpoint(strings.ToLower(strings.TrimSpace(s))) {
	case "", Desktop:
		return Desktop, nil
	case Tablet:
		return Tablet, nil
	case Mobile:
		return Mobile, nil
	}

	return "", errors.NewValidationError("ERR_INVALID_BREAKPOINT",
		fmt.Sprintf("unknown breakpoint %q (want desktop, tablet or mobile)", s))
}

// MaxWidth returns the media query width for the breakpoint, or 0 for desktop.
func (b Breakpoint) MaxWidth() int {
	switch b {
	case Tablet:
		return 768
	case Mobile:
		return 480
	default:
		return 0
	}
}

// Position is advisory placement on the canvas.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ResponsiveStyles holds per-breakpoint overrides layered on the base styles.
type ResponsiveStyles struct {
	Tablet types.Styles `json:"tablet,omitempty"`
	Mobile types.Styles `json:"mobile,omitempty"`
}

// For returns the override layer for bp. Desktop has none.
func (r *ResponsiveStyles) For(bp Breakpoint) types.Styles {
	if r == nil {
		return nil
	}
	switch bp {
	case Tablet:
		return r.Tablet
	case Mobile:
		return r.Mobile
	default:
		return nil
	}
}

// IsEmpty reports whether no breakpoint carries an override.
func (r *ResponsiveStyles) IsEmpty() bool {
	return r == nil || (len(r.Tablet) == 0 && len(r.Mobile) == 0)
}

// Element is one placed instance of a catalog template. TemplateID is a weak
// reference: the template may be missing, in which case the element renders
// as nothing.
type Element struct {
	ID               string            `json:"id"`
	TemplateID       string            `json:"componentId"`
	Props            types.Props       `json:"props"`
	Styles           types.Styles      `json:"styles"`
	ResponsiveStyles *ResponsiveStyles `json:"responsiveStyles,omitempty"`
	Position         Position          `json:"position"`
}

// NewID returns a fresh element id.
func NewID() string {
	return "element-" + uuid.New().String()
}

// FromTemplate creates an element for t, placed below the existing elements.
func FromTemplate(t catalog.Template, existing List) Element {
	return Element{
		ID:         NewID(),
		TemplateID: t.ID,
		Props:      t.DefaultProps.Clone(),
		Styles:     types.Styles{},
		Position:   Position{X: 0, Y: float64(len(existing) * 100)},
	}
}

// Clone returns a deep copy of e.
func (e Element) Clone() Element {
	out := e
	out.Props = e.Props.Clone()
	out.Styles = e.Styles.Clone()
	if e.ResponsiveStyles != nil {
		out.ResponsiveStyles = &ResponsiveStyles{}
		if e.ResponsiveStyles.Tablet != nil {
			out.ResponsiveStyles.Tablet = e.ResponsiveStyles.Tablet.Clone()
		}
		if e.ResponsiveStyles.Mobile != nil {
			out.ResponsiveStyles.Mobile = e.ResponsiveStyles.Mobile.Clone()
		}
	}

	return out
}

// StylesAt returns the effective styles for bp: the base layer with the
// breakpoint override applied on top.
func (e Element) StylesAt(bp Breakpoint) types.Styles {
	out := e.Styles.Clone()
	for k, v := range e.ResponsiveStyles.For(bp) {
		out[k] = v
	}

	return out
}

// Patch describes a partial update of an element. Null prop values remove the
// override so the template default shows through; empty style values remove
// the declaration.
type Patch struct {
	Props    types.Props  `json:"props,omitempty"`
	Styles   types.Styles `json:"styles,omitempty"`
	Tablet   types.Styles `json:"tablet,omitempty"`
	Mobile   types.Styles `json:"mobile,omitempty"`
	Position *Position    `json:"position,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p Patch) IsEmpty() bool {
	return len(p.Props) == 0 && len(p.Styles) == 0 && len(p.Tablet) == 0 &&
		len(p.Mobile) == 0 && p.Position == nil
}

// Apply returns a copy of e with p applied.
func (e Element) Apply(p Patch) Element {
	out := e.Clone()
	for k, v := range p.Props {
		if v.IsNull() {
			delete(out.Props, k)
			continue
		}
		out.Props[k] = v
	}
	if len(p.Styles) > 0 {
		out.Styles = out.Styles.Apply(p.Styles)
	}
	if len(p.Tablet) > 0 || len(p.Mobile) > 0 {
		if out.ResponsiveStyles == nil {
			out.ResponsiveStyles = &ResponsiveStyles{}
		}
		if len(p.Tablet) > 0 {
			out.ResponsiveStyles.Tablet = out.ResponsiveStyles.Tablet.Apply(p.Tablet)
		}
		if len(p.Mobile) > 0 {
			out.ResponsiveStyles.Mobile = out.ResponsiveStyles.Mobile.Apply(p.Mobile)
		}
		if out.ResponsiveStyles.IsEmpty() {
			out.ResponsiveStyles = nil
		}
	}
	if p.Position != nil {
		out.Position = *p.Position
	}

	return out
}
