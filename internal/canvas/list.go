package canvas

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/types"
)

// List is the ordered element list of one page. Order is significant: an
// element's index decides its positional class at export time.
type List []Element

// Clone returns a deep copy of l. Mutating the copy never reaches l.
func (l List) Clone() List {
	if l == nil {
		return List{}
	}
	out := make(List, len(l))
	for i, e := range l {
		out[i] = e.Clone()
	}

	return out
}

// Find returns the index of the element with id.
func (l List) Find(id string) (int, bool) {
	for i, e := range l {
		if e.ID == id {
			return i, true
		}
	}

	return -1, false
}

// Get returns a copy of the element with id.
func (l List) Get(id string) (Element, error) {
	i, ok := l.Find(id)
	if !ok {
		return Element{}, notFound(id)
	}

	return l[i].Clone(), nil
}

// Add appends e.
func (l List) Add(e Element) List {
	out := l.Clone()
	return append(out, e.Clone())
}

// Update applies p to the element with id.
func (l List) Update(id string, p Patch) (List, error) {
	return l.mutate(id, func(e Element) Element { return e.Apply(p) })
}

// Delete removes the element with id.
func (l List) Delete(id string) (List, error) {
	i, ok := l.Find(id)
	if !ok {
		return nil, notFound(id)
	}
	out := make(List, 0, len(l)-1)
	for j, e := range l {
		if j != i {
			out = append(out, e.Clone())
		}
	}

	return out, nil
}

// Duplicate appends a copy of the element with id under a new id, shifted down by 50.
func (l List) Duplicate(id string) (List, Element, error) {
	src, err := l.Get(id)
	if err != nil {
		return nil, Element{}, err
	}
	dup := src.Clone()
	dup.ID = NewID()
	dup.Position.Y += 50

	return l.Add(dup), dup, nil
}

// Move relocates the element with id to index to, shifting the others.
// Out of range targets are clamped.
func (l List) Move(id string, to int) (List, error) {
	i, ok := l.Find(id)
	if !ok {
		return nil, notFound(id)
	}
	if to < 0 {
		to = 0
	}
	if to > len(l)-1 {
		to = len(l) - 1
	}

	out := l.Clone()
	e := out[i]
	out = append(out[:i], out[i+1:]...)
	out = append(out[:to], append(List{e}, out[to:]...)...)

	return out, nil
}

const frontZIndex = 9999

// BringToFront sets the element's z-index to the top layer.
func (l List) BringToFront(id string) (List, error) {
	return l.setStyle(id, "zIndex", func(types.Styles) string { return strconv.Itoa(frontZIndex) })
}

// SendToBack sets the element's z-index to 0.
func (l List) SendToBack(id string) (List, error) {
	return l.setStyle(id, "zIndex", func(types.Styles) string { return "0" })
}

// BringForward raises the element's z-index by one.
func (l List) BringForward(id string) (List, error) {
	return l.setStyle(id, "zIndex", func(s types.Styles) string {
		return strconv.Itoa(zIndex(s) + 1)
	})
}

// SendBackward lowers the element's z-index by one, never below 0.
func (l List) SendBackward(id string) (List, error) {
	return l.setStyle(id, "zIndex", func(s types.Styles) string {
		return strconv.Itoa(max(0, zIndex(s)-1))
	})
}

// Axis selects a flip direction.
type Axis string

const (
	Horizontal Axis = "horizontal"
	Vertical   Axis = "vertical"
)

// Flip mirrors the element along axis. The transform is replaced.
func (l List) Flip(id string, axis Axis) (List, error) {
	var transform string
	switch axis {
	case Horizontal:
		transform = "scaleX(-1)"
	case Vertical:
		transform = "scaleY(-1)"
	default:
		return nil, errors.NewValidationError("ERR_INVALID_AXIS",
			fmt.Sprintf("unknown flip axis %q (want horizontal or vertical)", axis))
	}

	return l.setStyle(id, "transform", func(types.Styles) string { return transform })
}

var rotateRe = regexp.MustCompile(`rotate\((-?\d+)deg\)`)

// Rotate adds deg to the element's current rotation. The transform is
// replaced by a single rotate().
func (l List) Rotate(id string, deg int) (List, error) {
	return l.setStyle(id, "transform", func(s types.Styles) string {
		current := 0
		if m := rotateRe.FindStringSubmatch(s["transform"]); m != nil {
			current, _ = strconv.Atoi(m[1])
		}
		return fmt.Sprintf("rotate(%ddeg)", current+deg)
	})
}

func zIndex(s types.Styles) int {
	z, err := strconv.Atoi(s["zIndex"])
	if err != nil {
		return 0
	}

	return z
}

func (l List) setStyle(id, key string, value func(types.Styles) string) (List, error) {
	return l.mutate(id, func(e Element) Element {
		e = e.Clone()
		e.Styles[key] = value(e.Styles)
		return e
	})
}

func (l List) mutate(id string, fn func(Element) Element) (List, error) {
	i, ok := l.Find(id)
	if !ok {
		return nil, notFound(id)
	}
	out := l.Clone()
	out[i] = fn(out[i])

	return out, nil
}

func notFound(id string) error {
	return errors.NewNotFoundError(errors.CodeElementNotFound,
		fmt.Sprintf("element %q not found", id)).WithComponent("canvas")
}
