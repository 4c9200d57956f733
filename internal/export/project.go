package export

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/types"
)

// FormatVersion is written to every project snapshot.
const FormatVersion = "1.0.0"

// isoMillis matches the millisecond UTC timestamps browsers write.
const isoMillis = "2006-01-02T15:04:05.000Z"

// Project is the JSON snapshot format. Responsive overrides and positions are
// not part of it, so a round trip through this format drops them.
type Project struct {
	ProjectName string           `json:"projectName"`
	Version     string           `json:"version"`
	CreatedAt   string           `json:"createdAt"`
	Elements    []ProjectElement `json:"elements"`
}

// ProjectElement is one element inside a Project snapshot.
type ProjectElement struct {
	ID          string       `json:"id"`
	ComponentID string       `json:"componentId"`
	Props       types.Props  `json:"props"`
	Styles      types.Styles `json:"styles"`
}

// ProjectJSON serializes elements as a two-space indented Project snapshot.
func ProjectJSON(elements canvas.List, projectName string, now time.Time) ([]byte, error) {
	p := Project{
		ProjectName: projectName,
		Version:     FormatVersion,
		CreatedAt:   now.UTC().Format(isoMillis),
		Elements:    make([]ProjectElement, 0, len(elements)),
	}
	for _, el := range elements {
		pe := ProjectElement{
			ID:          el.ID,
			ComponentID: el.TemplateID,
			Props:       el.Props.Clone(),
			Styles:      el.Styles.Clone(),
		}
		p.Elements = append(p.Elements, pe)
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(p); err != nil {
		return nil, errors.NewInternalError("encode project snapshot", err)
	}

	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// ParseProjectJSON reads a Project snapshot back into an element list.
// Positions are re-derived from list order and responsive overrides are
// absent. Elements without an id get a fresh one.
func ParseProjectJSON(data []byte) (Project, canvas.List, error) {
	var p Project
	if err := json.Unmarshal(data, &p); err != nil {
		return Project{}, nil, errors.NewValidationError(errors.CodeInvalidProject,
			"project snapshot is not valid JSON").WithCause(err)
	}
	if p.Elements == nil {
		return Project{}, nil, errors.NewValidationError(errors.CodeInvalidProject,
			"project snapshot has no elements array")
	}

	list := make(canvas.List, 0, len(p.Elements))
	for i, pe := range p.Elements {
		if pe.ComponentID == "" {
			return Project{}, nil, errors.NewValidationError(errors.CodeInvalidProject,
				fmt.Sprintf("element %d has no componentId", i))
		}
		id := pe.ID
		if id == "" {
			id = canvas.NewID()
		}
		el := canvas.Element{
			ID:         id,
			TemplateID: pe.ComponentID,
			Props:      pe.Props.Clone(),
			Styles:     pe.Styles.Clone(),
			Position:   canvas.Position{X: 0, Y: float64(i * 100)},
		}
		list = append(list, el)
	}

	return p, list, nil
}
