package catalog

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/conneroisu/webbuilder/internal/types"
)

//go:embed catalog.yaml
var builtinYAML []byte

// extraCategories is the rotation used for the generated filler templates.
var extraCategories = []string{
	"inputs", "checkboxes", "radios", "selects", "sliders",
	"tables", "lists", "badges", "alerts", "modals",
}

const generatedCount = 50

type catalogFile struct {
	Components []Template `yaml:"components"`
}

// Load decodes a YAML catalog document.
func Load(r io.Reader) ([]Template, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f catalogFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	return f.Components, nil
}

// Generated returns the numbered filler templates extra-1 .. extra-50.
func Generated() []Template {
	out := make([]Template, 0, generatedCount)
	for i := 1; i <= generatedCount; i++ {
		content := fmt.Sprintf("Контент %d", i)
		out = append(out, Template{
			ID:           fmt.Sprintf("extra-%d", i),
			Name:         fmt.Sprintf("Компонент %d", i),
			Category:     extraCategories[i%len(extraCategories)],
			Icon:         "Box",
			Description:  fmt.Sprintf("Дополнительный компонент %d", i),
			HTML:         fmt.Sprintf(`<div class="component-%d">{{content}}</div>`, i),
			DefaultProps: types.Props{"content": types.String(content)},
			EditableProps: []EditableProp{
				{Name: "content", Label: "Содержимое", Kind: KindText, Default: types.String(content)},
			},
		})
	}

	return out
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
)

// Default returns the built-in catalog. It is built once and never changes.
func Default() *Catalog {
	defaultOnce.Do(func() {
		authored, err := Load(bytes.NewReader(builtinYAML))
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
		}
		c, err := New(append(authored, Generated()...)...)
		if err != nil {
			panic(fmt.Sprintf("catalog: embedded catalog is invalid: %v", err))
		}
		defaultCatalog = c
	})

	return defaultCatalog
}

// WithExtra returns the built-in catalog extended by the templates in r.
func WithExtra(r io.Reader) (*Catalog, error) {
	extra, err := Load(r)
	if err != nil {
		return nil, err
	}

	return Default().Extend(extra...)
}
