package export

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/errors"
)

// DefaultCSSThreshold is the stylesheet length at or below which no .css file
// is written. The empty stylesheet header alone is shorter than this.
const DefaultCSSThreshold = 50

// Artifacts holds the three export outputs of one project.
type Artifacts struct {
	Name string
	HTML string
	CSS  string
	JSON []byte
}

// Bundle renders all three artifacts for elements.
func Bundle(elements canvas.List, projectName string, cat *catalog.Catalog, now time.Time) (Artifacts, error) {
	data, err := ProjectJSON(elements, projectName, now)
	if err != nil {
		return Artifacts{}, err
	}

	return Artifacts{
		Name: projectName,
		HTML: Document(elements, projectName, cat),
		CSS:  Stylesheet(elements),
		JSON: data,
	}, nil
}

type artifactFile struct {
	ext  string
	data []byte
}

// WriteBundle writes <name>.html, <name>.json and, when the stylesheet is
// longer than threshold, <name>.css into dir. It returns the written paths.
func WriteBundle(dir string, a Artifacts, threshold int) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.NewIOError("create export directory", err).WithContext("dir", dir)
	}

	stem := FileStem(a.Name)
	files := []artifactFile{{".html", []byte(a.HTML)}}
	if len(a.CSS) > threshold {
		files = append(files, artifactFile{".css", []byte(a.CSS)})
	}
	files = append(files, artifactFile{".json", a.JSON})

	written := make([]string, 0, len(files))
	for _, f := range files {
		path := filepath.Join(dir, stem+f.ext)
		if err := os.WriteFile(path, f.data, 0o644); err != nil {
			return written, errors.NewIOError("write export artifact", err).WithContext("path", path)
		}
		written = append(written, path)
	}

	return written, nil
}

// FileStem makes a project name safe to use as a file name.
func FileStem(name string) string {
	name = strings.TrimSpace(name)
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', 0:
			return '-'
		}
		return r
	}, name)
	if name == "" || name == "." || name == ".." {
		return "project"
	}

	return name
}

// Fragment is one rendered element as shown by the preview server.
type Fragment struct {
	ElementID  string
	TemplateID string
	Class      string
	HTML       string
}

// Preview renders elements as they appear at bp: each fragment carries the
// base styles with the breakpoint's overrides applied inline. Elements with
// an unknown template are skipped.
func Preview(elements canvas.List, cat *catalog.Catalog, bp canvas.Breakpoint) []Fragment {
	html := fragmentsAt(elements, cat, bp)
	out := make([]Fragment, 0, len(html))
	n := 0
	for i, el := range elements {
		if !cat.Has(el.TemplateID) {
			continue
		}
		out = append(out, Fragment{
			ElementID:  el.ID,
			TemplateID: el.TemplateID,
			Class:      ClassName(i),
			HTML:       html[n],
		})
		n++
	}

	return out
}
