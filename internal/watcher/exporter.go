package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/export"
	"github.com/conneroisu/webbuilder/internal/logging"
)

// Exporter rebuilds the export artifacts of every project snapshot file that
// changes. Files under OutDir are ignored so the exporter never reacts to its
// own output.
type Exporter struct {
	Catalog      *catalog.Catalog
	OutDir       string
	CSSThreshold int
	Logger       logging.Logger
	Now          func() time.Time
}

// Handle is a ChangeHandler. Deleted and renamed-away files are skipped; one
// failing file does not stop the rest of the batch.
func (e *Exporter) Handle(ctx context.Context, events []ChangeEvent) error {
	errs := errors.NewCollector()
	for _, ev := range events {
		if ev.Type == EventTypeDeleted || e.InOutDir(ev.Path) {
			continue
		}
		if _, err := os.Stat(ev.Path); err != nil {
			continue
		}
		if _, err := e.ExportFile(ctx, ev.Path); err != nil {
			errs.Add(err)
		}
	}

	return errs.Err()
}

// ExportFile parses one snapshot file and writes its artifacts. The project
// name inside the file names the outputs; the file name is used when it is
// empty.
func (e *Exporter) ExportFile(ctx context.Context, path string) ([]string, error) {
	logger := e.logger().With("file", path)
	op := logging.StartOperation(logger, "reexport")

	data, err := os.ReadFile(path)
	if err != nil {
		op.EndWithError(ctx, err)
		return nil, errors.NewIOError("read project file", err).WithContext("path", path)
	}
	proj, elements, err := export.ParseProjectJSON(data)
	if err != nil {
		op.EndWithError(ctx, err)
		return nil, errors.Wrap(err, "parse "+path)
	}

	name := proj.ProjectName
	if name == "" {
		name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	cat := e.Catalog
	if cat == nil {
		cat = catalog.Default()
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}

	bundle, err := export.Bundle(elements, name, cat, now())
	if err != nil {
		op.EndWithError(ctx, err)
		return nil, err
	}
	written, err := export.WriteBundle(e.OutDir, bundle, e.CSSThreshold)
	if err != nil {
		op.EndWithError(ctx, err)
		return written, err
	}

	op.End(ctx)
	logger.Info(ctx, "project re-exported", "project", name, "files", len(written))

	return written, nil
}

// InOutDir reports whether path lies inside the export directory.
func (e *Exporter) InOutDir(path string) bool {
	out, err := filepath.Abs(e.OutDir)
	if err != nil {
		return false
	}
	p, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(out, p)

	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (e *Exporter) logger() logging.Logger {
	if e.Logger == nil {
		return logging.Nop()
	}

	return e.Logger
}
