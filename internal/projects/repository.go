// Package projects saves and loads projects through a storage.KV.
//
// Two layouts share the store. The element list of a project lives under
// "webbuilder-<name>" as {projectName, elements, lastModified} and the list of
// saved names under "webbuilder-projects". A full workspace (pages, per-page
// canvases with history, theme) lives under "webbuilder:workspace:<name>";
// saving a workspace also mirrors its active page into the element-list key
// so both layouts stay readable.
package projects

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/history"
	"github.com/conneroisu/webbuilder/internal/logging"
	"github.com/conneroisu/webbuilder/internal/site"
	"github.com/conneroisu/webbuilder/internal/storage"
)

// Store keys.
const (
	KeyPrefix       = "webbuilder-"
	IndexKey        = "webbuilder-projects"
	WorkspacePrefix = "webbuilder:workspace:"
)

const isoMillis = "2006-01-02T15:04:05.000Z"

// Record is the stored element list of one project.
type Record struct {
	ProjectName  string      `json:"projectName"`
	Elements     canvas.List `json:"elements"`
	LastModified string      `json:"lastModified"`
}

// Repository reads and writes projects. The index update in Save and Delete
// is a read-modify-write, so calls are serialized within the process.
type Repository struct {
	kv     storage.KV
	logger logging.Logger
	now    func() time.Time
	mu     sync.Mutex
}

// New returns a repository over kv. A nil logger discards output.
func New(kv storage.KV, logger logging.Logger) *Repository {
	if logger == nil {
		logger = logging.Nop()
	}

	return &Repository{
		kv:     kv,
		logger: logger.WithComponent("projects"),
		now:    time.Now,
	}
}

// Key returns the element-list key of a project.
func Key(name string) string { return KeyPrefix + name }

// WorkspaceKey returns the workspace key of a project.
func WorkspaceKey(name string) string { return WorkspacePrefix + name }

// Save writes the element list of name and adds name to the index if it is
// not there yet.
func (r *Repository) Save(ctx context.Context, name string, elements canvas.List) error {
	if err := checkName(name); err != nil {
		return err
	}
	if elements == nil {
		elements = canvas.List{}
	}

	data, err := json.Marshal(Record{
		ProjectName:  name,
		Elements:     elements,
		LastModified: r.now().UTC().Format(isoMillis),
	})
	if err != nil {
		return errors.NewInternalError("encode project", err)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.kv.Set(ctx, Key(name), string(data)); err != nil {
		return errors.Wrap(err, "save project "+name)
	}
	names, err := r.readIndex(ctx)
	if err != nil {
		return err
	}
	for _, n := range names {
		if n == name {
			r.logger.Debug(ctx, "project saved", "project", name, "elements", len(elements))
			return nil
		}
	}

	if err := r.writeIndex(ctx, append(names, name)); err != nil {
		return err
	}
	r.logger.Info(ctx, "project created", "project", name)

	return nil
}

// Record returns the stored record of name.
func (r *Repository) Record(ctx context.Context, name string) (Record, error) {
	raw, err := r.kv.Get(ctx, Key(name))
	if stderrors.Is(err, storage.ErrNotFound) {
		return Record{}, projectNotFound(name)
	}
	if err != nil {
		return Record{}, errors.Wrap(err, "load project "+name)
	}

	var rec Record
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return Record{}, errors.NewValidationError(errors.CodeInvalidProject,
			"stored project "+name+" is corrupt").WithCause(err)
	}
	if rec.Elements == nil {
		rec.Elements = canvas.List{}
	}

	return rec, nil
}

// Load returns the element list of name.
func (r *Repository) Load(ctx context.Context, name string) (canvas.List, error) {
	rec, err := r.Record(ctx, name)
	if err != nil {
		return nil, err
	}

	return rec.Elements, nil
}

// List returns the saved project names in the order they were first saved.
func (r *Repository) List(ctx context.Context) ([]string, error) {
	return r.readIndex(ctx)
}

// Delete removes both layouts of name and drops it from the index.
func (r *Repository) Delete(ctx context.Context, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	names, err := r.readIndex(ctx)
	if err != nil {
		return err
	}
	kept := names[:0]
	found := false
	for _, n := range names {
		if n == name {
			found = true
			continue
		}
		kept = append(kept, n)
	}
	if !found {
		if _, err := r.kv.Get(ctx, Key(name)); stderrors.Is(err, storage.ErrNotFound) {
			return projectNotFound(name)
		}
	}

	for _, key := range []string{Key(name), WorkspaceKey(name)} {
		if err := r.kv.Delete(ctx, key); err != nil {
			return errors.Wrap(err, "delete project "+name)
		}
	}
	if found {
		if err := r.writeIndex(ctx, kept); err != nil {
			return err
		}
	}
	r.logger.Info(ctx, "project deleted", "project", name)

	return nil
}

// SaveWorkspace stores the full workspace and mirrors its active page.
func (r *Repository) SaveWorkspace(ctx context.Context, w *site.Workspace) error {
	if err := checkName(w.Name()); err != nil {
		return err
	}
	st := w.State(r.now())
	data, err := json.Marshal(st)
	if err != nil {
		return errors.NewInternalError("encode workspace", err)
	}
	if err := r.kv.Set(ctx, WorkspaceKey(w.Name()), string(data)); err != nil {
		return errors.Wrap(err, "save workspace "+w.Name())
	}

	elements, err := w.Elements("")
	if err != nil {
		return err
	}

	return r.Save(ctx, w.Name(), elements)
}

// LoadWorkspace restores the workspace of name. A project saved only as an
// element list opens as a single-page workspace holding those elements.
func (r *Repository) LoadWorkspace(ctx context.Context, name string, opts site.Options) (*site.Workspace, error) {
	raw, err := r.kv.Get(ctx, WorkspaceKey(name))
	switch {
	case err == nil:
		var st site.State
		if err := json.Unmarshal([]byte(raw), &st); err != nil {
			return nil, errors.NewValidationError(errors.CodeInvalidProject,
				"stored workspace "+name+" is corrupt").WithCause(err)
		}
		if st.ProjectName == "" {
			st.ProjectName = name
		}
		return site.Restore(st, opts), nil
	case !stderrors.Is(err, storage.ErrNotFound):
		return nil, errors.Wrap(err, "load workspace "+name)
	}

	elements, err := r.Load(ctx, name)
	if err != nil {
		return nil, err
	}

	st := site.New(name, opts).State(r.now())
	home := st.Pages[0].ID
	st.Canvases[home] = site.PageState{
		Elements: elements,
		History:  history.State{Snapshots: []canvas.List{elements}},
	}

	return site.Restore(st, opts), nil
}

// OpenOrCreate loads the workspace of name, or returns a fresh one when
// nothing has been saved under that name.
func (r *Repository) OpenOrCreate(ctx context.Context, name string, opts site.Options) (*site.Workspace, error) {
	w, err := r.LoadWorkspace(ctx, name, opts)
	if errors.HasCode(err, errors.CodeProjectNotFound) {
		return site.New(name, opts), nil
	}

	return w, err
}

func (r *Repository) readIndex(ctx context.Context) ([]string, error) {
	raw, err := r.kv.Get(ctx, IndexKey)
	if stderrors.Is(err, storage.ErrNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read project index")
	}

	var names []string
	if err := json.Unmarshal([]byte(raw), &names); err != nil {
		return nil, errors.NewValidationError(errors.CodeInvalidProject, "project index is corrupt").WithCause(err)
	}
	if names == nil {
		names = []string{}
	}

	return names, nil
}

func (r *Repository) writeIndex(ctx context.Context, names []string) error {
	data, err := json.Marshal(names)
	if err != nil {
		return errors.NewInternalError("encode project index", err)
	}
	if err := r.kv.Set(ctx, IndexKey, string(data)); err != nil {
		return errors.Wrap(err, "write project index")
	}

	return nil
}

func checkName(name string) error {
	if strings.TrimSpace(name) == "" {
		return errors.NewValidationError(errors.CodeInvalidProject, "project name must not be empty")
	}
	if Key(name) == IndexKey {
		return errors.NewValidationError(errors.CodeInvalidProject, "project name "+name+" is reserved")
	}

	return nil
}

func projectNotFound(name string) error {
	return errors.NewNotFoundError(errors.CodeProjectNotFound, "project "+name+" not found").
		WithContext("project", name)
}
