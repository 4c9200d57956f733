package site

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/history"
	"github.com/conneroisu/webbuilder/internal/theme"
)

// Options configures a Workspace.
type Options struct {
	Catalog      *catalog.Catalog
	Emitter      EventEmitter
	HistoryLimit int
}

type pageCanvas struct {
	elements canvas.List
	history  *history.Buffer
}

// Workspace is one open project: its pages, each page's element list and
// history, and the global style tokens. A Workspace is not safe for
// concurrent use; callers serialise access.
type Workspace struct {
	name     string
	pages    *PageSet
	active   string
	canvases map[string]*pageCanvas
	theme    theme.GlobalStyles

	catalog      *catalog.Catalog
	emitter      EventEmitter
	historyLimit int
}

// New returns a workspace with a single empty home page.
func New(name string, opts Options) *Workspace {
	w := newWorkspace(name, opts)
	w.pages = NewPageSet()
	home := w.pages.Home()
	w.active = home.ID
	w.canvases[home.ID] = w.newCanvas(canvas.List{})

	return w
}

func newWorkspace(name string, opts Options) *Workspace {
	if opts.Catalog == nil {
		opts.Catalog = catalog.Default()
	}
	if opts.Emitter == nil {
		opts.Emitter = nopEmitter{}
	}

	return &Workspace{
		name:         name,
		canvases:     make(map[string]*pageCanvas),
		theme:        theme.Default(),
		catalog:      opts.Catalog,
		emitter:      opts.Emitter,
		historyLimit: opts.HistoryLimit,
	}
}

func (w *Workspace) newCanvas(initial canvas.List) *pageCanvas {
	return &pageCanvas{
		elements: initial.Clone(),
		history:  history.New(initial, w.historyLimit),
	}
}

// Name returns the project name.
func (w *Workspace) Name() string { return w.name }

// Catalog returns the template catalog the workspace resolves against.
func (w *Workspace) Catalog() *catalog.Catalog { return w.catalog }

// SetEmitter replaces the event sink.
func (w *Workspace) SetEmitter(e EventEmitter) {
	if e == nil {
		e = nopEmitter{}
	}
	w.emitter = e
}

// Pages returns the pages in order.
func (w *Workspace) Pages() []Page { return w.pages.List() }

// Page returns the page with id; an empty id means the active page.
func (w *Workspace) Page(id string) (Page, error) {
	return w.pages.Get(w.resolve(id))
}

// HomePage returns the home page.
func (w *Workspace) HomePage() Page { return w.pages.Home() }

// ActivePage returns the page that operations without an explicit page use.
func (w *Workspace) ActivePage() Page {
	p, err := w.pages.Get(w.active)
	if err != nil {
		return w.pages.Home()
	}

	return p
}

// UsePage makes the page with id active.
func (w *Workspace) UsePage(ctx context.Context, id string) error {
	if _, err := w.pages.Get(id); err != nil {
		return w.reject(ctx, err)
	}
	w.active = id
	w.emitter.Emit(ctx, EventPagesChanged, map[string]string{"activePageId": id})

	return nil
}

// Elements returns a copy of a page's element list.
func (w *Workspace) Elements(pageID string) (canvas.List, error) {
	pc, err := w.canvas(pageID)
	if err != nil {
		return nil, err
	}

	return pc.elements.Clone(), nil
}

// CanUndo reports whether the page has an earlier snapshot.
func (w *Workspace) CanUndo(pageID string) bool {
	pc, err := w.canvas(pageID)
	return err == nil && pc.history.CanUndo()
}

// CanRedo reports whether the page has a later snapshot.
func (w *Workspace) CanRedo(pageID string) bool {
	pc, err := w.canvas(pageID)
	return err == nil && pc.history.CanRedo()
}

// AddPage creates a page with an empty canvas.
func (w *Workspace) AddPage(ctx context.Context, name, path string) (Page, error) {
	p, err := w.pages.Add(name, path)
	if err != nil {
		return Page{}, w.reject(ctx, err)
	}
	w.canvases[p.ID] = w.newCanvas(canvas.List{})
	w.emitter.Emit(ctx, EventPagesChanged, w.pages.List())

	return p, nil
}

// RenamePage renames a page and, unless it is home, moves it to path.
func (w *Workspace) RenamePage(ctx context.Context, id, name, path string) (Page, error) {
	p, err := w.pages.Rename(w.resolve(id), name, path)
	if err != nil {
		return Page{}, w.reject(ctx, err)
	}
	w.emitter.Emit(ctx, EventPagesChanged, w.pages.List())

	return p, nil
}

// DeletePage removes a page and its canvas.
func (w *Workspace) DeletePage(ctx context.Context, id string) error {
	id = w.resolve(id)
	if err := w.pages.Delete(id); err != nil {
		return w.reject(ctx, err)
	}
	delete(w.canvases, id)
	if w.active == id {
		w.active = w.pages.Home().ID
	}
	w.emitter.Emit(ctx, EventPagesChanged, w.pages.List())

	return nil
}

// SetHomePage moves the home flag to the page with id.
func (w *Workspace) SetHomePage(ctx context.Context, id string) (Page, error) {
	p, err := w.pages.SetHome(w.resolve(id))
	if err != nil {
		return Page{}, w.reject(ctx, err)
	}
	w.emitter.Emit(ctx, EventPagesChanged, w.pages.List())

	return p, nil
}

// AddElement places a new instance of templateID at the end of the page.
func (w *Workspace) AddElement(ctx context.Context, pageID, templateID string) (canvas.Element, error) {
	pageID = w.resolve(pageID)
	pc, err := w.canvas(pageID)
	if err != nil {
		return canvas.Element{}, w.reject(ctx, err)
	}
	t, ok := w.catalog.Lookup(templateID)
	if !ok {
		return canvas.Element{}, w.reject(ctx, errors.NewNotFoundError(errors.CodeTemplateNotFound,
			fmt.Sprintf("template %q not found", templateID)))
	}

	e := canvas.FromTemplate(t, pc.elements)
	w.commit(ctx, pageID, pc, pc.elements.Add(e))

	return e, nil
}

// UpdateElement applies a patch to an element. Prop values are checked
// against the editor kinds of the element's template when it still exists.
func (w *Workspace) UpdateElement(ctx context.Context, pageID, id string, p canvas.Patch) (canvas.Element, error) {
	pageID = w.resolve(pageID)
	pc, err := w.canvas(pageID)
	if err != nil {
		return canvas.Element{}, w.reject(ctx, err)
	}
	current, err := pc.elements.Get(id)
	if err != nil {
		return canvas.Element{}, w.reject(ctx, err)
	}
	if t, ok := w.catalog.Lookup(current.TemplateID); ok {
		if err := catalog.CheckProps(t, p.Props); err != nil {
			return canvas.Element{}, w.reject(ctx, err)
		}
	}

	next, err := pc.elements.Update(id, p)
	if err != nil {
		return canvas.Element{}, w.reject(ctx, err)
	}
	w.commit(ctx, pageID, pc, next)

	return next.Get(id)
}

// DeleteElement removes an element from a page.
func (w *Workspace) DeleteElement(ctx context.Context, pageID, id string) error {
	return w.apply(ctx, pageID, func(l canvas.List) (canvas.List, error) { return l.Delete(id) })
}

// DuplicateElement appends a copy of an element and returns the copy.
func (w *Workspace) DuplicateElement(ctx context.Context, pageID, id string) (canvas.Element, error) {
	var dup canvas.Element
	err := w.apply(ctx, pageID, func(l canvas.List) (canvas.List, error) {
		next, d, err := l.Duplicate(id)
		dup = d
		return next, err
	})

	return dup, err
}

// MoveElement reorders an element to index to.
func (w *Workspace) MoveElement(ctx context.Context, pageID, id string, to int) error {
	return w.apply(ctx, pageID, func(l canvas.List) (canvas.List, error) { return l.Move(id, to) })
}

// ArrangeOp names a stacking or transform operation.
type ArrangeOp string

const (
	BringToFront   ArrangeOp = "front"
	SendToBack     ArrangeOp = "back"
	BringForward   ArrangeOp = "forward"
	SendBackward   ArrangeOp = "backward"
	FlipHorizontal ArrangeOp = "flip-horizontal"
	FlipVertical   ArrangeOp = "flip-vertical"
)

// Arrange applies a stacking or flip operation to an element.
func (w *Workspace) Arrange(ctx context.Context, pageID, id string, op ArrangeOp) error {
	return w.apply(ctx, pageID, func(l canvas.List) (canvas.List, error) {
		switch op {
		case BringToFront:
			return l.BringToFront(id)
		case SendToBack:
			return l.SendToBack(id)
		case BringForward:
			return l.BringForward(id)
		case SendBackward:
			return l.SendBackward(id)
		case FlipHorizontal:
			return l.Flip(id, canvas.Horizontal)
		case FlipVertical:
			return l.Flip(id, canvas.Vertical)
		}
		return nil, errors.NewValidationError("ERR_INVALID_ARRANGE", fmt.Sprintf("unknown arrange operation %q", op))
	})
}

// Rotate turns an element by deg degrees.
func (w *Workspace) Rotate(ctx context.Context, pageID, id string, deg int) error {
	return w.apply(ctx, pageID, func(l canvas.List) (canvas.List, error) { return l.Rotate(id, deg) })
}

// ReplaceElements swaps a page's whole element list, recording history.
func (w *Workspace) ReplaceElements(ctx context.Context, pageID string, elements canvas.List) error {
	return w.apply(ctx, pageID, func(canvas.List) (canvas.List, error) { return elements.Clone(), nil })
}

// Undo restores the previous snapshot of a page.
func (w *Workspace) Undo(ctx context.Context, pageID string) (canvas.List, error) {
	return w.travel(ctx, pageID, true)
}

// Redo restores the next snapshot of a page.
func (w *Workspace) Redo(ctx context.Context, pageID string) (canvas.List, error) {
	return w.travel(ctx, pageID, false)
}

func (w *Workspace) travel(ctx context.Context, pageID string, back bool) (canvas.List, error) {
	pageID = w.resolve(pageID)
	pc, err := w.canvas(pageID)
	if err != nil {
		return nil, w.reject(ctx, err)
	}

	var (
		list canvas.List
		ok   bool
	)
	if back {
		list, ok = pc.history.Undo()
	} else {
		list, ok = pc.history.Redo()
	}
	if !ok {
		if back {
			return list, w.reject(ctx, errors.NewValidationError(errors.CodeNothingToUndo, "nothing to undo"))
		}
		return list, w.reject(ctx, errors.NewValidationError(errors.CodeNothingToRedo, "nothing to redo"))
	}

	pc.elements = list.Clone()
	msg := "Отменено"
	if !back {
		msg = "Повторено"
	}
	w.emitter.Emit(ctx, EventElementsChanged, map[string]any{"pageId": pageID, "count": len(list)})
	w.emitter.Emit(ctx, EventHistoryChanged, w.historyInfo(pageID, pc))
	w.emitter.Emit(ctx, EventNotice, Notice{Level: "info", Message: msg})

	return list, nil
}

// Theme returns the global style tokens.
func (w *Workspace) Theme() theme.GlobalStyles { return w.theme }

// SetTheme updates one global style token.
func (w *Workspace) SetTheme(ctx context.Context, key, value string) (theme.GlobalStyles, error) {
	next, err := w.theme.Set(key, value)
	if err != nil {
		return w.theme, w.reject(ctx, err)
	}
	w.theme = next
	w.emitter.Emit(ctx, EventThemeChanged, next)

	return next, nil
}

func (w *Workspace) apply(ctx context.Context, pageID string, fn func(canvas.List) (canvas.List, error)) error {
	pageID = w.resolve(pageID)
	pc, err := w.canvas(pageID)
	if err != nil {
		return w.reject(ctx, err)
	}
	next, err := fn(pc.elements)
	if err != nil {
		return w.reject(ctx, err)
	}
	w.commit(ctx, pageID, pc, next)

	return nil
}

func (w *Workspace) commit(ctx context.Context, pageID string, pc *pageCanvas, next canvas.List) {
	pc.elements = next
	pc.history.Record(next)
	w.emitter.Emit(ctx, EventElementsChanged, map[string]any{"pageId": pageID, "count": len(next)})
	w.emitter.Emit(ctx, EventHistoryChanged, w.historyInfo(pageID, pc))
}

func (w *Workspace) historyInfo(pageID string, pc *pageCanvas) map[string]any {
	return map[string]any{
		"pageId":  pageID,
		"index":   pc.history.Index(),
		"length":  pc.history.Len(),
		"canUndo": pc.history.CanUndo(),
		"canRedo": pc.history.CanRedo(),
	}
}

// reject reports a rejected operation as a notice and passes the error through.
func (w *Workspace) reject(ctx context.Context, err error) error {
	if errors.IsUserError(err) {
		n := Notice{Level: "error", Message: err.Error()}
		if be, ok := errors.AsBuilderError(err); ok {
			n.Message = be.Message
			n.Code = be.Code
		}
		w.emitter.Emit(ctx, EventNotice, n)
	}

	return err
}

func (w *Workspace) resolve(pageID string) string {
	if strings.TrimSpace(pageID) == "" {
		return w.ActivePage().ID
	}

	return pageID
}

func (w *Workspace) canvas(pageID string) (*pageCanvas, error) {
	pageID = w.resolve(pageID)
	pc, ok := w.canvases[pageID]
	if !ok {
		return nil, pageNotFound(pageID)
	}

	return pc, nil
}

// PageState is the persisted form of one page's canvas.
type PageState struct {
	Elements canvas.List   `json:"elements"`
	History  history.State `json:"history"`
}

// State is the persisted form of a whole workspace.
type State struct {
	ProjectName  string               `json:"projectName"`
	ActivePage   string               `json:"activePage"`
	Pages        []Page               `json:"pages"`
	Canvases     map[string]PageState `json:"canvases"`
	Theme        theme.GlobalStyles   `json:"theme"`
	LastModified time.Time            `json:"lastModified"`
}

// State captures the workspace for persistence.
func (w *Workspace) State(now time.Time) State {
	st := State{
		ProjectName:  w.name,
		ActivePage:   w.active,
		Pages:        w.pages.List(),
		Canvases:     make(map[string]PageState, len(w.canvases)),
		Theme:        w.theme,
		LastModified: now.UTC(),
	}
	for id, pc := range w.canvases {
		st.Canvases[id] = PageState{Elements: pc.elements.Clone(), History: pc.history.State()}
	}

	return st
}

// Restore rebuilds a workspace from persisted state. Pages without a stored
// canvas get an empty one.
func Restore(st State, opts Options) *Workspace {
	w := newWorkspace(st.ProjectName, opts)
	w.pages = RestorePageSet(st.Pages)
	if st.Theme != (theme.GlobalStyles{}) {
		w.theme = st.Theme
	}
	for _, p := range w.pages.List() {
		ps, ok := st.Canvases[p.ID]
		if !ok {
			w.canvases[p.ID] = w.newCanvas(canvas.List{})
			continue
		}
		elements := ps.Elements.Clone()
		w.canvases[p.ID] = &pageCanvas{
			elements: elements,
			history:  history.Restore(ps.History, elements, w.historyLimit),
		}
	}
	w.active = st.ActivePage
	if _, err := w.pages.Get(w.active); err != nil {
		w.active = w.pages.Home().ID
	}

	return w
}
