package mcpserver

import (
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/projects"
	"github.com/conneroisu/webbuilder/internal/site"
	"github.com/conneroisu/webbuilder/internal/storage"
)

type toolHandler func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func newTestServer(t *testing.T, deps Deps) *Server {
	t.Helper()
	if deps.Workspace == nil {
		deps.Workspace = site.New("demo", site.Options{})
	}
	deps.Now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }

	return New(deps)
}

func call(t *testing.T, h toolHandler, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	res, err := h(context.Background(), req)
	require.NoError(t, err)
	require.NotNil(t, res)

	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok, "expected text content, got %T", res.Content[0])

	return tc.Text
}

func decodeResult[T any](t *testing.T, res *mcp.CallToolResult) T {
	t.Helper()
	require.False(t, res.IsError, resultText(t, res))
	var v T
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &v))

	return v
}

func TestSearchCatalog(t *testing.T) {
	s := newTestServer(t, Deps{})

	heroes := decodeResult[[]templateSummary](t, call(t, s.handleSearchCatalog, map[string]any{"category": "heroes"}))
	require.NotEmpty(t, heroes)
	for _, h := range heroes {
		assert.Equal(t, "heroes", h.Category)
	}

	all := decodeResult[[]templateSummary](t, call(t, s.handleSearchCatalog, nil))
	assert.Len(t, all, s.workspace.Catalog().Len())

	tpl := call(t, s.handleGetTemplate, map[string]any{"templateId": "hero-01"})
	assert.Contains(t, resultText(t, tpl), `<h1>{{title}}</h1>`)

	missing := call(t, s.handleGetTemplate, map[string]any{"templateId": "nope"})
	assert.True(t, missing.IsError)
	assert.Contains(t, resultText(t, missing), "nope")
}

func TestPageTools(t *testing.T) {
	s := newTestServer(t, Deps{})

	page := decodeResult[site.Page](t, call(t, s.handleAddPage, map[string]any{"name": "Blog"}))
	assert.Equal(t, "/blog", page.Path)

	res := call(t, s.handleSetActivePage, map[string]any{"pageId": page.ID})
	assert.Equal(t, "Active page set to "+page.ID, resultText(t, res))

	listed := decodeResult[pageListing](t, call(t, s.handleListPages, nil))
	assert.Len(t, listed.Pages, 2)
	assert.Equal(t, page.ID, listed.ActivePageID)

	renamed := decodeResult[site.Page](t, call(t, s.handleRenamePage, map[string]any{"pageId": page.ID, "name": "News", "path": "news"}))
	assert.Equal(t, "/news", renamed.Path)

	home := decodeResult[site.Page](t, call(t, s.handleSetHomePage, map[string]any{"pageId": page.ID}))
	assert.True(t, home.IsHomePage)
	assert.Equal(t, "/", home.Path)

	rejected := call(t, s.handleDeletePage, map[string]any{"pageId": page.ID})
	assert.True(t, rejected.IsError, "home page cannot be deleted")

	missingArg := call(t, s.handleDeletePage, map[string]any{})
	assert.True(t, missingArg.IsError)
	assert.Contains(t, resultText(t, missingArg), "pageId is required")
}

func TestElementTools(t *testing.T) {
	s := newTestServer(t, Deps{})

	el := decodeResult[canvas.Element](t, call(t, s.handleAddElement, map[string]any{"templateId": "hero-01"}))
	assert.Equal(t, "hero-01", el.TemplateID)

	updated := decodeResult[canvas.Element](t, call(t, s.handleUpdateElement, map[string]any{
		"elementId": el.ID,
		"props":     `{"title":"Hi"}`,
		"styles":    `{"padding":"24px"}`,
		"mobile":    `{"padding":"8px"}`,
	}))
	assert.Equal(t, "Hi", updated.Props["title"].Text())
	assert.Equal(t, "24px", updated.Styles["padding"])
	require.NotNil(t, updated.ResponsiveStyles)
	assert.Equal(t, "8px", updated.ResponsiveStyles.Mobile["padding"])

	front := decodeResult[canvas.Element](t, call(t, s.handleArrangeElement, map[string]any{"elementId": el.ID, "operation": "front"}))
	assert.Equal(t, "9999", front.Styles["zIndex"])

	rotated := decodeResult[canvas.Element](t, call(t, s.handleRotateElement, map[string]any{"elementId": el.ID, "degrees": float64(45)}))
	assert.Equal(t, "rotate(45deg)", rotated.Styles["transform"])

	dup := decodeResult[canvas.Element](t, call(t, s.handleDuplicateElement, map[string]any{"elementId": el.ID}))
	assert.NotEqual(t, el.ID, dup.ID)

	moved := decodeResult[elementListing](t, call(t, s.handleMoveElement, map[string]any{"elementId": dup.ID, "index": float64(0)}))
	require.Len(t, moved.Elements, 2)
	assert.Equal(t, dup.ID, moved.Elements[0].ID)

	res := call(t, s.handleDeleteElement, map[string]any{"elementId": dup.ID})
	assert.Equal(t, "Element "+dup.ID+" deleted", resultText(t, res))

	undone := decodeResult[elementListing](t, call(t, s.handleUndo, nil))
	assert.Len(t, undone.Elements, 2)
	assert.True(t, undone.CanRedo)

	redone := decodeResult[elementListing](t, call(t, s.handleRedo, nil))
	assert.Len(t, redone.Elements, 1)

	listed := decodeResult[elementListing](t, call(t, s.handleListElements, nil))
	assert.Equal(t, s.workspace.ActivePage().ID, listed.PageID)
	assert.Len(t, listed.Elements, 1)
}

func TestUpdateElementRejections(t *testing.T) {
	s := newTestServer(t, Deps{})
	el := decodeResult[canvas.Element](t, call(t, s.handleAddElement, map[string]any{"templateId": "header-03"}))

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"empty patch", map[string]any{"elementId": el.ID}, "nothing to update"},
		{"bad props json", map[string]any{"elementId": el.ID, "props": `[1]`}, "props must be a JSON object"},
		{"bad number", map[string]any{"elementId": el.ID, "props": `{"opacity":"high"}`}, "expects a number"},
		{"bad styles", map[string]any{"elementId": el.ID, "styles": `{"padding":4}`}, "styles must be a JSON object"},
		{"unknown element", map[string]any{"elementId": "nope", "props": `{"nav":"x"}`}, "not found"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := call(t, s.handleUpdateElement, tt.args)
			assert.True(t, res.IsError)
			assert.Contains(t, resultText(t, res), tt.want)
		})
	}

	coerced := decodeResult[canvas.Element](t, call(t, s.handleUpdateElement, map[string]any{
		"elementId": el.ID,
		"props":     `{"opacity":"0.5"}`,
	}))
	n, ok := coerced.Props["opacity"].Num()
	assert.True(t, ok)
	assert.Equal(t, 0.5, n)
}

func TestUndoAtBoundIsToolError(t *testing.T) {
	s := newTestServer(t, Deps{})
	res := call(t, s.handleUndo, nil)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "nothing to undo")
}

func TestExportProject(t *testing.T) {
	dir := t.TempDir()
	s := newTestServer(t, Deps{ExportDir: dir, CSSThreshold: 50})
	call(t, s.handleAddElement, map[string]any{"templateId": "hero-01"})

	html := call(t, s.handleExportProject, nil)
	assert.Contains(t, resultText(t, html), "<title>demo</title>")

	css := call(t, s.handleExportProject, map[string]any{"format": "css"})
	assert.Contains(t, resultText(t, css), "/* Generated CSS */")

	js := call(t, s.handleExportProject, map[string]any{"format": "json"})
	assert.Contains(t, resultText(t, js), `"createdAt": "2024-05-01T12:30:00.000Z"`)

	bad := call(t, s.handleExportProject, map[string]any{"format": "pdf"})
	assert.True(t, bad.IsError)

	written := decodeResult[map[string][]string](t, call(t, s.handleExportProject, map[string]any{"write": true}))
	require.NotEmpty(t, written["files"])
	assert.Equal(t, filepath.Join(dir, "demo.html"), written["files"][0])
	assert.FileExists(t, filepath.Join(dir, "demo.json"))
}

func TestSaveProject(t *testing.T) {
	repo := projects.New(storage.NewMemory(), nil)
	s := newTestServer(t, Deps{Repo: repo})
	call(t, s.handleAddElement, map[string]any{"templateId": "hero-01"})

	_, err := repo.Load(context.Background(), "demo")
	require.Error(t, err, "nothing is stored before save without autosave")

	res := call(t, s.handleSaveProject, nil)
	assert.Equal(t, "Project demo saved", resultText(t, res))

	elements, err := repo.Load(context.Background(), "demo")
	require.NoError(t, err)
	assert.Len(t, elements, 1)

	noRepo := newTestServer(t, Deps{})
	assert.True(t, call(t, noRepo.handleSaveProject, nil).IsError)
}

func TestAutosave(t *testing.T) {
	repo := projects.New(storage.NewMemory(), nil)
	s := newTestServer(t, Deps{Repo: repo, Autosave: true})

	call(t, s.handleAddElement, map[string]any{"templateId": "hero-01"})
	elements, err := repo.Load(context.Background(), "demo")
	require.NoError(t, err)
	assert.Len(t, elements, 1)

	call(t, s.handleSetTheme, map[string]any{"key": "colors.primary", "value": "#000000"})
	w, err := repo.LoadWorkspace(context.Background(), "demo", site.Options{})
	require.NoError(t, err)
	assert.Equal(t, "#000000", w.Theme().Colors.Primary)
}

func TestThemeTools(t *testing.T) {
	s := newTestServer(t, Deps{})
	assert.Contains(t, resultText(t, call(t, s.handleGetTheme, nil)), "#3b82f6")

	bad := call(t, s.handleSetTheme, map[string]any{"key": "colors.nope", "value": "x"})
	assert.True(t, bad.IsError)
}

func TestResources(t *testing.T) {
	s := newTestServer(t, Deps{})

	contents, err := s.handleCategoriesResource(context.Background(), mcp.ReadResourceRequest{})
	require.NoError(t, err)
	require.Len(t, contents, 1)
	text := contents[0].(mcp.TextResourceContents).Text
	assert.Contains(t, text, `"category": "heroes"`)

	home := s.workspace.HomePage().ID
	req := mcp.ReadResourceRequest{}
	req.Params.URI = "webbuilder://page/" + home + "/elements"
	contents, err = s.handlePageElementsResource(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, contents[0].(mcp.TextResourceContents).Text, `"pageId": "`+home+`"`)

	req.Params.URI = "webbuilder://page/missing/elements"
	_, err = s.handlePageElementsResource(context.Background(), req)
	assert.Error(t, err)
}

func TestPageIDFromURI(t *testing.T) {
	tests := []struct {
		uri  string
		want string
	}{
		{"webbuilder://page/page-1/elements", "page-1"},
		{"webbuilder://page/a/b/elements", ""},
		{"webbuilder://page/page-1", ""},
		{"notes://page/page-1/elements", ""},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			assert.Equal(t, tt.want, pageIDFromURI(tt.uri))
		})
	}
}

func TestLandingPagePrompt(t *testing.T) {
	s := newTestServer(t, Deps{})
	req := mcp.GetPromptRequest{}
	req.Params.Arguments = map[string]string{"topic": "coffee"}

	res, err := s.handleLandingPagePrompt(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "Build a landing page for: coffee", res.Description)
	require.Len(t, res.Messages, 1)
	assert.Contains(t, res.Messages[0].Content.(mcp.TextContent).Text, `"coffee"`)
}
