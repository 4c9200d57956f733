package projects

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/site"
	"github.com/conneroisu/webbuilder/internal/storage"
	"github.com/conneroisu/webbuilder/internal/types"
)

func newRepo(t *testing.T) (*Repository, *storage.Memory) {
	t.Helper()
	kv := storage.NewMemory()
	r := New(kv, nil)
	r.now = func() time.Time { return time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC) }

	return r, kv
}

func sample() canvas.List {
	return canvas.List{{
		ID:         "element-1",
		TemplateID: "hero-01",
		Props:      types.Props{"title": types.String("Hi")},
		Styles:     types.Styles{"color": "red"},
		ResponsiveStyles: &canvas.ResponsiveStyles{
			Mobile: types.Styles{"fontSize": "12px"},
		},
	}}
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	r, kv := newRepo(t)

	require.NoError(t, r.Save(ctx, "site", sample()))

	raw, err := kv.Get(ctx, "webbuilder-site")
	require.NoError(t, err)
	var rec map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	assert.JSONEq(t, `"site"`, string(rec["projectName"]))
	assert.JSONEq(t, `"2024-05-01T09:00:00.000Z"`, string(rec["lastModified"]))

	loaded, err := r.Load(ctx, "site")
	require.NoError(t, err)
	assert.Equal(t, sample(), loaded)

	index, err := kv.Get(ctx, IndexKey)
	require.NoError(t, err)
	assert.Equal(t, `["site"]`, index)
}

func TestSaveIndexIsIdempotent(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)

	require.NoError(t, r.Save(ctx, "a", nil))
	require.NoError(t, r.Save(ctx, "b", nil))
	require.NoError(t, r.Save(ctx, "a", sample()))

	names, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	empty, err := r.Load(ctx, "b")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestListEmpty(t *testing.T) {
	r, _ := newRepo(t)

	names, err := r.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{}, names)
}

func TestLoadMissing(t *testing.T) {
	r, _ := newRepo(t)

	_, err := r.Load(context.Background(), "ghost")
	assert.True(t, errors.HasCode(err, errors.CodeProjectNotFound))
}

func TestRejectsBadNames(t *testing.T) {
	r, _ := newRepo(t)

	for _, name := range []string{"", "  ", "projects"} {
		err := r.Save(context.Background(), name, nil)
		assert.True(t, errors.HasCode(err, errors.CodeInvalidProject), "%q", name)
	}
}

func TestCorruptRecord(t *testing.T) {
	ctx := context.Background()
	r, kv := newRepo(t)
	require.NoError(t, kv.Set(ctx, Key("bad"), "{"))

	_, err := r.Load(ctx, "bad")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidProject))
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	r, kv := newRepo(t)

	require.NoError(t, r.Save(ctx, "a", nil))
	require.NoError(t, r.Save(ctx, "b", nil))
	require.NoError(t, r.SaveWorkspace(ctx, site.New("a", site.Options{})))

	require.NoError(t, r.Delete(ctx, "a"))

	names, err := r.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, names)
	keys, err := kv.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{Key("b"), IndexKey}, keys)

	err = r.Delete(ctx, "a")
	assert.True(t, errors.HasCode(err, errors.CodeProjectNotFound))
}

func TestWorkspaceRoundTrip(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)

	w := site.New("shop", site.Options{})
	about, err := w.AddPage(ctx, "About", "")
	require.NoError(t, err)
	_, err = w.AddElement(ctx, "", "hero-01")
	require.NoError(t, err)
	_, err = w.AddElement(ctx, about.ID, "footer-01")
	require.NoError(t, err)
	_, err = w.SetTheme(ctx, "colors.primary", "#000000")
	require.NoError(t, err)

	require.NoError(t, r.SaveWorkspace(ctx, w))

	back, err := r.LoadWorkspace(ctx, "shop", site.Options{})
	require.NoError(t, err)
	assert.Equal(t, w.Pages(), back.Pages())
	assert.Equal(t, "#000000", back.Theme().Colors.Primary)
	assert.True(t, back.CanUndo(""))

	aboutEls, err := back.Elements(about.ID)
	require.NoError(t, err)
	require.Len(t, aboutEls, 1)
	assert.Equal(t, "footer-01", aboutEls[0].TemplateID)

	mirrored, err := r.Load(ctx, "shop")
	require.NoError(t, err)
	require.Len(t, mirrored, 1)
	assert.Equal(t, "hero-01", mirrored[0].TemplateID)
}

func TestLoadWorkspaceFromElementList(t *testing.T) {
	ctx := context.Background()
	r, _ := newRepo(t)
	require.NoError(t, r.Save(ctx, "legacy", sample()))

	w, err := r.LoadWorkspace(ctx, "legacy", site.Options{})
	require.NoError(t, err)
	assert.Equal(t, "legacy", w.Name())
	require.Len(t, w.Pages(), 1)

	els, err := w.Elements("")
	require.NoError(t, err)
	assert.Equal(t, sample(), els)
	assert.False(t, w.CanUndo(""))
}

func TestOpenOrCreate(t *testing.T) {
	r, _ := newRepo(t)

	w, err := r.OpenOrCreate(context.Background(), "fresh", site.Options{})
	require.NoError(t, err)
	assert.Equal(t, "fresh", w.Name())
	els, err := w.Elements("")
	require.NoError(t, err)
	assert.Empty(t, els)
}

func TestRepositoryOverSQLite(t *testing.T) {
	ctx := context.Background()
	kv, err := storage.OpenSQL(ctx, storage.DriverSQLite, t.TempDir()+"/p.db", "kv")
	require.NoError(t, err)
	defer kv.Close()

	r := New(kv, nil)
	require.NoError(t, r.Save(ctx, "x", sample()))
	loaded, err := r.Load(ctx, "x")
	require.NoError(t, err)
	assert.Equal(t, sample(), loaded)
}
