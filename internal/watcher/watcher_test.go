package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const heroSnapshot = `{
  "projectName": "landing",
  "version": "1.0.0",
  "createdAt": "2024-05-01T12:30:00.000Z",
  "elements": [
    {"id": "a", "componentId": "hero-01", "props": {}, "styles": {"color": "red"}}
  ]
}`

func TestEventTypeString(t *testing.T) {
	testCases := []struct {
		eventType EventType
		expected  string
	}{
		{EventTypeCreated, "created"},
		{EventTypeModified, "modified"},
		{EventTypeDeleted, "deleted"},
		{EventTypeRenamed, "renamed"},
		{EventType(99), "unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.expected, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.eventType.String())
		})
	}
}

func TestFilters(t *testing.T) {
	assert.True(t, JSONFilter("projects/site.json"))
	assert.False(t, JSONFilter("projects/site.html"))
	assert.True(t, NoHiddenFilter("projects/site.json"))
	assert.False(t, NoHiddenFilter("projects/.site.json"))
	assert.False(t, NoHiddenFilter("projects/site.json~"))
}

func TestValidatePath(t *testing.T) {
	p, err := validatePath("projects/./a")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("projects", "a"), p)

	for _, bad := range []string{"", "  ", "..", "../x", "a/../../b"} {
		_, err := validatePath(bad)
		assert.Error(t, err, bad)
	}
}

func TestDebouncerKeepsLastEventPerPath(t *testing.T) {
	d := &Debouncer{
		delay:  time.Hour,
		events: make(chan ChangeEvent, 10),
		output: make(chan []ChangeEvent, 1),
	}

	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "b.json"})
	d.addEvent(ChangeEvent{Type: EventTypeCreated, Path: "a.json"})
	d.addEvent(ChangeEvent{Type: EventTypeModified, Path: "b.json"})
	d.timer.Stop()
	d.flush()

	batch := <-d.output
	require.Len(t, batch, 2)
	assert.Equal(t, "a.json", batch[0].Path)
	assert.Equal(t, "b.json", batch[1].Path)
	assert.Equal(t, EventTypeModified, batch[1].Type)
	assert.Empty(t, d.pending)
}

func TestAddRecursiveCreatesRoot(t *testing.T) {
	fw, err := NewFileWatcher(10*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	root := filepath.Join(t.TempDir(), "projects")
	require.NoError(t, fw.AddRecursive(root))
	assert.DirExists(t, root)
	assert.Contains(t, fw.WatchList(), root)
}

func TestWatcherDeliversDebouncedBatch(t *testing.T) {
	fw, err := NewFileWatcher(50*time.Millisecond, nil)
	require.NoError(t, err)
	defer fw.Stop()

	dir := t.TempDir()
	require.NoError(t, fw.AddPath(dir))
	fw.AddFilter(JSONFilter)

	var mu sync.Mutex
	var got []ChangeEvent
	done := make(chan struct{}, 1)
	fw.AddHandler(func(_ context.Context, events []ChangeEvent) error {
		mu.Lock()
		got = append(got, events...)
		mu.Unlock()
		select {
		case done <- struct{}{}:
		default:
		}
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, fw.Start(ctx))

	require.NoError(t, os.WriteFile(filepath.Join(dir, "ignored.txt"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "site.json"), []byte("{}"), 0o644))

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("no batch delivered")
	}

	mu.Lock()
	defer mu.Unlock()
	require.NotEmpty(t, got)
	for _, ev := range got {
		assert.Equal(t, filepath.Join(dir, "site.json"), ev.Path)
	}
}

func TestExporterExportFile(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.json")
	require.NoError(t, os.WriteFile(src, []byte(heroSnapshot), 0o644))

	out := filepath.Join(dir, "dist")
	e := &Exporter{
		OutDir:       out,
		CSSThreshold: 50,
		Now:          func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	}

	written, err := e.ExportFile(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(out, "landing.html"),
		filepath.Join(out, "landing.css"),
		filepath.Join(out, "landing.json"),
	}, written)

	html, err := os.ReadFile(written[0])
	require.NoError(t, err)
	assert.Contains(t, string(html), "Добро пожаловать")
	assert.Contains(t, string(html), `class="element-0"`)
}

func TestExporterHandleSkipsOwnOutputAndCollectsErrors(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "dist")
	require.NoError(t, os.MkdirAll(out, 0o755))

	good := filepath.Join(dir, "good.json")
	bad := filepath.Join(dir, "bad.json")
	own := filepath.Join(out, "landing.json")
	require.NoError(t, os.WriteFile(good, []byte(heroSnapshot), 0o644))
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(own, []byte("{"), 0o644))

	e := &Exporter{OutDir: out, CSSThreshold: 50}
	err := e.Handle(context.Background(), []ChangeEvent{
		{Type: EventTypeModified, Path: bad},
		{Type: EventTypeDeleted, Path: filepath.Join(dir, "gone.json")},
		{Type: EventTypeModified, Path: good},
		{Type: EventTypeModified, Path: own},
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
	assert.FileExists(t, filepath.Join(out, "landing.html"))
}
