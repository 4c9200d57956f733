package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/site"
	"github.com/conneroisu/webbuilder/internal/theme"
	"github.com/conneroisu/webbuilder/internal/version"
)

// resetFlags puts every flag of cmd and its children back to its default so
// values do not leak between executions of the shared command tree.
func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		value := f.Value
		if vv, ok := value.(*validatingValue); ok {
			value = vv.Value
		}
		if sv, ok := value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = value.Set(f.DefValue)
		}
		f.Changed = false
	})
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func executeCommand(args ...string) (string, error) {
	resetFlags(rootCmd)

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()

	return out.String(), err
}

func run(t *testing.T, args ...string) string {
	t.Helper()
	out, err := executeCommand(args...)
	require.NoError(t, err, "webbuilder %s", strings.Join(args, " "))
	return out
}

// inProject moves the test into an empty directory; the default sqlite store
// is created there.
func inProject(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	return dir
}

func decodeJSON[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), out)
	return v
}

func listElements(t *testing.T, args ...string) canvas.List {
	t.Helper()
	return decodeJSON[canvas.List](t, run(t, append([]string{"element", "list", "-o", "json"}, args...)...))
}

func TestCatalogCommands(t *testing.T) {
	inProject(t)

	rows := decodeJSON[[]templateRow](t, run(t, "catalog", "list", "-o", "json"))
	assert.Len(t, rows, catalog.Default().Len())

	out := run(t, "catalog", "list", "--category", "heroes")
	assert.Contains(t, out, "hero-01")
	assert.NotContains(t, out, "footer-")

	out = run(t, "catalog", "search", "no such template anywhere")
	assert.Equal(t, "No templates found.\n", out)

	tmpl := decodeJSON[catalog.Template](t, run(t, "catalog", "show", "hero-01", "-o", "json"))
	assert.Equal(t, "heroes", tmpl.Category)
	assert.Contains(t, tmpl.HTML, "{{title}}")

	out = run(t, "catalog", "show", "hero-01")
	assert.Contains(t, out, "id: hero-01")

	out = run(t, "catalog", "categories", "-o", "yaml")
	assert.Contains(t, out, "category: heroes")

	out = run(t, "catalog", "validate")
	assert.Equal(t, fmt.Sprintf("Catalog OK: %d templates\n", catalog.Default().Len()), out)

	_, err := executeCommand("catalog", "list", "--category", "widgets")
	assert.True(t, errors.IsUserError(err))

	_, err = executeCommand("catalog", "show", "nope")
	assert.True(t, errors.HasCode(err, errors.CodeTemplateNotFound))

	_, err = executeCommand("catalog", "list", "-o", "xml")
	assert.Error(t, err)
}

func TestElementWorkflow(t *testing.T) {
	inProject(t)

	id := strings.TrimSpace(run(t, "element", "add", "hero-01"))
	require.True(t, strings.HasPrefix(id, "element-"), id)

	run(t, "element", "update", id,
		"--prop", "title=Привет, мир",
		"--style", "padding=40px",
		"--mobile", "font-size=14px",
		"--y", "120")

	elements := listElements(t)
	require.Len(t, elements, 1)
	e := elements[0]
	title, _ := e.Props["title"].Str()
	assert.Equal(t, "Привет, мир", title)
	assert.Equal(t, "40px", e.Styles["padding"])
	require.NotNil(t, e.ResponsiveStyles)
	assert.Equal(t, "14px", e.ResponsiveStyles.Mobile["font-size"])
	assert.Equal(t, 120.0, e.Position.Y)

	dup := strings.TrimSpace(run(t, "element", "duplicate", id))
	run(t, "element", "move", dup, "0")
	elements = listElements(t)
	require.Len(t, elements, 2)
	assert.Equal(t, dup, elements[0].ID)
	assert.Equal(t, id, elements[1].ID)

	run(t, "element", "rotate", id, "90")
	run(t, "element", "rotate", id, "45")
	e, err := listElements(t).Get(id)
	require.NoError(t, err)
	assert.Equal(t, "rotate(135deg)", e.Styles["transform"])

	run(t, "element", "front", dup)
	run(t, "element", "flip", dup, "--vertical")

	out := run(t, "element", "list")
	assert.Contains(t, out, "Простой герой")

	run(t, "element", "delete", dup)
	assert.Len(t, listElements(t), 1)

	out = run(t, "undo")
	assert.Contains(t, out, "2 elements")
	out = run(t, "redo")
	assert.Contains(t, out, "1 elements")

	_, err = executeCommand("redo")
	assert.True(t, errors.HasCode(err, errors.CodeNothingToRedo))
}

func TestElementUpdateRejections(t *testing.T) {
	inProject(t)

	id := strings.TrimSpace(run(t, "element", "add", "header-03"))

	_, err := executeCommand("element", "update", id)
	assert.True(t, errors.HasCode(err, "ERR_EMPTY_PATCH"))

	_, err = executeCommand("element", "update", id, "--prop", "opacity=very")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidProp))

	_, err = executeCommand("element", "update", id, "--prop", "novalue")
	assert.True(t, errors.HasCode(err, errors.CodeInvalidProp))

	_, err = executeCommand("element", "update", "element-missing", "--style", "color=red")
	assert.True(t, errors.HasCode(err, errors.CodeElementNotFound))

	_, err = executeCommand("element", "move", id, "first")
	assert.True(t, errors.IsUserError(err))

	_, err = executeCommand("element", "add", "hero-99")
	assert.True(t, errors.HasCode(err, errors.CodeTemplateNotFound))

	run(t, "element", "update", id, "--prop", "opacity=0.5")
	opacity, ok := listElements(t)[0].Props["opacity"].Num()
	assert.True(t, ok)
	assert.Equal(t, 0.5, opacity)

	// Rejected commands leave nothing behind to undo.
	run(t, "undo")
	run(t, "undo")
	_, err = executeCommand("undo")
	assert.True(t, errors.HasCode(err, errors.CodeNothingToUndo))
}

func TestPageCommands(t *testing.T) {
	inProject(t)

	out := run(t, "page", "add", "О нас")
	assert.Contains(t, out, "/о-нас")

	pages := decodeJSON[[]pageRow](t, run(t, "page", "list", "-o", "json"))
	require.Len(t, pages, 2)
	assert.True(t, pages[0].IsHomePage)
	assert.True(t, pages[0].Active)
	about := pages[1]

	run(t, "page", "use", "/о-нас")
	run(t, "element", "add", "hero-01")
	assert.Len(t, listElements(t), 1)
	assert.Empty(t, listElements(t, "--page", "/"))
	assert.Len(t, listElements(t, "--page", about.ID), 1)

	_, err := executeCommand("page", "delete", "/")
	assert.True(t, errors.HasCode(err, errors.CodeDeleteHomePage))

	_, err = executeCommand("page", "add", "Another", "--path", "/о-нас")
	assert.True(t, errors.HasCode(err, errors.CodeDuplicatePath))

	_, err = executeCommand("page", "use", "/missing")
	assert.True(t, errors.HasCode(err, errors.CodePageNotFound))

	out = run(t, "page", "rename", about.ID, "Команда", "--path", "/team")
	assert.Contains(t, out, "/team")

	run(t, "page", "home", "/team")
	pages = decodeJSON[[]pageRow](t, run(t, "page", "list", "-o", "json"))
	require.Len(t, pages, 2)
	for _, p := range pages {
		if p.ID == about.ID {
			assert.True(t, p.IsHomePage)
			assert.Equal(t, site.HomePath, p.Path)
		} else {
			assert.False(t, p.IsHomePage)
		}
	}

	run(t, "page", "delete", pages[0].ID)
	pages = decodeJSON[[]pageRow](t, run(t, "page", "list", "-o", "json"))
	assert.Len(t, pages, 1)
}

func TestProjectCommands(t *testing.T) {
	dir := inProject(t)

	assert.Equal(t, "No projects saved.\n", run(t, "project", "list"))

	run(t, "element", "add", "hero-01")
	run(t, "-P", "shop", "element", "add", "footer-01")
	run(t, "-P", "shop", "element", "add", "footer-01")

	rows := decodeJSON[[]projectRow](t, run(t, "project", "list", "-o", "json"))
	require.Len(t, rows, 2)
	byName := map[string]int{}
	for _, r := range rows {
		byName[r.Name] = r.Elements
	}
	assert.Equal(t, map[string]int{"my-website": 1, "shop": 2}, byName)

	out := run(t, "project", "show", "shop")
	assert.Contains(t, out, "Project: shop")
	assert.Contains(t, out, "home active")

	snapshot := `{
  "projectName": "imported",
  "version": "1.0",
  "createdAt": "2024-05-01T12:00:00.000Z",
  "elements": [
    {"id": "element-a", "componentId": "hero-01", "props": {"title": "Импорт"}, "styles": {}}
  ]
}`
	file := filepath.Join(dir, "imported.json")
	require.NoError(t, os.WriteFile(file, []byte(snapshot), 0o644))
	out = run(t, "project", "import", file)
	assert.Contains(t, out, "Imported 1 elements into imported")

	elements := listElements(t, "-P", "imported")
	require.Len(t, elements, 1)
	assert.Equal(t, "element-a", elements[0].ID)

	run(t, "project", "delete", "imported")
	rows = decodeJSON[[]projectRow](t, run(t, "project", "list", "-o", "json"))
	assert.Len(t, rows, 2)

	_, err := executeCommand("project", "delete", "imported")
	assert.True(t, errors.HasCode(err, errors.CodeProjectNotFound))

	_, err = executeCommand("project", "show", "ghost")
	assert.True(t, errors.HasCode(err, errors.CodeProjectNotFound))
}

func TestExportCommand(t *testing.T) {
	dir := inProject(t)

	id := strings.TrimSpace(run(t, "element", "add", "hero-01"))
	run(t, "element", "update", id, "--style", "background-color=#111827", "--tablet", "padding=20px")

	out := run(t, "export")
	files := strings.Fields(out)
	assert.Contains(t, files, filepath.Join("dist", "my-website.html"))
	assert.Contains(t, files, filepath.Join("dist", "my-website.json"))
	for _, f := range files {
		assert.FileExists(t, filepath.Join(dir, f))
	}

	html := run(t, "export", "--stdout", "html")
	assert.True(t, strings.HasPrefix(html, "<!DOCTYPE html>"))
	assert.Contains(t, html, "Добро пожаловать")
	assert.Contains(t, html, "@media (max-width: 768px)")

	css := run(t, "export", "--stdout", "css")
	assert.Contains(t, css, "background-color: #111827")

	snapshot := run(t, "export", "--stdout", "json")
	assert.Contains(t, snapshot, `"projectName": "my-website"`)

	run(t, "export", "--out", "public")
	assert.FileExists(t, filepath.Join(dir, "public", "my-website.html"))

	_, err := executeCommand("export", "--stdout", "pdf")
	assert.Error(t, err)
}

func TestThemeCommands(t *testing.T) {
	inProject(t)

	run(t, "theme", "set", "colors.primary", "#ff6600")

	g := decodeJSON[theme.GlobalStyles](t, run(t, "theme", "show", "-o", "json"))
	assert.Equal(t, "#ff6600", g.Colors.Primary)
	assert.Equal(t, theme.Default().Typography, g.Typography)

	out := run(t, "theme", "show")
	assert.Contains(t, out, "colors.primary")

	assert.Contains(t, run(t, "theme", "css"), "#ff6600")

	_, err := executeCommand("theme", "set", "colors.nope", "red")
	assert.True(t, errors.IsUserError(err))
}

func TestWatchOnce(t *testing.T) {
	dir := inProject(t)

	projectsDir := filepath.Join(dir, "projects")
	require.NoError(t, os.MkdirAll(filepath.Join(projectsDir, ".cache"), 0o755))
	snapshot := `{"projectName": "landing", "version": "1.0", "createdAt": "", "elements": [
  {"id": "element-1", "componentId": "hero-01", "props": {}, "styles": {}}
]}`
	require.NoError(t, os.WriteFile(filepath.Join(projectsDir, "landing.json"), []byte(snapshot), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(projectsDir, ".cache", "skip.json"), []byte("{"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(projectsDir, "notes.txt"), []byte("x"), 0o644))

	out := run(t, "watch", "--once")
	assert.Contains(t, out, filepath.Join("dist", "landing.html"))
	assert.FileExists(t, filepath.Join(dir, "dist", "landing.html"))
	assert.FileExists(t, filepath.Join(dir, "dist", "landing.json"))

	require.NoError(t, os.WriteFile(filepath.Join(projectsDir, "broken.json"), []byte("{"), 0o644))
	_, err := executeCommand("watch", "--once")
	assert.Error(t, err)
	assert.FileExists(t, filepath.Join(dir, "dist", "landing.html"))
}

func TestVersionCommand(t *testing.T) {
	inProject(t)

	out := run(t, "version", "--short")
	assert.Equal(t, version.GetBuildInfo().Short()+"\n", out)

	info := decodeJSON[version.BuildInfo](t, run(t, "version", "-f", "json"))
	assert.NotEmpty(t, info.GoVersion)

	out = run(t, "version")
	assert.True(t, strings.HasPrefix(out, "webbuilder "))
	assert.Contains(t, out, "Platform: ")

	_, err := executeCommand("version", "-f", "xml")
	assert.Error(t, err)
}

func TestInitCommand(t *testing.T) {
	dir := inProject(t)
	t.Cleanup(func() {
		// Forget the file read from this directory.
		viper.SetConfigType("yaml")
		_ = viper.ReadConfig(strings.NewReader(""))
	})

	out := run(t, "init", "shop")
	assert.Contains(t, out, "project shop")
	assert.FileExists(t, filepath.Join(dir, configFileName))
	assert.DirExists(t, filepath.Join(dir, "projects"))

	_, err := executeCommand("init")
	assert.True(t, errors.HasCode(err, "ERR_CONFIG_EXISTS"))

	// Later commands pick up the project name from the file.
	run(t, "element", "add", "hero-01")
	rows := decodeJSON[[]projectRow](t, run(t, "project", "list", "-o", "json"))
	require.Len(t, rows, 1)
	assert.Equal(t, "shop", rows[0].Name)

	run(t, "init", "--force")
	data, err := os.ReadFile(filepath.Join(dir, configFileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "name: my-website")

	_, err = executeCommand("init", "../escape")
	assert.Error(t, err)
}

func TestReportError(t *testing.T) {
	var buf bytes.Buffer
	reportError(&buf, errors.NewValidationError(errors.CodeEmptyPageName, "page name is required"))
	assert.Equal(t, "page name is required\n", buf.String())

	buf.Reset()
	reportError(&buf, fmt.Errorf("disk on fire"))
	assert.Equal(t, "Error: disk on fire\n", buf.String())
}

func TestParseAssignments(t *testing.T) {
	tests := []struct {
		name    string
		pairs   []string
		want    map[string]string
		wantErr bool
	}{
		{name: "empty", pairs: nil, want: map[string]string{}},
		{name: "values keep equals signs", pairs: []string{"a=1", "b=x=y"}, want: map[string]string{"a": "1", "b": "x=y"}},
		{name: "empty value", pairs: []string{"subtitle="}, want: map[string]string{"subtitle": ""}},
		{name: "later wins", pairs: []string{"a=1", "a=2"}, want: map[string]string{"a": "2"}},
		{name: "missing equals", pairs: []string{"a"}, wantErr: true},
		{name: "missing key", pairs: []string{"=1"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseAssignments(tt.pairs)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolvePage(t *testing.T) {
	w := site.New("demo", site.Options{})
	home := w.HomePage()

	id, err := resolvePage(w, "")
	require.NoError(t, err)
	assert.Equal(t, home.ID, id)

	id, err = resolvePage(w, "/")
	require.NoError(t, err)
	assert.Equal(t, home.ID, id)

	id, err = resolvePage(w, home.ID)
	require.NoError(t, err)
	assert.Equal(t, home.ID, id)

	_, err = resolvePage(w, "about")
	assert.True(t, errors.HasCode(err, errors.CodePageNotFound))
}

func TestValidatePort(t *testing.T) {
	assert.NoError(t, ValidatePort("0"))
	assert.NoError(t, ValidatePort("8080"))
	assert.Error(t, ValidatePort("65536"))
	assert.Error(t, ValidatePort("http"))
}
