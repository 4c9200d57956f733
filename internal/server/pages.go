package server

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/export"
	"github.com/conneroisu/webbuilder/internal/render"
	"github.com/conneroisu/webbuilder/internal/site"
)

const reloadScript = `<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  function connect() {
    var ws = new WebSocket(proto + location.host + "/ws");
    ws.onmessage = function (ev) {
      var msg = JSON.parse(ev.data);
      if (msg.type === "reload") { location.reload(); }
    };
    ws.onclose = function () { setTimeout(connect, 1000); };
  }
  connect();
})();
</script>`

const chromeCSS = `
.wb-bar { font: 14px system-ui, sans-serif; display: flex; gap: 12px; align-items: center;
  padding: 8px 16px; background: #111827; color: #f9fafb; }
.wb-bar a { color: #93c5fd; text-decoration: none; }
.wb-bar a.active { color: #fff; font-weight: 600; }
.wb-frame { margin: 0 auto; }
.wb-empty { padding: 48px; text-align: center; color: #6b7280; font: 16px system-ui, sans-serif; }
.wb-grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(320px, 1fr)); gap: 16px; padding: 16px; }
.wb-card { border: 1px solid #e5e7eb; border-radius: 8px; overflow: hidden; background: #fff; }
.wb-card header { font: 13px system-ui, sans-serif; padding: 8px 12px; background: #f9fafb; }
.wb-card code { color: #6b7280; }
.wb-card .wb-sample { padding: 12px; max-height: 240px; overflow: hidden; }
`

// previewData is everything the preview page renders, copied out of the
// workspace under lock.
type previewData struct {
	Project   string
	Page      site.Page
	Pages     []site.Page
	Fragments []export.Fragment
	Theme     string
	Bp        canvas.Breakpoint
}

func (s *PreviewServer) handlePreview(w http.ResponseWriter, r *http.Request) {
	bp, err := canvas.ParseBreakpoint(r.URL.Query().Get("bp"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.mu.Lock()
	data, err := s.previewData(pageParam(r), bp)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := previewPage(data).Render(r.Context(), w); err != nil {
		s.logger.Error(r.Context(), err, "render preview failed")
	}
}

// previewData must be called with mu held.
func (s *PreviewServer) previewData(pageID string, bp canvas.Breakpoint) (previewData, error) {
	page := s.workspace.ActivePage()
	if pageID != "" {
		p, err := s.workspace.Page(pageID)
		if err != nil {
			return previewData{}, err
		}
		page = p
	}
	elements, err := s.workspace.Elements(page.ID)
	if err != nil {
		return previewData{}, err
	}

	return previewData{
		Project:   s.workspace.Name(),
		Page:      page,
		Pages:     s.workspace.Pages(),
		Fragments: export.Preview(elements, s.workspace.Catalog(), bp),
		Theme:     s.workspace.Theme().CSSVariables(),
		Bp:        bp,
	}, nil
}

func (s *PreviewServer) handleCatalogPage(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	cat := s.catalog()

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := catalogPage(cat, category).Render(r.Context(), w); err != nil {
		s.logger.Error(r.Context(), err, "render catalog failed")
	}
}

func previewPage(d previewData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		title := d.Project + " - " + d.Page.Name
		if err := pageHead(title, export.BaseCSS()+d.Theme+chromeCSS).Render(ctx, w); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<nav class="wb-bar">`); err != nil {
			return err
		}
		for _, p := range d.Pages {
			if err := navLink(previewURL(p.ID, d.Bp), p.Name, p.ID == d.Page.ID).Render(ctx, w); err != nil {
				return err
			}
		}
		io.WriteString(w, `<span>|</span>`)
		for _, bp := range []canvas.Breakpoint{canvas.Desktop, canvas.Tablet, canvas.Mobile} {
			if err := navLink(previewURL(d.Page.ID, bp), string(bp), bp == d.Bp).Render(ctx, w); err != nil {
				return err
			}
		}
		io.WriteString(w, `<a href="/catalog">catalog</a></nav>`)

		frame := `<main class="wb-frame">`
		if width := d.Bp.MaxWidth(); width > 0 {
			frame = `<main class="wb-frame" style="max-width: ` + strconv.Itoa(width) + `px">`
		}
		io.WriteString(w, frame)
		if len(d.Fragments) == 0 {
			io.WriteString(w, `<div class="wb-empty">`+templ.EscapeString(d.Page.Name)+`: no elements yet</div>`)
		}
		for _, f := range d.Fragments {
			// Fragments are template output and go out unescaped, as in exports.
			if _, err := io.WriteString(w, f.HTML+"\n"); err != nil {
				return err
			}
		}
		io.WriteString(w, "</main>\n"+reloadScript+"\n</body>\n</html>\n")

		return nil
	})
}

func catalogPage(cat *catalog.Catalog, category string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		templates := cat.All()
		if category != "" {
			templates = cat.FilterByCategory(category)
		}

		if err := pageHead("Component catalog", export.BaseCSS()+chromeCSS).Render(ctx, w); err != nil {
			return err
		}
		io.WriteString(w, `<nav class="wb-bar"><a href="/preview">preview</a><span>|</span>`)
		if err := navLink("/catalog", "all", category == "").Render(ctx, w); err != nil {
			return err
		}
		counts := cat.CountByCategory()
		for _, c := range catalog.Categories() {
			if counts[c] == 0 {
				continue
			}
			label := fmt.Sprintf("%s (%d)", c, counts[c])
			if err := navLink("/catalog?category="+url.QueryEscape(c), label, c == category).Render(ctx, w); err != nil {
				return err
			}
		}
		io.WriteString(w, `</nav><div class="wb-grid">`)

		for _, t := range templates {
			fmt.Fprintf(w, `<section class="wb-card"><header>%s %s <code>%s</code></header><div class="wb-sample">%s</div></section>`,
				templ.EscapeString(t.Icon),
				templ.EscapeString(t.Name),
				templ.EscapeString(t.ID),
				render.Element(t.HTML, t.DefaultProps, nil, ""))
		}
		_, err := io.WriteString(w, "</div>\n</body>\n</html>\n")

		return err
	})
}

func pageHead(title, css string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, `<!DOCTYPE html>
<html lang="ru">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>%s</title>
<style>
%s
</style>
</head>
<body>
`, templ.EscapeString(title), css)

		return err
	})
}

func navLink(href, label string, active bool) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		class := ""
		if active {
			class = ` class="active"`
		}
		_, err := fmt.Fprintf(w, `<a href="%s"%s>%s</a>`,
			templ.EscapeString(href), class, templ.EscapeString(label))

		return err
	})
}

func previewURL(pageID string, bp canvas.Breakpoint) string {
	return "/preview?page=" + url.QueryEscape(pageID) + "&bp=" + string(bp)
}
