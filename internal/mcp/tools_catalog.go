package mcpserver

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/site"
)

// templateSummary is the compact listing form of a template.
type templateSummary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

func (s *Server) registerCatalogTools() {
	// ── search_catalog ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("search_catalog",
		mcp.WithDescription("Search the component catalog by text, or list one category. With no arguments lists every template."),
		mcp.WithString("query", mcp.Description("Case-insensitive text matched against id, name, description and category")),
		mcp.WithString("category", mcp.Description("Category tag, e.g. heroes or footers")),
	), s.handleSearchCatalog)

	// ── get_template ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_template",
		mcp.WithDescription("Get a template's markup, default props and editable props"),
		mcp.WithString("templateId", mcp.Description("Template ID"), mcp.Required()),
	), s.handleGetTemplate)
}

func (s *Server) handleSearchCatalog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.read(func(w *site.Workspace) (any, error) {
		cat := w.Catalog()
		var templates []catalog.Template
		switch {
		case getString(args, "query") != "":
			templates = cat.Search(getString(args, "query"))
		case getString(args, "category") != "":
			templates = cat.FilterByCategory(getString(args, "category"))
		default:
			templates = cat.All()
		}

		out := make([]templateSummary, len(templates))
		for i, t := range templates {
			out[i] = templateSummary{ID: t.ID, Name: t.Name, Category: t.Category, Description: t.Description}
		}
		return out, nil
	})
}

func (s *Server) handleGetTemplate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.read(func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "templateId")
		if err != nil {
			return nil, err
		}
		t, ok := w.Catalog().Lookup(id)
		if !ok {
			return nil, errors.NewNotFoundError(errors.CodeTemplateNotFound, "template "+id+" not found")
		}
		return t, nil
	})
}
