package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/conneroisu/webbuilder/internal/site"
)

type pageListing struct {
	Pages        []site.Page `json:"pages"`
	ActivePageID string      `json:"activePageId"`
}

func (s *Server) registerPageTools() {
	// ── list_pages ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_pages",
		mcp.WithDescription("List the pages of the site and the active page"),
	), s.handleListPages)

	// ── add_page ───────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_page",
		mcp.WithDescription("Create a page with an empty canvas"),
		mcp.WithString("name", mcp.Description("Page name"), mcp.Required()),
		mcp.WithString("path", mcp.Description("URL path (optional, derived from the name)")),
	), s.handleAddPage)

	// ── rename_page ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rename_page",
		mcp.WithDescription("Rename a page and optionally change its path. The home page path stays /."),
		mcp.WithString("pageId", mcp.Description("Page ID"), mcp.Required()),
		mcp.WithString("name", mcp.Description("New name"), mcp.Required()),
		mcp.WithString("path", mcp.Description("New path (optional)")),
	), s.handleRenamePage)

	// ── delete_page (destructive) ──────────────────────
	s.mcp.AddTool(mcp.NewTool("delete_page",
		mcp.WithDescription("Delete a page and its elements. The home page and the last page cannot be deleted."),
		mcp.WithString("pageId", mcp.Description("Page ID"), mcp.Required()),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeletePage)

	// ── set_home_page ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_home_page",
		mcp.WithDescription("Make a page the home page at /"),
		mcp.WithString("pageId", mcp.Description("Page ID"), mcp.Required()),
	), s.handleSetHomePage)

	// ── set_active_page ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_page",
		mcp.WithDescription("Set the page that tools without a pageId act on"),
		mcp.WithString("pageId", mcp.Description("Page ID"), mcp.Required()),
	), s.handleSetActivePage)
}

func (s *Server) handleListPages(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.read(func(w *site.Workspace) (any, error) {
		return pageListing{Pages: w.Pages(), ActivePageID: w.ActivePage().ID}, nil
	})
}

func (s *Server) handleAddPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		return w.AddPage(ctx, getString(args, "name"), getString(args, "path"))
	})
}

func (s *Server) handleRenamePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "pageId")
		if err != nil {
			return nil, err
		}
		return w.RenamePage(ctx, id, getString(args, "name"), getString(args, "path"))
	})
}

func (s *Server) handleDeletePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "pageId")
		if err != nil {
			return nil, err
		}
		if err := w.DeletePage(ctx, id); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Page %s deleted", id), nil
	})
}

func (s *Server) handleSetHomePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "pageId")
		if err != nil {
			return nil, err
		}
		return w.SetHomePage(ctx, id)
	})
}

func (s *Server) handleSetActivePage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "pageId")
		if err != nil {
			return nil, err
		}
		if err := w.UsePage(ctx, id); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Active page set to %s", id), nil
	})
}
