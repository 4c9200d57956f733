package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/export"
	"github.com/conneroisu/webbuilder/internal/site"
)

func (s *Server) registerProjectTools() {
	// ── export_project ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("export_project",
		mcp.WithDescription("Export a page as a standalone HTML document, a stylesheet or a project JSON file. With write=true all three files are written to the export directory instead."),
		mcp.WithString("format", mcp.Description("html, css or json (default html)"), mcp.Enum("html", "css", "json")),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithBoolean("write", mcp.Description("Write the artifacts to disk and return their paths")),
	), s.handleExportProject)

	// ── save_project ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("save_project",
		mcp.WithDescription("Save the workspace to the project store"),
	), s.handleSaveProject)

	// ── get_theme / set_theme ──────────────────────────
	s.mcp.AddTool(mcp.NewTool("get_theme",
		mcp.WithDescription("Show the global style tokens"),
	), s.handleGetTheme)
	s.mcp.AddTool(mcp.NewTool("set_theme",
		mcp.WithDescription("Set one global style token, e.g. key colors.primary"),
		mcp.WithString("key", mcp.Description("Dotted token key"), mcp.Required()),
		mcp.WithString("value", mcp.Description("New value"), mcp.Required()),
	), s.handleSetTheme)
}

func (s *Server) handleExportProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.read(func(w *site.Workspace) (any, error) {
		elements, err := w.Elements(getString(args, "pageId"))
		if err != nil {
			return nil, err
		}
		name := w.Name()

		if write, _ := args["write"].(bool); write {
			bundle, err := export.Bundle(elements, name, w.Catalog(), s.now())
			if err != nil {
				return nil, err
			}
			written, err := export.WriteBundle(s.exportDir, bundle, s.cssThreshold)
			if err != nil {
				return nil, err
			}
			s.logger.Info(ctx, "project exported", "project", name, "files", len(written))
			return map[string]any{"files": written}, nil
		}

		switch format := getString(args, "format"); format {
		case "", "html":
			return export.Document(elements, name, w.Catalog()), nil
		case "css":
			return export.Stylesheet(elements), nil
		case "json":
			data, err := export.ProjectJSON(elements, name, s.now())
			if err != nil {
				return nil, err
			}
			return string(data), nil
		default:
			return nil, errors.NewValidationError("ERR_INVALID_FORMAT",
				fmt.Sprintf("unknown export format %q (want html, css or json)", format))
		}
	})
}

func (s *Server) handleSaveProject(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if s.repo == nil {
		return mcp.NewToolResultError("no project store is configured"), nil
	}
	return s.read(func(w *site.Workspace) (any, error) {
		if err := s.repo.SaveWorkspace(ctx, w); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Project %s saved", w.Name()), nil
	})
}

func (s *Server) handleGetTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.read(func(w *site.Workspace) (any, error) {
		return w.Theme(), nil
	})
}

func (s *Server) handleSetTheme(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		key, err := requireString(args, "key")
		if err != nil {
			return nil, err
		}
		return w.SetTheme(ctx, key, getString(args, "value"))
	})
}
