package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/site"
	"github.com/conneroisu/webbuilder/internal/types"
)

// elementListing is a page's element list with its history flags.
type elementListing struct {
	PageID   string      `json:"pageId"`
	Elements canvas.List `json:"elements"`
	CanUndo  bool        `json:"canUndo"`
	CanRedo  bool        `json:"canRedo"`
}

func (s *Server) registerElementTools() {
	// ── list_elements ──────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_elements",
		mcp.WithDescription("List the elements on a page in render order"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleListElements)

	// ── add_element ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("add_element",
		mcp.WithDescription("Append an instance of a catalog template to a page"),
		mcp.WithString("templateId", mcp.Description("Template ID from search_catalog"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleAddElement)

	// ── update_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_element",
		mcp.WithDescription("Change an element's props and styles. Each argument is a JSON object; a null prop restores the template default and an empty style value removes the declaration."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithString("props", mcp.Description(`Prop overrides, e.g. {"title":"Hello"}`)),
		mcp.WithString("styles", mcp.Description(`Base styles in camelCase, e.g. {"backgroundColor":"#fff"}`)),
		mcp.WithString("tablet", mcp.Description("Style overrides up to 768px wide")),
		mcp.WithString("mobile", mcp.Description("Style overrides up to 480px wide")),
	), s.handleUpdateElement)

	// ── delete_element (destructive) ───────────────────
	s.mcp.AddTool(mcp.NewTool("delete_element",
		mcp.WithDescription("Remove an element from a page. Undo restores it."),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleDeleteElement)

	// ── duplicate_element ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("duplicate_element",
		mcp.WithDescription("Append a copy of an element to the end of its page"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleDuplicateElement)

	// ── move_element ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("move_element",
		mcp.WithDescription("Move an element to a new position in the page order"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("index", mcp.Description("Target index, 0 is the top of the page"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleMoveElement)

	// ── arrange_element ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("arrange_element",
		mcp.WithDescription("Change an element's stacking or flip it"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithString("operation",
			mcp.Description("Arrange operation"),
			mcp.Enum(string(site.BringToFront), string(site.SendToBack), string(site.BringForward),
				string(site.SendBackward), string(site.FlipHorizontal), string(site.FlipVertical)),
			mcp.Required(),
		),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleArrangeElement)

	// ── rotate_element ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("rotate_element",
		mcp.WithDescription("Rotate an element by a number of degrees"),
		mcp.WithString("elementId", mcp.Description("Element ID"), mcp.Required()),
		mcp.WithNumber("degrees", mcp.Description("Degrees to add to the current rotation"), mcp.Required()),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleRotateElement)

	// ── undo / redo ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("undo",
		mcp.WithDescription("Undo the last change on a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleUndo)
	s.mcp.AddTool(mcp.NewTool("redo",
		mcp.WithDescription("Redo the last undone change on a page"),
		mcp.WithString("pageId", mcp.Description("Page ID (optional, defaults to active page)")),
	), s.handleRedo)
}

func (s *Server) handleListElements(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.read(func(w *site.Workspace) (any, error) {
		return listing(w, getString(args, "pageId"))
	})
}

func (s *Server) handleAddElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "templateId")
		if err != nil {
			return nil, err
		}
		return w.AddElement(ctx, getString(args, "pageId"), id)
	})
}

func (s *Server) handleUpdateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "elementId")
		if err != nil {
			return nil, err
		}
		pageID := getString(args, "pageId")

		elements, err := w.Elements(pageID)
		if err != nil {
			return nil, err
		}
		current, err := elements.Get(id)
		if err != nil {
			return nil, err
		}
		tmpl, _ := w.Catalog().Lookup(current.TemplateID)

		var patch canvas.Patch
		if patch.Props, err = parseProps(tmpl, getString(args, "props")); err != nil {
			return nil, err
		}
		if patch.Styles, err = parseStyles("styles", getString(args, "styles")); err != nil {
			return nil, err
		}
		if patch.Tablet, err = parseStyles("tablet", getString(args, "tablet")); err != nil {
			return nil, err
		}
		if patch.Mobile, err = parseStyles("mobile", getString(args, "mobile")); err != nil {
			return nil, err
		}
		if patch.IsEmpty() {
			return nil, errors.NewValidationError("ERR_EMPTY_PATCH", "nothing to update: pass props, styles, tablet or mobile")
		}

		return w.UpdateElement(ctx, pageID, id, patch)
	})
}

func (s *Server) handleDeleteElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "elementId")
		if err != nil {
			return nil, err
		}
		if err := w.DeleteElement(ctx, getString(args, "pageId"), id); err != nil {
			return nil, err
		}
		return fmt.Sprintf("Element %s deleted", id), nil
	})
}

func (s *Server) handleDuplicateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "elementId")
		if err != nil {
			return nil, err
		}
		return w.DuplicateElement(ctx, getString(args, "pageId"), id)
	})
}

func (s *Server) handleMoveElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "elementId")
		if err != nil {
			return nil, err
		}
		index, ok := args["index"].(float64)
		if !ok {
			return nil, errors.NewValidationError("ERR_MISSING_ARGUMENT", "index is required")
		}
		pageID := getString(args, "pageId")
		if err := w.MoveElement(ctx, pageID, id, int(index)); err != nil {
			return nil, err
		}
		return listing(w, pageID)
	})
}

func (s *Server) handleArrangeElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "elementId")
		if err != nil {
			return nil, err
		}
		pageID := getString(args, "pageId")
		if err := w.Arrange(ctx, pageID, id, site.ArrangeOp(getString(args, "operation"))); err != nil {
			return nil, err
		}
		return elementOn(w, pageID, id)
	})
}

func (s *Server) handleRotateElement(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		id, err := requireString(args, "elementId")
		if err != nil {
			return nil, err
		}
		deg, ok := args["degrees"].(float64)
		if !ok {
			return nil, errors.NewValidationError("ERR_MISSING_ARGUMENT", "degrees is required")
		}
		pageID := getString(args, "pageId")
		if err := w.Rotate(ctx, pageID, id, int(deg)); err != nil {
			return nil, err
		}
		return elementOn(w, pageID, id)
	})
}

func (s *Server) handleUndo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		pageID := getString(args, "pageId")
		if _, err := w.Undo(ctx, pageID); err != nil {
			return nil, err
		}
		return listing(w, pageID)
	})
}

func (s *Server) handleRedo(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	return s.mutate(ctx, func(w *site.Workspace) (any, error) {
		pageID := getString(args, "pageId")
		if _, err := w.Redo(ctx, pageID); err != nil {
			return nil, err
		}
		return listing(w, pageID)
	})
}

func listing(w *site.Workspace, pageID string) (elementListing, error) {
	if pageID == "" {
		pageID = w.ActivePage().ID
	}
	elements, err := w.Elements(pageID)
	if err != nil {
		return elementListing{}, err
	}

	return elementListing{
		PageID:   pageID,
		Elements: elements,
		CanUndo:  w.CanUndo(pageID),
		CanRedo:  w.CanRedo(pageID),
	}, nil
}

func elementOn(w *site.Workspace, pageID, id string) (canvas.Element, error) {
	elements, err := w.Elements(pageID)
	if err != nil {
		return canvas.Element{}, err
	}
	return elements.Get(id)
}

// parseProps decodes a JSON object of prop overrides. String values for
// number, toggle and select props are coerced the way the CLI coerces them,
// so agents may send {"count":"3"} as well as {"count":3}.
func parseProps(t catalog.Template, raw string) (types.Props, error) {
	if raw == "" {
		return nil, nil
	}
	var decoded map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return nil, errors.NewValidationError(errors.CodeInvalidProp, "props must be a JSON object: "+err.Error())
	}

	props := make(types.Props, len(decoded))
	for name, msg := range decoded {
		var str string
		if t.ID != "" && json.Unmarshal(msg, &str) == nil {
			v, err := catalog.CoerceProp(t, name, str)
			if err != nil {
				return nil, err
			}
			props[name] = v
			continue
		}
		var v types.Value
		if err := json.Unmarshal(msg, &v); err != nil {
			return nil, errors.NewValidationError(errors.CodeInvalidProp,
				fmt.Sprintf("prop %q: %v", name, err))
		}
		props[name] = v
	}

	return props, nil
}

func parseStyles(arg, raw string) (types.Styles, error) {
	if raw == "" {
		return nil, nil
	}
	var styles types.Styles
	if err := json.Unmarshal([]byte(raw), &styles); err != nil {
		return nil, errors.NewValidationError("ERR_INVALID_STYLES",
			arg+" must be a JSON object of string values: "+err.Error())
	}

	return styles, nil
}
