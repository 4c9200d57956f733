// Package mcpserver exposes a workspace to AI agents over the Model Context
// Protocol: tools for the catalog, pages, elements, history, export and
// saving, plus read-only resources.
package mcpserver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/logging"
	"github.com/conneroisu/webbuilder/internal/projects"
	"github.com/conneroisu/webbuilder/internal/site"
	"github.com/conneroisu/webbuilder/internal/version"
)

// Server is the MCP server for one workspace.
type Server struct {
	mcp    *server.MCPServer
	logger logging.Logger
	repo   *projects.Repository

	exportDir    string
	cssThreshold int
	autosave     bool
	now          func() time.Time

	// mu serialises tool calls against the workspace.
	mu        sync.Mutex
	workspace *site.Workspace
}

// Deps holds everything the server needs from the command layer.
type Deps struct {
	Workspace *site.Workspace
	// Repo is optional; without it save_project fails and Autosave is ignored.
	Repo         *projects.Repository
	Logger       logging.Logger
	ExportDir    string
	CSSThreshold int
	// Autosave persists the workspace after every successful mutating tool.
	Autosave bool
	Now      func() time.Time
}

// New creates and configures a new MCP server with all tools and resources.
func New(deps Deps) *Server {
	if deps.Logger == nil {
		deps.Logger = logging.Nop()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	s := &Server{
		logger:       deps.Logger.WithComponent("mcp"),
		repo:         deps.Repo,
		exportDir:    deps.ExportDir,
		cssThreshold: deps.CSSThreshold,
		autosave:     deps.Autosave && deps.Repo != nil,
		now:          deps.Now,
		workspace:    deps.Workspace,
	}

	s.mcp = server.NewMCPServer(
		"webbuilder-mcp",
		version.GetBuildInfo().Version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerCatalogTools()
	s.registerPageTools()
	s.registerElementTools()
	s.registerProjectTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio serves the protocol on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer { return s.mcp }

// mutate runs fn under the workspace lock and, with autosave on, persists the
// result. fn's error decides the tool outcome; a failed save is only logged.
func (s *Server) mutate(ctx context.Context, fn func(w *site.Workspace) (any, error)) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := fn(s.workspace)
	if err != nil {
		return toolError(err)
	}
	if s.autosave {
		if err := s.repo.SaveWorkspace(ctx, s.workspace); err != nil {
			s.logger.Error(ctx, err, "autosave failed", "project", s.workspace.Name())
		}
	}
	if text, ok := v.(string); ok {
		return textResult(text), nil
	}

	return jsonResult(v)
}

// read runs fn under the workspace lock without persisting anything.
func (s *Server) read(fn func(w *site.Workspace) (any, error)) (*mcp.CallToolResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, err := fn(s.workspace)
	if err != nil {
		return toolError(err)
	}
	if text, ok := v.(string); ok {
		return textResult(text), nil
	}

	return jsonResult(v)
}

// toolError reports rejected user input as a tool-level error the agent can
// read and correct; anything else fails the request.
func toolError(err error) (*mcp.CallToolResult, error) {
	if errors.IsUserError(err) {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return nil, err
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
// Markup in templates and exports is left unescaped.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(strings.TrimSuffix(buf.String(), "\n")), nil
}

func boolPtr(v bool) *bool { return &v }

func getString(args map[string]any, key string) string {
	v, _ := args[key].(string)
	return v
}

func requireString(args map[string]any, key string) (string, error) {
	v := getString(args, key)
	if v == "" {
		return "", errors.NewValidationError("ERR_MISSING_ARGUMENT", key+" is required")
	}
	return v, nil
}
