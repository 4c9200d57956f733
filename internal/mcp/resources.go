package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/conneroisu/webbuilder/internal/catalog"
)

const (
	categoriesURI   = "webbuilder://catalog/categories"
	pageElementsURI = "webbuilder://page/{pageId}/elements"
)

func (s *Server) registerResources() {
	// ── webbuilder://catalog/categories ────────────────
	s.mcp.AddResource(mcp.NewResource(
		categoriesURI,
		"Catalog categories",
		mcp.WithResourceDescription("Category tags with the number of templates in each"),
		mcp.WithMIMEType("application/json"),
	), s.handleCategoriesResource)

	// ── webbuilder://page/{pageId}/elements ────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			pageElementsURI,
			"Elements on a page",
		),
		s.handlePageElementsResource,
	)
}

type categoryCount struct {
	Category  string `json:"category"`
	Templates int    `json:"templates"`
}

func (s *Server) handleCategoriesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	s.mu.Lock()
	counts := s.workspace.Catalog().CountByCategory()
	s.mu.Unlock()

	out := make([]categoryCount, 0, len(counts))
	for _, c := range catalog.Categories() {
		if counts[c] > 0 {
			out = append(out, categoryCount{Category: c, Templates: counts[c]})
		}
	}

	return jsonContents(categoriesURI, out)
}

func (s *Server) handlePageElementsResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	pageID := pageIDFromURI(uri)
	if pageID == "" {
		return nil, fmt.Errorf("could not extract pageId from URI: %s", uri)
	}

	s.mu.Lock()
	l, err := listing(s.workspace, pageID)
	s.mu.Unlock()
	if err != nil {
		return nil, err
	}

	return jsonContents(uri, l)
}

// pageIDFromURI extracts the id from webbuilder://page/{pageId}/elements.
func pageIDFromURI(uri string) string {
	rest, ok := strings.CutPrefix(uri, "webbuilder://page/")
	if !ok {
		return ""
	}
	id, ok := strings.CutSuffix(rest, "/elements")
	if !ok || strings.Contains(id, "/") {
		return ""
	}
	return id
}

func jsonContents(uri string, v any) ([]mcp.ResourceContents, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal resource: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
