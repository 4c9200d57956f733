package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("landing_page",
		mcp.WithPromptDescription("Guide through assembling a landing page from catalog templates"),
		mcp.WithArgument("topic",
			mcp.ArgumentDescription("What the landing page is about"),
			mcp.RequiredArgument(),
		),
	), s.handleLandingPagePrompt)
}

func (s *Server) handleLandingPagePrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	topic := req.Params.Arguments["topic"]
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Build a landing page for: %s", topic),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Build a landing page about "%s" on the active page. Follow these steps:

1. Use search_catalog with category "navigation" and add a navbar with add_element
2. Add a hero (category "heroes") and set its title and subtitle with update_element
3. Add a features or services section and a call to action ("cta")
4. Finish with a footer (category "footers")
5. Check the result with export_project (format html) and call save_project

Keep the copy short and consistent with the topic.`, topic),
				},
			},
		},
	}, nil
}
