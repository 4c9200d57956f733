package cmd

import (
	"context"

	"github.com/spf13/cobra"

	mcpserver "github.com/conneroisu/webbuilder/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the project to AI agents over MCP (stdio)",
	Long: `Start a Model Context Protocol server on stdin/stdout. Agents get tools to
search the catalog, manage pages, add and edit elements, undo, export and
save. Every successful change is saved to the project store.

Register it with an MCP client, for example:
  {"command": "webbuilder", "args": ["mcp", "-P", "my-website"]}

Logs go to stderr; stdout carries the protocol.`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

var mcpNoAutosave bool

func init() {
	rootCmd.AddCommand(mcpCmd)

	mcpCmd.Flags().BoolVar(&mcpNoAutosave, "no-autosave", false, "Only save when the save_project tool is called")
}

func runMCP(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		w, err := s.workspace(ctx)
		if err != nil {
			return err
		}

		srv := mcpserver.New(mcpserver.Deps{
			Workspace:    w,
			Repo:         s.repo,
			Logger:       s.logger,
			ExportDir:    s.cfg.Export.Dir,
			CSSThreshold: s.cfg.Export.CSSThreshold,
			Autosave:     !mcpNoAutosave,
		})
		s.logger.Info(ctx, "mcp server starting", "project", w.Name())

		return srv.ServeStdio()
	})
}
