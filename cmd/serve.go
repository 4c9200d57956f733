package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/webbuilder/internal/config"
	"github.com/conneroisu/webbuilder/internal/server"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Start the live preview server",
	Long: `Start the preview server for the configured project.

The server renders every page at /preview (?page=<id>&bp=desktop|tablet|mobile),
the template gallery at /catalog and a JSON API under /api. Browsers connected
to /ws reload after every change. The workspace is saved on the
server.autosave schedule (default every 30s) and on shutdown.

Examples:
  webbuilder serve
  webbuilder serve --port 3000 --host 0.0.0.0
  webbuilder serve -P shop --storage-driver postgres --storage-dsn postgres://...`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().IntP("port", "p", config.DefaultPort, "Port to serve on")
	serveCmd.Flags().String("host", config.DefaultHost, "Host to bind to")
	serveCmd.Flags().String("autosave", config.DefaultAutosave, "Autosave cron spec (empty disables)")
	AddFlagValidation(serveCmd, "port", ValidatePort)

	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
	viper.BindPFlag("server.host", serveCmd.Flags().Lookup("host"))
	viper.BindPFlag("server.autosave", serveCmd.Flags().Lookup("autosave"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withSession(cmd, func(_ context.Context, s *session) error {
		w, err := s.workspace(ctx)
		if err != nil {
			return err
		}

		srv := server.New(s.cfg, w, s.repo, s.logger)
		return srv.Start(ctx)
	})
}
