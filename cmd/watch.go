package cmd

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Re-export project JSON files whenever they change",
	Long: `Watch directories of project JSON snapshots and write the HTML, CSS and JSON
artifacts of every changed file to the export directory. Files inside the
export directory itself are ignored.

Examples:
  webbuilder watch                        # Watches ./projects (watch.paths)
  webbuilder watch sites drafts           # Watch other directories
  webbuilder watch --once                 # Export every file once and exit`,
	RunE: runWatch,
}

var watchOnce bool

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().BoolVar(&watchOnce, "once", false, "Export every project file once and exit")
	watchCmd.Flags().Duration("debounce", 0, "Quiet period before a batch of changes is exported (default 300ms)")
	viper.BindPFlag("watch.debounce", watchCmd.Flags().Lookup("debounce"))
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	paths := cfg.Watch.Paths
	if len(args) > 0 {
		paths = args
	}
	exporter := &watcher.Exporter{
		Catalog:      cat,
		OutDir:       cfg.Export.Dir,
		CSSThreshold: cfg.Export.CSSThreshold,
		Logger:       logger,
	}

	if watchOnce {
		return exportAll(cmd, exporter, paths)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return errors.NewIOError("create file watcher", err)
	}
	defer fw.Stop()

	fw.AddFilter(watcher.JSONFilter)
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddHandler(exporter.Handle)
	for _, p := range paths {
		if err := fw.AddRecursive(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
	}

	if err := fw.Start(ctx); err != nil {
		return err
	}
	logger.Info(ctx, "watching project files", "paths", strings.Join(paths, ","), "out", cfg.Export.Dir)

	<-ctx.Done()
	logger.Info(context.Background(), "watcher stopped")

	return nil
}

// exportAll exports every project file under paths once. A failing file is
// reported and the rest still run.
func exportAll(cmd *cobra.Command, exporter *watcher.Exporter, paths []string) error {
	ctx := cmd.Context()
	errs := errors.NewCollector()

	for _, root := range paths {
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if !watcher.JSONFilter(path) || !watcher.NoHiddenFilter(path) || exporter.InOutDir(path) {
				return nil
			}

			written, err := exporter.ExportFile(ctx, path)
			if err != nil {
				errs.Add(err)
				return nil
			}
			for _, w := range written {
				fmt.Fprintln(cmd.OutOrStdout(), w)
			}
			return nil
		})
		if err != nil {
			errs.Add(errors.NewIOError("walk "+root, err))
		}
	}

	return errs.Err()
}
