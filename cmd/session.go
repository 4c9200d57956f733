package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/config"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/logging"
	"github.com/conneroisu/webbuilder/internal/projects"
	"github.com/conneroisu/webbuilder/internal/site"
	"github.com/conneroisu/webbuilder/internal/storage"
)

// session is everything a command needs to act on the configured project.
type session struct {
	cfg     *config.Config
	logger  logging.Logger
	catalog *catalog.Catalog
	kv      storage.KV
	repo    *projects.Repository
}

// loadConfig reads the configuration and builds the logger it describes.
// Log output goes to the command's stderr.
func loadConfig(cmd *cobra.Command) (*config.Config, logging.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := logging.NewLogger(&logging.LoggerConfig{
		Level:  logging.ParseLevel(cfg.Log.Level),
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	})

	return cfg, logger, nil
}

// loadCatalog returns the built-in catalog, extended by catalog.extra when set.
func loadCatalog(cfg *config.Config) (*catalog.Catalog, error) {
	if cfg.Catalog.Extra == "" {
		return catalog.Default(), nil
	}

	f, err := os.Open(cfg.Catalog.Extra)
	if err != nil {
		return nil, errors.NewIOError("open extra catalog", err).WithContext("path", cfg.Catalog.Extra)
	}
	defer f.Close()

	cat, err := catalog.WithExtra(f)
	if err != nil {
		return nil, fmt.Errorf("load extra catalog %s: %w", cfg.Catalog.Extra, err)
	}

	return cat, nil
}

// openSession loads the configuration and opens the project store.
// Callers must Close the session.
func openSession(cmd *cobra.Command) (*session, error) {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(cmd.Context(), cfg.Storage)
	if err != nil {
		return nil, err
	}
	logger.Debug(cmd.Context(), "storage opened", "driver", cfg.Storage.Driver)

	return &session{
		cfg:     cfg,
		logger:  logger,
		catalog: cat,
		kv:      kv,
		repo:    projects.New(kv, logger),
	}, nil
}

func (s *session) Close() error {
	return s.kv.Close()
}

func (s *session) options() site.Options {
	return site.Options{Catalog: s.catalog, HistoryLimit: s.cfg.History.Limit}
}

// workspace opens the configured project, creating it in memory when it has
// never been saved.
func (s *session) workspace(ctx context.Context) (*site.Workspace, error) {
	return s.repo.OpenOrCreate(ctx, s.cfg.Project.Name, s.options())
}

// page resolves the --page value (an id or a path) against w. Empty means the
// active page.
func (s *session) page(w *site.Workspace) (string, error) {
	return resolvePage(w, s.cfg.Project.Page)
}

func resolvePage(w *site.Workspace, ref string) (string, error) {
	if ref == "" {
		return w.ActivePage().ID, nil
	}
	for _, p := range w.Pages() {
		if p.ID == ref || (strings.HasPrefix(ref, "/") && p.Path == ref) {
			return p.ID, nil
		}
	}

	return "", errors.NewNotFoundError(errors.CodePageNotFound, "page "+ref+" not found")
}

// withSession opens a session, runs fn and closes the store.
func withSession(cmd *cobra.Command, fn func(ctx context.Context, s *session) error) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			s.logger.Warn(cmd.Context(), err, "closing storage")
		}
	}()

	return fn(cmd.Context(), s)
}

// edit opens the project workspace, runs fn and saves the result. Nothing is
// saved when fn fails.
func edit(cmd *cobra.Command, fn func(ctx context.Context, s *session, w *site.Workspace) error) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		w, err := s.workspace(ctx)
		if err != nil {
			return err
		}
		if err := fn(ctx, s, w); err != nil {
			return err
		}

		return s.repo.SaveWorkspace(ctx, w)
	})
}

// view opens the project workspace read-only.
func view(cmd *cobra.Command, fn func(ctx context.Context, s *session, w *site.Workspace) error) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		w, err := s.workspace(ctx)
		if err != nil {
			return err
		}

		return fn(ctx, s, w)
	})
}
