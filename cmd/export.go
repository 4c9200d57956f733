package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/export"
	"github.com/conneroisu/webbuilder/internal/logging"
	"github.com/conneroisu/webbuilder/internal/site"
)

var exportCmd = &cobra.Command{
	Use:     "export",
	Aliases: []string{"x"},
	Short:   "Export a page as HTML, CSS and project JSON",
	Long: `Export the active page, or the page given with --page.

By default the three artifacts are written to the export directory
(export.dir, default dist): <project>.html, <project>.json and, when the
stylesheet is longer than export.css_threshold characters, <project>.css.
With --stdout a single artifact is printed instead.

Examples:
  webbuilder export
  webbuilder export --out public
  webbuilder export --stdout html > index.html
  webbuilder export --stdout json --page /about`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var (
	exportOut    string
	exportStdout string
)

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output directory (default export.dir)")
	exportCmd.Flags().StringVar(&exportStdout, "stdout", "", "Print one artifact (html|css|json) instead of writing files")
	AddFlagValidation(exportCmd, "stdout", func(format string) error {
		return ValidateFormat(format, []string{"html", "css", "json"})
	})
}

func runExport(cmd *cobra.Command, args []string) error {
	return view(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		pageID, err := s.page(w)
		if err != nil {
			return err
		}
		elements, err := w.Elements(pageID)
		if err != nil {
			return err
		}
		name := w.Name()
		now := time.Now()

		switch strings.ToLower(exportStdout) {
		case "html":
			fmt.Fprint(cmd.OutOrStdout(), export.Document(elements, name, w.Catalog()))
			return nil
		case "css":
			fmt.Fprint(cmd.OutOrStdout(), export.Stylesheet(elements))
			return nil
		case "json":
			data, err := export.ProjectJSON(elements, name, now)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		case "":
		default:
			return errors.NewValidationError("ERR_INVALID_FORMAT", "unknown export format "+exportStdout)
		}

		dir := exportOut
		if dir == "" {
			dir = s.cfg.Export.Dir
		}

		op := logging.StartOperation(s.logger.With("project", name, "dir", dir), "export")
		bundle, err := export.Bundle(elements, name, w.Catalog(), now)
		if err != nil {
			op.EndWithError(ctx, err)
			return err
		}
		written, err := export.WriteBundle(dir, bundle, s.cfg.Export.CSSThreshold)
		if err != nil {
			op.EndWithError(ctx, err)
			return err
		}
		op.End(ctx)

		for _, path := range written {
			fmt.Fprintln(cmd.OutOrStdout(), path)
		}
		return nil
	})
}
