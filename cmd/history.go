package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/webbuilder/internal/site"
)

var undoCmd = &cobra.Command{
	Use:   "undo",
	Short: "Undo the last change to a page",
	Long: `Restore the previous element list of the active page, or of the page given
with --page. History is kept per page and survives between runs.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return travel(cmd, true)
	},
}

var redoCmd = &cobra.Command{
	Use:   "redo",
	Short: "Redo the last undone change to a page",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return travel(cmd, false)
	},
}

func init() {
	rootCmd.AddCommand(undoCmd, redoCmd)
}

func travel(cmd *cobra.Command, back bool) error {
	return edit(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		pageID, err := s.page(w)
		if err != nil {
			return err
		}

		step := w.Redo
		if back {
			step = w.Undo
		}
		elements, err := step(ctx, pageID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d elements (undo: %t, redo: %t)\n",
			len(elements), w.CanUndo(pageID), w.CanRedo(pageID))
		return nil
	})
}
