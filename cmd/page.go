package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/webbuilder/internal/site"
)

var pageCmd = &cobra.Command{
	Use:     "page",
	Aliases: []string{"pg"},
	Short:   "Manage the pages of the project",
	Long: `Manage the pages of the project. Pages are addressed by id or by path.

Examples:
  webbuilder page list
  webbuilder page add "О нас"                  # Path /о-нас is derived from the name
  webbuilder page add Blog --path /news
  webbuilder page rename page-2 Contacts
  webbuilder page use /news                    # Commands now act on /news
  webbuilder page home page-2
  webbuilder page delete page-2`,
}

var pageListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List pages",
	Args:    cobra.NoArgs,
	RunE:    runPageList,
}

var pageAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPageAdd,
}

var pageRenameCmd = &cobra.Command{
	Use:   "rename <page> <name>",
	Short: "Rename a page and optionally move it",
	Args:  cobra.ExactArgs(2),
	RunE:  runPageRename,
}

var pageDeleteCmd = &cobra.Command{
	Use:   "delete <page>",
	Short: "Delete a page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPageDelete,
}

var pageHomeCmd = &cobra.Command{
	Use:   "home <page>",
	Short: "Make a page the home page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPageHome,
}

var pageUseCmd = &cobra.Command{
	Use:   "use <page>",
	Short: "Make a page the active page",
	Args:  cobra.ExactArgs(1),
	RunE:  runPageUse,
}

var (
	pageListFlags *OutputFlags
	pagePath      string
)

func init() {
	rootCmd.AddCommand(pageCmd)
	pageCmd.AddCommand(pageListCmd, pageAddCmd, pageRenameCmd, pageDeleteCmd, pageHomeCmd, pageUseCmd)

	pageListFlags = AddOutputFlags(pageListCmd)
	pageAddCmd.Flags().StringVar(&pagePath, "path", "", "URL path (default derived from the name)")
	pageRenameCmd.Flags().StringVar(&pagePath, "path", "", "New URL path (default unchanged)")
}

func runPageList(cmd *cobra.Command, args []string) error {
	return view(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		rows := pageRows(w)
		return printPages(cmd, pageListFlags, rows, rows)
	})
}

func runPageAdd(cmd *cobra.Command, args []string) error {
	return edit(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		p, err := w.AddPage(ctx, args[0], pagePath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added page %s (%s) at %s\n", p.Name, p.ID, p.Path)
		return nil
	})
}

func runPageRename(cmd *cobra.Command, args []string) error {
	return edit(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		id, err := resolvePage(w, args[0])
		if err != nil {
			return err
		}
		p, err := w.RenamePage(ctx, id, args[1], pagePath)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Renamed page %s to %s at %s\n", p.ID, p.Name, p.Path)
		return nil
	})
}

func runPageDelete(cmd *cobra.Command, args []string) error {
	return edit(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		id, err := resolvePage(w, args[0])
		if err != nil {
			return err
		}
		if err := w.DeletePage(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted page %s\n", id)
		return nil
	})
}

func runPageHome(cmd *cobra.Command, args []string) error {
	return edit(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		id, err := resolvePage(w, args[0])
		if err != nil {
			return err
		}
		p, err := w.SetHomePage(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Home page is now %s (%s)\n", p.Name, p.ID)
		return nil
	})
}

func runPageUse(cmd *cobra.Command, args []string) error {
	return edit(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		id, err := resolvePage(w, args[0])
		if err != nil {
			return err
		}
		if err := w.UsePage(ctx, id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Active page is now %s\n", w.ActivePage().Name)
		return nil
	})
}
