package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/webbuilder/internal/site"
	"github.com/conneroisu/webbuilder/internal/theme"
)

var themeCmd = &cobra.Command{
	Use:   "theme",
	Short: "Show and edit the global style tokens",
	Long: `Show and edit the project's global style tokens: colors, typography and
spacing. Tokens are addressed by dotted keys such as colors.primary.

Examples:
  webbuilder theme show
  webbuilder theme set colors.primary "#ff6600"
  webbuilder theme css`,
}

var themeShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show every token",
	Args:  cobra.NoArgs,
	RunE:  runThemeShow,
}

var themeSetCmd = &cobra.Command{
	Use:   "set <key> <value>",
	Short: "Set one token",
	Args:  cobra.ExactArgs(2),
	RunE:  runThemeSet,
}

var themeCSSCmd = &cobra.Command{
	Use:   "css",
	Short: "Print the tokens as CSS custom properties",
	Args:  cobra.NoArgs,
	RunE:  runThemeCSS,
}

var themeShowFlags *OutputFlags

func init() {
	rootCmd.AddCommand(themeCmd)
	themeCmd.AddCommand(themeShowCmd, themeSetCmd, themeCSSCmd)

	themeShowFlags = AddOutputFlags(themeShowCmd)
}

func runThemeShow(cmd *cobra.Command, args []string) error {
	return view(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		g := w.Theme()
		return themeShowFlags.Print(cmd.OutOrStdout(), g, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "KEY\tVALUE")
			for _, key := range theme.Keys() {
				value, _ := g.Get(key)
				fmt.Fprintf(tw, "%s\t%s\n", key, value)
			}
		})
	})
}

func runThemeSet(cmd *cobra.Command, args []string) error {
	return edit(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		if _, err := w.SetTheme(ctx, args[0], args[1]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], args[1])
		return nil
	})
}

func runThemeCSS(cmd *cobra.Command, args []string) error {
	return view(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		fmt.Fprint(cmd.OutOrStdout(), w.Theme().CSSVariables())
		return nil
	})
}
