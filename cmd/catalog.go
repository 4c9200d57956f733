package cmd

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/errors"
)

var catalogCmd = &cobra.Command{
	Use:     "catalog",
	Aliases: []string{"c"},
	Short:   "Browse the template catalog",
	Long: `Browse the catalog of section templates elements are created from.

Examples:
  webbuilder catalog list                      # Every template
  webbuilder catalog list --category heroes    # One category
  webbuilder catalog search pricing -o json    # Search names and descriptions
  webbuilder catalog show hero-01              # Markup, defaults and editable props
  webbuilder catalog categories                # Template count per category
  webbuilder catalog validate                  # Integrity check`,
}

var catalogListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List templates",
	Args:    cobra.NoArgs,
	RunE:    runCatalogList,
}

var catalogSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search templates by name and description",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogSearch,
}

var catalogShowCmd = &cobra.Command{
	Use:   "show <template-id>",
	Short: "Show one template",
	Args:  cobra.ExactArgs(1),
	RunE:  runCatalogShow,
}

var catalogCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List categories with their template counts",
	Args:  cobra.NoArgs,
	RunE:  runCatalogCategories,
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check every template for integrity problems",
	Long: `Check every template: unique ids, known categories, a single root element
in the markup, and editable props that match the defaults. With catalog.extra
configured the extra templates are checked too.`,
	Args: cobra.NoArgs,
	RunE: runCatalogValidate,
}

var (
	catalogListFlags       *OutputFlags
	catalogSearchFlags     *OutputFlags
	catalogShowFlags       *OutputFlags
	catalogCategoriesFlags *OutputFlags
	catalogCategory        string
)

func init() {
	rootCmd.AddCommand(catalogCmd)
	catalogCmd.AddCommand(catalogListCmd, catalogSearchCmd, catalogShowCmd,
		catalogCategoriesCmd, catalogValidateCmd)

	catalogListFlags = AddOutputFlags(catalogListCmd)
	catalogListCmd.Flags().StringVar(&catalogCategory, "category", "", "Only list templates of this category")
	catalogSearchFlags = AddOutputFlags(catalogSearchCmd)
	catalogShowFlags = addOutputFlags(catalogShowCmd, FormatYAML)
	catalogCategoriesFlags = AddOutputFlags(catalogCategoriesCmd)
}

// templateRow is the listing view of a template.
type templateRow struct {
	ID          string `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Category    string `json:"category" yaml:"category"`
	Description string `json:"description" yaml:"description"`
}

func templateRows(templates []catalog.Template) []templateRow {
	rows := make([]templateRow, len(templates))
	for i, t := range templates {
		rows[i] = templateRow{ID: t.ID, Name: t.Name, Category: t.Category, Description: t.Description}
	}
	return rows
}

func printTemplates(cmd *cobra.Command, flags *OutputFlags, templates []catalog.Template) error {
	if len(templates) == 0 && flags.Format == FormatTable {
		fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
		return nil
	}

	return flags.Print(cmd.OutOrStdout(), templateRows(templates), func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tCATEGORY\tNAME")
		for _, t := range templates {
			fmt.Fprintf(w, "%s\t%s\t%s\n", t.ID, t.Category, t.Name)
		}
	})
}

func runCatalogList(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	templates := cat.All()
	if catalogCategory != "" {
		if !catalog.IsCategory(catalogCategory) {
			return errors.NewValidationError("ERR_UNKNOWN_CATEGORY",
				fmt.Sprintf("unknown category %q (want one of %s)", catalogCategory, strings.Join(catalog.Categories(), ", ")))
		}
		templates = cat.FilterByCategory(catalogCategory)
	}

	return printTemplates(cmd, catalogListFlags, templates)
}

func runCatalogSearch(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	return printTemplates(cmd, catalogSearchFlags, cat.Search(args[0]))
}

func runCatalogShow(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	t, ok := cat.Lookup(args[0])
	if !ok {
		return errors.NewNotFoundError(errors.CodeTemplateNotFound, "template "+args[0]+" not found")
	}

	return catalogShowFlags.Print(cmd.OutOrStdout(), t, func(w *tabwriter.Writer) {
		fmt.Fprintf(w, "ID:\t%s\n", t.ID)
		fmt.Fprintf(w, "Name:\t%s\n", t.Name)
		fmt.Fprintf(w, "Category:\t%s\n", t.Category)
		fmt.Fprintf(w, "Description:\t%s\n", t.Description)
		for _, p := range t.EditableProps {
			fmt.Fprintf(w, "Prop %s:\t%s (%s) = %s\n", p.Name, p.Label, p.Kind, t.DefaultProps[p.Name].Text())
		}
	})
}

type categoryRow struct {
	Category  string `json:"category" yaml:"category"`
	Templates int    `json:"templates" yaml:"templates"`
}

func runCatalogCategories(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	counts := cat.CountByCategory()
	rows := make([]categoryRow, 0, len(counts))
	for _, c := range catalog.Categories() {
		rows = append(rows, categoryRow{Category: c, Templates: counts[c]})
	}

	return catalogCategoriesFlags.Print(cmd.OutOrStdout(), rows, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "CATEGORY\tTEMPLATES")
		for _, r := range rows {
			fmt.Fprintf(w, "%s\t%d\n", r.Category, r.Templates)
		}
	})
}

func runCatalogValidate(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cat, err := loadCatalog(cfg)
	if err != nil {
		return err
	}

	if err := cat.Validate(); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Catalog OK: %d templates\n", cat.Len())

	return nil
}
