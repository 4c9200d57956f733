package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/export"
	"github.com/conneroisu/webbuilder/internal/site"
)

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"p"},
	Short:   "Manage saved projects",
	Long: `Manage the projects in the configured store.

Examples:
  webbuilder project list                    # Every saved project
  webbuilder project show -P shop            # Pages and element counts
  webbuilder project import shop.json        # Load a project JSON snapshot
  webbuilder project delete old-site         # Remove a project`,
}

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List saved projects",
	Args:    cobra.NoArgs,
	RunE:    runProjectList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [name]",
	Short: "Show a project's pages",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runProjectShow,
}

var projectDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete a saved project",
	Args:  cobra.ExactArgs(1),
	RunE:  runProjectDelete,
}

var projectImportCmd = &cobra.Command{
	Use:   "import <file.json>",
	Short: "Import a project JSON snapshot",
	Long: `Import a project JSON snapshot as written by "webbuilder export". The elements
replace those of the active page of the project named in the file, or of
--project when the file has no name. Responsive overrides and positions are
not part of the snapshot format.`,
	Args: cobra.ExactArgs(1),
	RunE: runProjectImport,
}

var (
	projectListFlags *OutputFlags
	projectShowFlags *OutputFlags
)

func init() {
	rootCmd.AddCommand(projectCmd)
	projectCmd.AddCommand(projectListCmd, projectShowCmd, projectDeleteCmd, projectImportCmd)

	projectListFlags = AddOutputFlags(projectListCmd)
	projectShowFlags = AddOutputFlags(projectShowCmd)
}

type projectRow struct {
	Name         string `json:"name" yaml:"name"`
	Elements     int    `json:"elements" yaml:"elements"`
	LastModified string `json:"lastModified" yaml:"lastModified"`
}

func runProjectList(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		names, err := s.repo.List(ctx)
		if err != nil {
			return err
		}
		if len(names) == 0 && projectListFlags.Format == FormatTable {
			fmt.Fprintln(cmd.OutOrStdout(), "No projects saved.")
			return nil
		}

		rows := make([]projectRow, 0, len(names))
		for _, name := range names {
			rec, err := s.repo.Record(ctx, name)
			if err != nil {
				s.logger.Warn(ctx, err, "skipping unreadable project", "project", name)
				continue
			}
			rows = append(rows, projectRow{Name: name, Elements: len(rec.Elements), LastModified: rec.LastModified})
		}

		return projectListFlags.Print(cmd.OutOrStdout(), rows, func(w *tabwriter.Writer) {
			fmt.Fprintln(w, "NAME\tELEMENTS\tLAST MODIFIED")
			for _, r := range rows {
				fmt.Fprintf(w, "%s\t%d\t%s\n", r.Name, r.Elements, r.LastModified)
			}
		})
	})
}

type pageRow struct {
	site.Page `yaml:",inline"`
	Elements  int  `json:"elements" yaml:"elements"`
	Active    bool `json:"active" yaml:"active"`
}

type projectView struct {
	Name  string    `json:"name" yaml:"name"`
	Pages []pageRow `json:"pages" yaml:"pages"`
}

func pageRows(w *site.Workspace) []pageRow {
	active := w.ActivePage().ID
	pages := w.Pages()
	rows := make([]pageRow, len(pages))
	for i, p := range pages {
		elements, _ := w.Elements(p.ID)
		rows[i] = pageRow{Page: p, Elements: len(elements), Active: p.ID == active}
	}
	return rows
}

func printPages(cmd *cobra.Command, flags *OutputFlags, v any, rows []pageRow) error {
	return flags.Print(cmd.OutOrStdout(), v, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tPATH\tELEMENTS\t")
		for _, r := range rows {
			marks := ""
			if r.IsHomePage {
				marks += " home"
			}
			if r.Active {
				marks += " active"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n", r.ID, r.Name, r.Path, r.Elements, marks)
		}
	})
}

func runProjectShow(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		name := s.cfg.Project.Name
		if len(args) == 1 {
			name = args[0]
		}
		w, err := s.repo.LoadWorkspace(ctx, name, s.options())
		if err != nil {
			return err
		}

		rows := pageRows(w)
		if projectShowFlags.Format == FormatTable {
			fmt.Fprintf(cmd.OutOrStdout(), "Project: %s\n\n", w.Name())
		}
		return printPages(cmd, projectShowFlags, projectView{Name: w.Name(), Pages: rows}, rows)
	})
}

func runProjectDelete(cmd *cobra.Command, args []string) error {
	return withSession(cmd, func(ctx context.Context, s *session) error {
		if err := s.repo.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Project %s deleted\n", args[0])
		return nil
	})
}

func runProjectImport(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return errors.NewIOError("read project file", err).WithContext("path", args[0])
	}
	proj, elements, err := export.ParseProjectJSON(data)
	if err != nil {
		return err
	}

	return withSession(cmd, func(ctx context.Context, s *session) error {
		name := proj.ProjectName
		if name == "" {
			name = s.cfg.Project.Name
		}
		w, err := s.repo.OpenOrCreate(ctx, name, s.options())
		if err != nil {
			return err
		}
		if err := w.ReplaceElements(ctx, "", elements); err != nil {
			return err
		}
		if err := s.repo.SaveWorkspace(ctx, w); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d elements into %s (page %s)\n",
			len(elements), name, w.ActivePage().Name)
		return nil
	})
}
