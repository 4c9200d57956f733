package cmd

import (
	"context"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/webbuilder/internal/canvas"
	"github.com/conneroisu/webbuilder/internal/catalog"
	"github.com/conneroisu/webbuilder/internal/errors"
	"github.com/conneroisu/webbuilder/internal/site"
	"github.com/conneroisu/webbuilder/internal/types"
)

var elementCmd = &cobra.Command{
	Use:     "element",
	Aliases: []string{"el"},
	Short:   "Edit the elements of a page",
	Long: `Edit the elements of the active page, or of the page given with --page.
Every change is recorded in the page history (see "webbuilder undo").

Examples:
  webbuilder element add hero-01
  webbuilder element list -o json
  webbuilder element update <id> --prop title="Привет" --style padding=40px
  webbuilder element update <id> --mobile font-size=14px
  webbuilder element move <id> 0
  webbuilder element front <id>
  webbuilder element rotate <id> 90
  webbuilder element flip <id> --vertical`,
}

var elementListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the elements of a page in stacking order",
	Args:    cobra.NoArgs,
	RunE:    runElementList,
}

var elementAddCmd = &cobra.Command{
	Use:   "add <template-id>",
	Short: "Add an element from a catalog template",
	Args:  cobra.ExactArgs(1),
	RunE:  runElementAdd,
}

var elementUpdateCmd = &cobra.Command{
	Use:   "update <element-id>",
	Short: "Change props, styles, responsive overrides or position",
	Long: `Change props, styles, responsive overrides or position of an element.

Prop values are converted to the kind the template declares, so
--prop opacity=0.5 stores a number. An empty value (--prop subtitle=)
removes the override and the template default shows through again; an
empty style value removes the declaration.`,
	Args: cobra.ExactArgs(1),
	RunE: runElementUpdate,
}

var elementDeleteCmd = &cobra.Command{
	Use:   "delete <element-id>",
	Short: "Delete an element",
	Args:  cobra.ExactArgs(1),
	RunE:  runElementDelete,
}

var elementDuplicateCmd = &cobra.Command{
	Use:   "duplicate <element-id>",
	Short: "Append a copy of an element",
	Args:  cobra.ExactArgs(1),
	RunE:  runElementDuplicate,
}

var elementMoveCmd = &cobra.Command{
	Use:   "move <element-id> <index>",
	Short: "Move an element to a position in the stacking order",
	Args:  cobra.ExactArgs(2),
	RunE:  runElementMove,
}

var elementRotateCmd = &cobra.Command{
	Use:   "rotate <element-id> <degrees>",
	Short: "Rotate an element",
	Args:  cobra.ExactArgs(2),
	RunE:  runElementRotate,
}

var elementFlipCmd = &cobra.Command{
	Use:   "flip <element-id>",
	Short: "Mirror an element horizontally, or vertically with --vertical",
	Args:  cobra.ExactArgs(1),
	RunE:  runElementFlip,
}

var (
	elementListFlags *OutputFlags

	updateProps    []string
	updateStyles   []string
	updateTablet   []string
	updateMobile   []string
	updateX        float64
	updateY        float64
	flipVertically bool
)

func init() {
	rootCmd.AddCommand(elementCmd)
	elementCmd.AddCommand(elementListCmd, elementAddCmd, elementUpdateCmd, elementDeleteCmd,
		elementDuplicateCmd, elementMoveCmd, elementRotateCmd, elementFlipCmd)

	for _, a := range []struct {
		use   string
		short string
		op    site.ArrangeOp
	}{
		{"front", "Bring an element to the front", site.BringToFront},
		{"back", "Send an element to the back", site.SendToBack},
		{"forward", "Bring an element one step forward", site.BringForward},
		{"backward", "Send an element one step backward", site.SendBackward},
	} {
		elementCmd.AddCommand(arrangeCommand(a.use, a.short, a.op))
	}

	elementListFlags = AddOutputFlags(elementListCmd)

	f := elementUpdateCmd.Flags()
	f.StringArrayVar(&updateProps, "prop", nil, "Set a prop (key=value, repeatable)")
	f.StringArrayVar(&updateStyles, "style", nil, "Set a style declaration (key=value, repeatable)")
	f.StringArrayVar(&updateTablet, "tablet", nil, "Set a tablet override (key=value, repeatable)")
	f.StringArrayVar(&updateMobile, "mobile", nil, "Set a mobile override (key=value, repeatable)")
	f.Float64Var(&updateX, "x", 0, "Horizontal position")
	f.Float64Var(&updateY, "y", 0, "Vertical position")

	elementFlipCmd.Flags().BoolVar(&flipVertically, "vertical", false, "Flip vertically instead of horizontally")
}

func arrangeCommand(use, short string, op site.ArrangeOp) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <element-id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return arrange(cmd, args[0], op)
		},
	}
}

type elementRow struct {
	Index    int    `json:"index" yaml:"index"`
	ID       string `json:"id" yaml:"id"`
	Template string `json:"componentId" yaml:"componentId"`
	Name     string `json:"name" yaml:"name"`
}

func runElementList(cmd *cobra.Command, args []string) error {
	return view(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		pageID, err := s.page(w)
		if err != nil {
			return err
		}
		elements, err := w.Elements(pageID)
		if err != nil {
			return err
		}
		if len(elements) == 0 && elementListFlags.Format == FormatTable {
			fmt.Fprintln(cmd.OutOrStdout(), "No elements on this page.")
			return nil
		}

		return elementListFlags.Print(cmd.OutOrStdout(), elements, func(tw *tabwriter.Writer) {
			fmt.Fprintln(tw, "#\tID\tTEMPLATE\tNAME")
			for i, e := range elements {
				r := elementRow{Index: i, ID: e.ID, Template: e.TemplateID, Name: "(missing template)"}
				if t, ok := w.Catalog().Lookup(e.TemplateID); ok {
					r.Name = t.Name
				}
				fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", r.Index, r.ID, r.Template, r.Name)
			}
		})
	})
}

func runElementAdd(cmd *cobra.Command, args []string) error {
	return edit(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		pageID, err := s.page(w)
		if err != nil {
			return err
		}
		e, err := w.AddElement(ctx, pageID, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), e.ID)
		return nil
	})
}

// buildPatch turns the update flags into a patch for the element's template.
func buildPatch(cmd *cobra.Command, t catalog.Template, known bool) (canvas.Patch, error) {
	var p canvas.Patch

	props, err := parseAssignments(updateProps)
	if err != nil {
		return p, errors.NewValidationError(errors.CodeInvalidProp, err.Error())
	}
	if len(props) > 0 {
		p.Props = make(types.Props, len(props))
		for name, raw := range props {
			if raw == "" {
				p.Props[name] = types.Null()
				continue
			}
			if !known {
				p.Props[name] = types.String(raw)
				continue
			}
			v, err := catalog.CoerceProp(t, name, raw)
			if err != nil {
				return p, err
			}
			p.Props[name] = v
		}
	}

	for _, s := range []struct {
		pairs []string
		dst   *types.Styles
	}{
		{updateStyles, &p.Styles},
		{updateTablet, &p.Tablet},
		{updateMobile, &p.Mobile},
	} {
		styles, err := parseStyles(s.pairs)
		if err != nil {
			return p, errors.NewValidationError("ERR_INVALID_STYLE", err.Error())
		}
		*s.dst = styles
	}

	if cmd.Flags().Changed("x") || cmd.Flags().Changed("y") {
		p.Position = &canvas.Position{X: updateX, Y: updateY}
	}

	return p, nil
}

func runElementUpdate(cmd *cobra.Command, args []string) error {
	return edit(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		pageID, err := s.page(w)
		if err != nil {
			return err
		}
		elements, err := w.Elements(pageID)
		if err != nil {
			return err
		}
		current, err := elements.Get(args[0])
		if err != nil {
			return err
		}
		t, known := w.Catalog().Lookup(current.TemplateID)

		patch, err := buildPatch(cmd, t, known)
		if err != nil {
			return err
		}
		if patch.Position != nil {
			// Only the flags given move the element.
			if !cmd.Flags().Changed("x") {
				patch.Position.X = current.Position.X
			}
			if !cmd.Flags().Changed("y") {
				patch.Position.Y = current.Position.Y
			}
		}
		if patch.IsEmpty() {
			return errors.NewValidationError("ERR_EMPTY_PATCH",
				"nothing to update: pass --prop, --style, --tablet, --mobile, --x or --y")
		}

		e, err := w.UpdateElement(ctx, pageID, args[0], patch)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %s\n", e.ID)
		return nil
	})
}

// onPage runs fn against the selected page and reports done on success.
func onPage(cmd *cobra.Command, done string, fn func(ctx context.Context, w *site.Workspace, pageID string) error) error {
	return edit(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		pageID, err := s.page(w)
		if err != nil {
			return err
		}
		if err := fn(ctx, w, pageID); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), done)
		return nil
	})
}

func runElementDelete(cmd *cobra.Command, args []string) error {
	return onPage(cmd, "Deleted "+args[0], func(ctx context.Context, w *site.Workspace, pageID string) error {
		return w.DeleteElement(ctx, pageID, args[0])
	})
}

func runElementDuplicate(cmd *cobra.Command, args []string) error {
	return edit(cmd, func(ctx context.Context, s *session, w *site.Workspace) error {
		pageID, err := s.page(w)
		if err != nil {
			return err
		}
		dup, err := w.DuplicateElement(ctx, pageID, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), dup.ID)
		return nil
	})
}

func runElementMove(cmd *cobra.Command, args []string) error {
	to, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.NewValidationError("ERR_INVALID_INDEX", fmt.Sprintf("index must be a whole number, got %q", args[1]))
	}
	return onPage(cmd, fmt.Sprintf("Moved %s to %d", args[0], to), func(ctx context.Context, w *site.Workspace, pageID string) error {
		return w.MoveElement(ctx, pageID, args[0], to)
	})
}

func runElementRotate(cmd *cobra.Command, args []string) error {
	deg, err := strconv.Atoi(args[1])
	if err != nil {
		return errors.NewValidationError("ERR_INVALID_ANGLE", fmt.Sprintf("degrees must be a whole number, got %q", args[1]))
	}
	return onPage(cmd, fmt.Sprintf("Rotated %s by %d°", args[0], deg), func(ctx context.Context, w *site.Workspace, pageID string) error {
		return w.Rotate(ctx, pageID, args[0], deg)
	})
}

func runElementFlip(cmd *cobra.Command, args []string) error {
	op := site.FlipHorizontal
	if flipVertically {
		op = site.FlipVertical
	}
	return arrange(cmd, args[0], op)
}

func arrange(cmd *cobra.Command, id string, op site.ArrangeOp) error {
	return onPage(cmd, fmt.Sprintf("Applied %s to %s", op, id), func(ctx context.Context, w *site.Workspace, pageID string) error {
		return w.Arrange(ctx, pageID, id, op)
	})
}
