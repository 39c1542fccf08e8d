package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/alexanderramin/waypoint/internal/cli/formatter"
	"github.com/alexanderramin/waypoint/internal/contract"
	"github.com/alexanderramin/waypoint/internal/domain"
	"github.com/alexanderramin/waypoint/internal/service"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newTimelineCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Edit, publish and template project timelines",
	}
	cmd.AddCommand(collectionCommands(app, timelineCollection(app))...)
	cmd.AddCommand(
		newTimelineApplyCmd(app),
		newTimelineSaveTemplateCmd(app),
	)
	return cmd
}

func newTimelineApplyCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "apply PROJECT TEMPLATE",
		Short: "Replace the timeline with a copy of a template",
		Long: "Replace the project's timeline with a copy of a template. Due dates\n" +
			"are the project start date (or today) plus each item's day offset.\n" +
			"TEMPLATE is a template ID, name or list position.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := requireProject(ctx, app, args[0], domain.FeatureTimeline)
			if err != nil {
				return err
			}
			t, err := app.Templates.Resolve(ctx, args[1])
			if err != nil {
				return err
			}

			req := contract.NewApplyTemplateRequest(p.ID, t.ID)
			req.ConfirmReplace = yes
			apply := func() (*contract.ApplyTemplateResult, error) {
				defer app.busy(cmd.ErrOrStderr(), "Applying "+t.Name+"…")()
				return app.Templates.Apply(ctx, req)
			}
			res, err := apply()
			if errors.Is(err, service.ErrReplaceNotConfirmed) {
				ok, cerr := confirm(app, fmt.Sprintf("Replace the timeline of %s with %q?", p.DisplayID(), t.Name),
					err.Error())
				if cerr != nil {
					return cerr
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
					return nil
				}
				req.ConfirmReplace = true
				res, err = apply()
			}
			if res != nil {
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatApplyResult(t.Name, res))
			}
			return err
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace existing timeline items without asking")
	return cmd
}

func newTimelineSaveTemplateCmd(app *App) *cobra.Command {
	var meta contract.TemplateMeta

	cmd := &cobra.Command{
		Use:   "save-template PROJECT",
		Short: "Save the timeline as a new template",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			col := timelineCollection(app)
			p, b, err := col.load(ctx, app, args[0])
			if err != nil {
				return err
			}

			if strings.TrimSpace(meta.Name) == "" {
				if !app.interactive() {
					return errors.New("--name is required")
				}
				if err := templateMetaForm(&meta).Run(); err != nil {
					return err
				}
			}

			res, err := app.Templates.CreateFromTimeline(ctx, contract.CreateTemplateRequest{
				ProjectID: p.ID,
				Items:     b.Snapshot().Items,
				Meta:      meta,
			})
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Saved template %s with %d items", res.Template.Name, len(res.Items))))
			return nil
		},
	}

	cmd.Flags().StringVar(&meta.Name, "name", "", "Template name")
	cmd.Flags().StringVar(&meta.Description, "description", "", "Template description")
	cmd.Flags().StringVar(&meta.Category, "category", "", "Template category")
	cmd.Flags().StringVar(&meta.Color, "color", "", "Template color (e.g. #fe8019)")
	return cmd
}

// templateMetaForm asks for the metadata of a new template.
func templateMetaForm(meta *contract.TemplateMeta) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Template name").
				Value(&meta.Name).
				Validate(requiredText("name")),
			huh.NewInput().
				Title("Description").
				Value(&meta.Description),
			huh.NewInput().
				Title("Category").
				Placeholder("web").
				Value(&meta.Category),
			huh.NewInput().
				Title("Color").
				Placeholder("#fe8019").
				Value(&meta.Color),
		),
	).WithTheme(waypointHuhTheme()).WithShowHelp(false)
}
