package cli

import (
	"fmt"
	"os"

	"github.com/alexanderramin/waypoint/internal/cli/formatter"
	"github.com/alexanderramin/waypoint/internal/contract"
	tmpl "github.com/alexanderramin/waypoint/internal/template"
	"github.com/spf13/cobra"
)

func newTemplateCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "template",
		Short: "Browse and manage timeline templates",
	}

	cmd.AddCommand(
		newTemplateListCmd(app),
		newTemplateShowCmd(app),
		newTemplateImportCmd(app),
		newTemplateExportCmd(app),
		newTemplateActivateCmd(app, true),
		newTemplateActivateCmd(app, false),
	)

	return cmd
}

func newTemplateListCmd(app *App) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List templates",
		RunE: func(cmd *cobra.Command, args []string) error {
			templates, err := app.Templates.List(cmd.Context(), false)
			if err != nil {
				return err
			}
			shown := 0
			for _, t := range templates {
				if t.Active || all {
					shown++
				}
			}
			if shown == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No templates found.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTemplateList(templates, all))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "Include inactive templates")
	return cmd
}

func newTemplateShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show TEMPLATE",
		Short: "Show a template's items and day offsets",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Templates.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			detail, err := app.Templates.Get(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatTemplateShow(detail))
			return nil
		},
	}
}

func newTemplateImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import [PATH]",
		Short: "Import template documents from a file or directory",
		Long: "Import a YAML or JSON template document. When PATH is a directory\n" +
			"every document whose name is not taken yet is imported. Without\n" +
			"PATH the configured templates directory is used.",
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			} else if app.Config != nil {
				path = app.Config.TemplatesDir
			}
			if path == "" {
				return fmt.Errorf("no PATH given and no templates directory configured")
			}

			info, err := os.Stat(path)
			if err != nil {
				return err
			}

			var imported []*contract.TemplateDetail
			if info.IsDir() {
				imported, err = app.Templates.ImportDir(cmd.Context(), path)
			} else {
				var doc *tmpl.Document
				if doc, err = tmpl.LoadDocument(path); err != nil {
					return fmt.Errorf("reading %s: %w", path, err)
				}
				var detail *contract.TemplateDetail
				if detail, err = app.Templates.Import(cmd.Context(), doc); detail != nil {
					imported = append(imported, detail)
				}
			}
			for _, d := range imported {
				fmt.Fprintln(cmd.OutOrStdout(), formatter.Success(fmt.Sprintf("Imported %s (%d items)", d.Template.Name, len(d.Items))))
			}
			if err == nil && len(imported) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Nothing to import.")
			}
			return err
		},
	}
}

func newTemplateExportCmd(app *App) *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export TEMPLATE",
		Short: "Write a template as a YAML document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Templates.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			doc, err := app.Templates.Export(cmd.Context(), t.ID)
			if err != nil {
				return err
			}
			data, err := doc.Marshal()
			if err != nil {
				return err
			}
			if out == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(out, data, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", out)
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "output", "o", "", "Write to file instead of stdout")
	return cmd
}

func newTemplateActivateCmd(app *App, active bool) *cobra.Command {
	use, short := "activate TEMPLATE", "Offer a template for new timelines"
	if !active {
		use, short = "deactivate TEMPLATE", "Hide a template from the default list"
	}
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := app.Templates.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.Templates.SetActive(cmd.Context(), t.ID, active); err != nil {
				return err
			}
			state := "active"
			if !active {
				state = "inactive"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Template %s is now %s\n", t.Name, state)
			return nil
		},
	}
}
