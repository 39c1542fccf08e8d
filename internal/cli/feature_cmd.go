package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/waypoint/internal/cli/formatter"
	"github.com/spf13/cobra"
)

func newFeatureCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feature",
		Short: "Switch dashboard features per project",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "list PROJECT",
			Short: "Show feature switches for a project",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				p, err := app.Projects.Resolve(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				states, err := app.Features.States(cmd.Context(), p.ID)
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatter.FormatFeatureStates(states))
				return nil
			},
		},
		newFeatureToggleCmd(app, true),
		newFeatureToggleCmd(app, false),
	)

	return cmd
}

func newFeatureToggleCmd(app *App, enable bool) *cobra.Command {
	verb := "enable"
	if !enable {
		verb = "disable"
	}
	return &cobra.Command{
		Use:   verb + " PROJECT FEATURE",
		Short: fmt.Sprintf("Turn a feature %s for a project", onOff(enable)),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := app.Projects.Resolve(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if err := app.Features.SetProjectFeature(cmd.Context(), p.ID, args[1], enable); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Feature %s %sd for %s\n", args[1], verb, p.DisplayID())
			return nil
		},
	}
}

func newSettingsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Administrator feature switches",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Show global feature switches",
			RunE: func(cmd *cobra.Command, args []string) error {
				settings, err := app.Features.Settings(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), formatter.FormatGlobalSettings(settings))
				return nil
			},
		},
		&cobra.Command{
			Use:   "feature FEATURE on|off",
			Short: "Switch a feature for every project",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				on, err := parseSwitch(args[1])
				if err != nil {
					return err
				}
				if err := app.Features.SetGlobal(cmd.Context(), args[0], on); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Feature %s is globally %s\n", args[0], onOff(on))
				return nil
			},
		},
	)

	return cmd
}

func parseSwitch(s string) (bool, error) {
	switch s {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return false, fmt.Errorf("expected on or off, got %q", s)
	}
	return v, nil
}

func onOff(on bool) string {
	if on {
		return "on"
	}
	return "off"
}
