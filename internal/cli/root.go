package cli

import (
	"io"
	"log/slog"
	"time"

	"github.com/alexanderramin/waypoint/internal/cli/formatter"
	"github.com/alexanderramin/waypoint/internal/config"
	"github.com/alexanderramin/waypoint/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Projects    service.ProjectService
	Templates   service.TemplateService
	Features    service.FeatureService
	Collections *service.Collections

	Config *config.Config
	Logger *slog.Logger

	// IsInteractive reports whether prompts and the editor may take over
	// the terminal. Nil means never.
	IsInteractive func() bool
	// Now is the clock used for relative dates. Nil means time.Now.
	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

// busy shows a spinner on w for the duration of a blocking store call when
// attached to a terminal. Call the result when done.
func (a *App) busy(w io.Writer, message string) func() {
	if !a.interactive() {
		return func() {}
	}
	return formatter.StartSpinner(w, message)
}

func (a *App) logger() *slog.Logger {
	if a.Logger != nil {
		return a.Logger
	}
	return slog.Default()
}

// NewRootCmd creates the top-level "waypoint" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "waypoint",
		Short:         "Project timelines from reusable templates",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newProjectCmd(app),
		newTimelineCmd(app),
		newTestingCmd(app),
		newTemplateCmd(app),
		newFeatureCmd(app),
		newSettingsCmd(app),
		newServeCmd(app),
	)

	return root
}
