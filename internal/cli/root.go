package cli

import (
	"log/slog"
	"time"

	"github.com/alexanderramin/tally/internal/config"
	"github.com/alexanderramin/tally/internal/service"
	"github.com/spf13/cobra"
)

// App holds references to the services and settings used by CLI commands.
type App struct {
	Reports   service.ReportService
	Snapshots service.SnapshotService

	// Config supplies flag defaults.
	Config config.Config

	// LogLevel is lowered to debug by --verbose. May be nil.
	LogLevel *slog.LevelVar

	// IsInteractive reports whether stdin is a terminal; prompts and
	// spinners only run when it returns true.
	IsInteractive func() bool

	Now func() time.Time
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

func (a *App) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now().UTC()
}

// NewRootCmd creates the top-level "tally" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:           "tally",
		Short:         "Timesheet hours by manager, client and worker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose && app.LogLevel != nil {
				app.LogLevel.Set(slog.LevelDebug)
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log use cases and GraphQL calls at debug level")

	root.AddCommand(
		newReportCmd(app),
		newBrowseCmd(app),
		newSnapshotCmd(app),
	)

	return root
}
