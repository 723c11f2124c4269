package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/service"
	"github.com/spf13/cobra"
)

func newReportCmd(app *App) *cobra.Command {
	var flags viewFlags
	var depth int
	var format string

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print hours folded into a manager, client or worker tree",
		Example: `  tally report --slug acme-2026
  tally report --slug acme-2026 --slug acme-2025 --by client --sort cases
  tally report --snapshot 3f2a --field internal --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "tree", "table", "json":
			default:
				return unknownFormat(format)
			}

			req, err := flags.request(app)
			if err != nil {
				return err
			}
			if !hasSource(req) && app.interactive() {
				if err := promptReportSource(cmd.Context(), cmd.InOrStdin(), cmd.ErrOrStderr(), &req); err != nil {
					return err
				}
			}

			resp, err := buildReport(cmd, app, req)
			if err != nil {
				return err
			}
			return writeReport(cmd.OutOrStdout(), resp, format, depth)
		},
	}

	flags.register(cmd.Flags(), app)
	cmd.Flags().IntVar(&depth, "depth", 0, "Levels to print (0 for all)")
	cmd.Flags().StringVar(&format, "format", "tree", "Output format: tree, table or json")

	return cmd
}

// buildReport runs the report use case behind a spinner when stderr
// belongs to a terminal.
func buildReport(cmd *cobra.Command, app *App, req contract.ReportRequest) (*contract.ReportResponse, error) {
	if app.interactive() {
		msg := "Fetching timesheet..."
		if req.SnapshotID != "" {
			msg = "Loading snapshot..."
		}
		stop := formatter.StartSpinner(cmd.ErrOrStderr(), msg)
		defer stop()
	}

	resp, err := app.Reports.Build(cmd.Context(), req)
	if errors.Is(err, service.ErrNoSource) {
		return nil, noSourceError()
	}
	return resp, err
}

func noSourceError() error {
	return fmt.Errorf("%w: pass --slug or --snapshot, or set slug in the config file", service.ErrNoSource)
}

func writeReport(w io.Writer, resp *contract.ReportResponse, format string, depth int) error {
	switch format {
	case "json":
		data, err := formatter.ReportJSON(resp, depth)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	case "table":
		_, err := fmt.Fprint(w, formatter.FormatReportTable(resp, depth))
		return err
	default:
		_, err := fmt.Fprint(w, formatter.FormatReport(resp, depth))
		return err
	}
}
