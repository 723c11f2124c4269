package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func newBrowseCmd(app *App) *cobra.Command {
	var flags viewFlags

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Explore a report interactively",
		Long: `Open the report as an expandable tree.

Keys: ↑/↓ or j/k move, enter or space expands, tab and shift+tab switch
the hour category, 1-5 pick the sort column, b switches hierarchy,
r refetches and q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			req, err := flags.request(app)
			if err != nil {
				return err
			}
			if !hasSource(req) && app.interactive() {
				if err := promptReportSource(cmd.Context(), cmd.InOrStdin(), cmd.ErrOrStderr(), &req); err != nil {
					return err
				}
			}
			if !hasSource(req) {
				return noSourceError()
			}

			m := newBrowseModel(cmd.Context(), app, req)
			p := tea.NewProgram(m,
				tea.WithAltScreen(),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			final, err := p.Run()
			if err != nil {
				return err
			}
			if bm, ok := final.(*browseModel); ok && bm.resp == nil && bm.loadErr != nil {
				return bm.loadErr
			}
			return nil
		},
	}

	flags.register(cmd.Flags(), app)

	return cmd
}
