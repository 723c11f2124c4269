package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/alexanderramin/tally/internal/cli/formatter"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "snapshot",
		Aliases: []string{"snap"},
		Short:   "Save and inspect offline copies of a timesheet",
	}

	cmd.AddCommand(
		newSnapshotSaveCmd(app),
		newSnapshotListCmd(app),
		newSnapshotShowCmd(app),
		newSnapshotDeleteCmd(app),
	)

	return cmd
}

func newSnapshotSaveCmd(app *App) *cobra.Command {
	var slug, label string
	var selection selectionFlags

	cmd := &cobra.Command{
		Use:   "save",
		Short: "Fetch a timesheet and store it locally",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if slug == "" {
				slug = app.Config.Slug
			}
			r, err := selection.dateRange()
			if err != nil {
				return err
			}
			now := app.now()
			req := contract.SnapshotRequest{
				Slug:    slug,
				Label:   label,
				Filters: selection.filters,
				Range:   r,
				Now:     &now,
			}

			if app.interactive() {
				stop := formatter.StartSpinner(cmd.ErrOrStderr(), "Fetching timesheet...")
				defer stop()
			}
			resp, err := app.Snapshots.Save(cmd.Context(), req)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			s := resp.Snapshot
			fmt.Fprintf(out, "Saved snapshot %s (%s, %s)\n",
				formatter.Bold(s.ShortID()), formatter.FormatCount(s.RecordCount, "case"), formatter.FormatHours(s.Summary.TotalHours))
			for _, w := range resp.Warnings {
				fmt.Fprintln(out, formatter.Warning(w))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "Timesheet slug (defaults to the configured slug)")
	cmd.Flags().StringVar(&label, "label", "", "Free-text label shown in listings")
	selection.register(cmd.Flags())

	return cmd
}

func newSnapshotListCmd(app *App) *cobra.Command {
	var slug string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List saved snapshots, newest first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			snaps, err := app.Snapshots.List(cmd.Context(), slug)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSnapshots(snaps, app.now()))
			return nil
		},
	}

	cmd.Flags().StringVar(&slug, "slug", "", "Only list snapshots of this slug")

	return cmd
}

func newSnapshotShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a snapshot's metadata",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := app.Snapshots.Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSnapshot(s, app.now()))
			return nil
		},
	}
}

func newSnapshotDeleteCmd(app *App) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a snapshot and its records",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := app.Snapshots.Get(ctx, args[0])
			if err != nil {
				return err
			}
			if !yes && app.interactive() {
				ok, err := confirmDelete(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), s.ShortID())
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintln(cmd.OutOrStdout(), "Kept snapshot", s.ShortID())
					return nil
				}
			}
			if err := app.Snapshots.Delete(ctx, s.ID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted snapshot %s\n", s.ShortID())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")

	return cmd
}

func confirmDelete(ctx context.Context, in io.Reader, out io.Writer, id string) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete snapshot %s?", id)).
				Affirmative("Delete").
				Negative("Keep").
				Value(&ok),
		),
	).WithTheme(tallyHuhTheme()).WithShowHelp(false).WithInput(in).WithOutput(out)
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return ok, nil
}
