package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/charmbracelet/huh"
)

var errPromptAborted = errors.New("aborted")

func validateSlug(s string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("slug is required")
	}
	return nil
}

// reportSourceForm asks for the timesheet slug and hour category.
func reportSourceForm(slug, field *string) *huh.Form {
	options := make([]huh.Option[string], 0, len(domain.AllHoursFields()))
	for _, f := range domain.AllHoursFields() {
		options = append(options, huh.NewOption(f.Label(), string(f)))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Timesheet slug").
				Placeholder("acme-2026").
				Value(slug).
				Validate(validateSlug),
			huh.NewSelect[string]().
				Title("Hour category").
				Options(options...).
				Value(field),
		),
	).WithTheme(tallyHuhTheme()).WithShowHelp(false)
}

// promptReportSource fills req.Slugs and req.Field from the form.
func promptReportSource(ctx context.Context, in io.Reader, out io.Writer, req *contract.ReportRequest) error {
	var slug string
	field := string(req.Field)

	form := reportSourceForm(&slug, &field).WithInput(in).WithOutput(out)
	if err := form.RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return errPromptAborted
		}
		return err
	}

	req.Slugs = []string{strings.TrimSpace(slug)}
	req.Field = domain.HoursField(field)
	return nil
}
