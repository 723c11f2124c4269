package cli

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/tally/internal/aggregate"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/spf13/pflag"
)

// filterList collects repeated --filter field=v1,v2 flags.
type filterList []domain.Filter

var _ pflag.Value = (*filterList)(nil)

func (f *filterList) String() string {
	parts := make([]string, len(*f))
	for i, flt := range *f {
		parts[i] = flt.String()
	}
	return strings.Join(parts, "; ")
}

func (f *filterList) Set(s string) error {
	flt, err := domain.ParseFilter(s)
	if err != nil {
		return err
	}
	*f = append(*f, flt)
	return nil
}

func (f *filterList) Type() string { return "field=values" }

// selectionFlags narrow what a live fetch returns.
type selectionFlags struct {
	from    string
	to      string
	filters filterList
}

func (s *selectionFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&s.from, "from", "", "Start date (YYYY-MM-DD or DD-MM-YYYY)")
	fs.StringVar(&s.to, "to", "", "End date (YYYY-MM-DD or DD-MM-YYYY)")
	fs.Var(&s.filters, "filter", "Filter as field=v1,v2 (repeatable)")
}

func (s *selectionFlags) dateRange() (domain.DateRange, error) {
	return domain.ParseDateRange(s.from, s.to)
}

// viewFlags are shared by report and browse.
type viewFlags struct {
	selection selectionFlags
	slugs     []string
	snapshot  string
	field     string
	by        string
	sort      string
	strict    bool
}

func (v *viewFlags) register(fs *pflag.FlagSet, app *App) {
	cfg := app.Config
	v.selection.register(fs)
	fs.StringArrayVar(&v.slugs, "slug", nil, "Timesheet slug (repeatable; hours are combined)")
	fs.StringVar(&v.snapshot, "snapshot", "", "Read a saved snapshot (ID or unique prefix) instead of fetching")
	fs.StringVar(&v.field, "field", cfg.Field, "Hour category: consulting, hands_on, squad or internal")
	fs.StringVar(&v.by, "by", cfg.Hierarchy, "Hierarchy: manager, client or worker")
	fs.StringVar(&v.sort, "sort", cfg.SortBy, "Sort column: hours, clients, sponsors, cases or workers")
	fs.BoolVar(&v.strict, "strict", cfg.Strict, "Fail on negative or non-finite hours instead of counting them as zero")
}

// request builds a ReportRequest from the flags. The configured default
// slug is used only when neither --slug nor --snapshot is given.
func (v *viewFlags) request(app *App) (contract.ReportRequest, error) {
	req := contract.NewReportRequest(v.slugs...)
	req.SnapshotID = v.snapshot
	req.Strict = v.strict
	if len(req.Slugs) == 0 && req.SnapshotID == "" && app.Config.Slug != "" {
		req.Slugs = []string{app.Config.Slug}
	}

	var err error
	if req.Field, err = domain.ParseHoursField(v.field); err != nil {
		return req, err
	}
	if req.Hierarchy, err = aggregate.ParseHierarchy(v.by); err != nil {
		return req, err
	}
	if req.SortBy, err = aggregate.ParseSortColumn(v.sort); err != nil {
		return req, err
	}
	if req.Range, err = v.selection.dateRange(); err != nil {
		return req, err
	}
	req.Filters = v.selection.filters

	now := app.now()
	req.Now = &now
	return req, nil
}

// hasSource reports whether req can be served without asking the user.
func hasSource(req contract.ReportRequest) bool {
	return req.SnapshotID != "" || len(req.Slugs) > 0
}

func unknownFormat(format string) error {
	return fmt.Errorf("unknown format %q (want tree, table or json)", format)
}
