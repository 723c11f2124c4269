package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/tally/internal/domain"
)

// FormatSnapshots renders saved snapshots as a table, newest first as
// given. now is used for relative ages.
func FormatSnapshots(snaps []*domain.Snapshot, now time.Time) string {
	if len(snaps) == 0 {
		return Dim("No snapshots saved. Use 'tally snapshot save --slug <slug>' to create one.") + "\n"
	}

	headers := []string{"ID", "Slug", "Label", "Range", "Cases", "Hours", "Saved"}
	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			TruncID(s.ID),
			s.Slug,
			s.Label,
			FormatRange(s.Range),
			fmt.Sprint(s.RecordCount),
			FormatHours(s.Summary.TotalHours),
			Age(s.CreatedAt, now),
		})
	}
	return RenderTable(headers, rows, 4, 5)
}

// FormatSnapshot renders one snapshot's metadata in a box.
func FormatSnapshot(s *domain.Snapshot, now time.Time) string {
	var b strings.Builder
	field := func(label, value string) {
		fmt.Fprintf(&b, "%s %s\n", Dim(fmt.Sprintf("%-9s", label+":")), value)
	}
	field("ID", s.ID)
	field("Slug", s.Slug)
	if s.Label != "" {
		field("Label", s.Label)
	}
	field("Range", FormatRange(s.Range))
	field("Filters", FormatFilters(s.Filters))
	field("Cases", fmt.Sprint(s.RecordCount))
	field("Saved", s.CreatedAt.Format("2006-01-02 15:04")+" "+Dim("("+Age(s.CreatedAt, now)+")"))

	sum := s.Summary
	b.WriteString("\n")
	rows := make([][]string, 0, len(domain.AllHoursFields()))
	for _, f := range domain.AllHoursFields() {
		rows = append(rows, []string{f.Label(), FormatHours(sum.HoursFor(f))})
	}
	rows = append(rows, []string{"Total", FormatHours(sum.TotalHours)})
	b.WriteString(RenderTable([]string{"Category", "Hours"}, rows, 1))
	fmt.Fprintf(&b, "\n%s\n", Dim(strings.Join([]string{
		FormatCount(sum.UniqueAccountManagers, "manager"),
		FormatCount(sum.UniqueClients, "client"),
		FormatCount(sum.UniqueSponsors, "sponsor"),
		FormatCount(sum.UniqueCases, "case"),
		FormatCount(sum.UniqueWorkers, "worker"),
	}, " · ")))

	return RenderBox("Snapshot "+s.ShortID(), strings.TrimRight(b.String(), "\n"))
}

// Age renders how long before now t was, coarsely: "just now", "5m ago",
// "3h ago", "2d ago", or the date once older than two weeks.
func Age(t, now time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	case d < 14*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d.Hours()/24))
	default:
		return t.Format("Jan 2, 2006")
	}
}
