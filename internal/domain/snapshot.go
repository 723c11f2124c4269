package domain

import "time"

// Snapshot is a saved copy of a fetched timesheet. Records are stored
// alongside and loaded separately.
type Snapshot struct {
	ID          string
	Slug        string
	Label       string
	Filters     []Filter
	Range       DateRange
	Summary     TimesheetSummary
	RecordCount int
	CreatedAt   time.Time
}

// ShortID is the first eight characters of the ID, enough to address a
// snapshot from the command line.
func (s Snapshot) ShortID() string {
	if len(s.ID) <= 8 {
		return s.ID
	}
	return s.ID[:8]
}
