package contract

import (
	"time"

	"github.com/alexanderramin/tally/internal/aggregate"
	"github.com/alexanderramin/tally/internal/domain"
)

// ReportRequest selects where records come from and how they are folded.
// Either Slugs or SnapshotID must be set; SnapshotID wins when both are.
type ReportRequest struct {
	Slugs      []string
	Filters    []domain.Filter
	Range      domain.DateRange
	SnapshotID string

	Field     domain.HoursField
	Hierarchy aggregate.Hierarchy
	SortBy    aggregate.SortColumn

	// Strict rejects negative or non-finite hours instead of zeroing them.
	Strict bool
	Now    *time.Time
}

func NewReportRequest(slugs ...string) ReportRequest {
	return ReportRequest{
		Slugs:     slugs,
		Field:     domain.HoursConsulting,
		Hierarchy: aggregate.ByManager,
		SortBy:    aggregate.SortHours,
	}
}

type ReportSource string

const (
	SourceLive     ReportSource = "live"
	SourceSnapshot ReportSource = "snapshot"
)

type ReportResponse struct {
	GeneratedAt time.Time
	Source      ReportSource
	Slugs       []string
	SnapshotID  string

	Field     domain.HoursField
	Hierarchy aggregate.Hierarchy
	SortBy    aggregate.SortColumn

	// Roots are sorted by SortBy at every level.
	Roots      []*aggregate.Node
	TotalHours float64
	// Summary is the server's totals for a single slug or the saved
	// snapshot's. When several slugs are merged it is recomputed from the
	// merged records.
	Summary domain.TimesheetSummary
	// Records are kept so a caller can re-fold with another field or
	// hierarchy without fetching again.
	Records  []domain.CaseTimeRecord
	Warnings []string
}

// Empty reports whether no node carries hours in the selected field.
func (r *ReportResponse) Empty() bool {
	return len(r.Roots) == 0
}

type ReportErrorCode string

const (
	ReportErrInvalidField ReportErrorCode = "INVALID_FIELD"
	ReportErrInvalidView  ReportErrorCode = "INVALID_HIERARCHY"
	ReportErrInvalidSort  ReportErrorCode = "INVALID_SORT"
)

type ReportError struct {
	Code    ReportErrorCode
	Message string
}

func (e *ReportError) Error() string {
	return string(e.Code) + ": " + e.Message
}
