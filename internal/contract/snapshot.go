package contract

import (
	"time"

	"github.com/alexanderramin/tally/internal/domain"
)

// SnapshotRequest describes a live timesheet to fetch and save.
type SnapshotRequest struct {
	Slug    string
	Label   string
	Filters []domain.Filter
	Range   domain.DateRange
	Now     *time.Time
}

type SnapshotResponse struct {
	Snapshot *domain.Snapshot
	Warnings []string
}
