package repository

import (
	"context"
	"errors"

	"github.com/alexanderramin/tally/internal/domain"
)

var (
	// ErrNotFound is returned when no row matches the lookup.
	ErrNotFound = errors.New("not found")
	// ErrAmbiguousID is returned when an ID prefix matches several rows.
	ErrAmbiguousID = errors.New("ambiguous id")
)

// SnapshotRepo persists saved timesheets. Create writes several tables and
// should run inside a UnitOfWork.
type SnapshotRepo interface {
	Create(ctx context.Context, s *domain.Snapshot, records []domain.CaseTimeRecord) error
	// GetByID accepts a full ID or a unique prefix of one.
	GetByID(ctx context.Context, id string) (*domain.Snapshot, error)
	// List returns snapshots newest first; an empty slug lists all.
	List(ctx context.Context, slug string) ([]*domain.Snapshot, error)
	LoadRecords(ctx context.Context, id string) ([]domain.CaseTimeRecord, error)
	Delete(ctx context.Context, id string) error
}
