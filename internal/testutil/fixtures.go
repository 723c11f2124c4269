package testutil

import (
	"time"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/google/uuid"
)

// RecordOption customises a test record.
type RecordOption func(*domain.CaseTimeRecord)

// WithConsulting adds a worker with consulting hours only.
func WithConsulting(name string, hours float64) RecordOption {
	return func(r *domain.CaseTimeRecord) {
		r.PerWorkerHours = append(r.PerWorkerHours, domain.WorkerHours{
			WorkerName:      name,
			ConsultingHours: hours,
		})
	}
}

// WithWorker adds a worker with every hours category set.
func WithWorker(name string, consulting, handsOn, squad, internal float64) RecordOption {
	return func(r *domain.CaseTimeRecord) {
		r.PerWorkerHours = append(r.PerWorkerHours, domain.WorkerHours{
			WorkerName:      name,
			ConsultingHours: consulting,
			HandsOnHours:    handsOn,
			SquadHours:      squad,
			InternalHours:   internal,
		})
	}
}

func NewTestRecord(title, client, sponsor, manager string, opts ...RecordOption) domain.CaseTimeRecord {
	r := domain.CaseTimeRecord{
		Title:              title,
		ClientName:         client,
		SponsorName:        sponsor,
		AccountManagerName: manager,
	}
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Snapshot options
type SnapshotOption func(*domain.Snapshot)

func WithLabel(label string) SnapshotOption {
	return func(s *domain.Snapshot) {
		s.Label = label
	}
}

func WithCreatedAt(t time.Time) SnapshotOption {
	return func(s *domain.Snapshot) {
		s.CreatedAt = t
	}
}

func WithFilters(filters ...domain.Filter) SnapshotOption {
	return func(s *domain.Snapshot) {
		s.Filters = filters
	}
}

func WithRange(start, end time.Time) SnapshotOption {
	return func(s *domain.Snapshot) {
		s.Range = domain.DateRange{Start: &start, End: &end}
	}
}

func NewTestSnapshot(slug string, opts ...SnapshotOption) *domain.Snapshot {
	s := &domain.Snapshot{
		ID:        uuid.New().String(),
		Slug:      slug,
		CreatedAt: time.Now().UTC(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SampleRecords is a small timesheet spanning two managers, three clients
// and three workers.
func SampleRecords() []domain.CaseTimeRecord {
	return []domain.CaseTimeRecord{
		NewTestRecord("Audit", "Acme", "Bob", "Mgr1",
			WithWorker("Ana", 5, 1, 0, 0),
			WithWorker("Caio", 2, 0, 3, 0)),
		NewTestRecord("Migration", "Acme", "Bob", "Mgr1",
			WithWorker("Ana", 3, 0, 0, 1)),
		NewTestRecord("Roadmap", "Globex", "Eve", "Mgr2",
			WithWorker("Dana", 4, 2, 0, 0)),
		NewTestRecord("Onboarding", "Initech", "Pat", "Mgr2",
			WithWorker("Caio", 0, 0, 0, 6)),
	}
}
