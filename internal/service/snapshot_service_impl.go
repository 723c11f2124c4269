package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/db"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/graphql"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/google/uuid"
)

type snapshotService struct {
	fetcher   graphql.TimesheetFetcher
	snapshots repository.SnapshotRepo
	uow       db.UnitOfWork
	observer  UseCaseObserver
}

func NewSnapshotService(
	fetcher graphql.TimesheetFetcher,
	snapshots repository.SnapshotRepo,
	uow db.UnitOfWork,
	observers ...UseCaseObserver,
) SnapshotService {
	return &snapshotService{
		fetcher:   fetcher,
		snapshots: snapshots,
		uow:       uow,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// Save fetches the requested timesheet and stores it. Partial-data
// warnings are returned alongside the saved snapshot.
func (s *snapshotService) Save(ctx context.Context, req contract.SnapshotRequest) (resp *contract.SnapshotResponse, err error) {
	fields := map[string]any{"slug": req.Slug}
	done := observe(ctx, s.observer, "save-snapshot", fields)
	defer func() { done(err) }()

	if req.Slug == "" {
		return nil, ErrNoSource
	}

	var res *graphql.TimesheetResult
	res, err = s.fetcher.FetchTimesheet(ctx, graphql.TimesheetQuery{
		Slug:    req.Slug,
		Filters: req.Filters,
		Range:   req.Range,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if req.Now != nil {
		now = *req.Now
	}
	snap := &domain.Snapshot{
		ID:        uuid.New().String(),
		Slug:      req.Slug,
		Label:     req.Label,
		Filters:   req.Filters,
		Range:     req.Range,
		Summary:   res.Summary,
		CreatedAt: now,
	}

	err = s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		return repository.NewSQLiteSnapshotRepo(tx).Create(ctx, snap, res.Records)
	})
	if err != nil {
		return nil, fmt.Errorf("saving snapshot: %w", err)
	}
	fields["id"] = snap.ID
	fields["records"] = snap.RecordCount

	return &contract.SnapshotResponse{Snapshot: snap, Warnings: res.Warnings}, nil
}

func (s *snapshotService) List(ctx context.Context, slug string) ([]*domain.Snapshot, error) {
	return s.snapshots.List(ctx, slug)
}

func (s *snapshotService) Get(ctx context.Context, id string) (*domain.Snapshot, error) {
	return s.snapshots.GetByID(ctx, id)
}

// Delete accepts an ID prefix; it is resolved and removed in one
// transaction.
func (s *snapshotService) Delete(ctx context.Context, id string) (err error) {
	fields := map[string]any{"id": id}
	done := observe(ctx, s.observer, "delete-snapshot", fields)
	defer func() { done(err) }()

	return s.uow.WithinTx(ctx, func(ctx context.Context, tx db.DBTX) error {
		repo := repository.NewSQLiteSnapshotRepo(tx)
		snap, err := repo.GetByID(ctx, id)
		if err != nil {
			return err
		}
		fields["id"] = snap.ID
		return repo.Delete(ctx, snap.ID)
	})
}
