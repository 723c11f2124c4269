package service

import (
	"context"

	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
)

type ReportService interface {
	Build(ctx context.Context, req contract.ReportRequest) (*contract.ReportResponse, error)
}

type SnapshotService interface {
	Save(ctx context.Context, req contract.SnapshotRequest) (*contract.SnapshotResponse, error)
	List(ctx context.Context, slug string) ([]*domain.Snapshot, error)
	Get(ctx context.Context, id string) (*domain.Snapshot, error)
	Delete(ctx context.Context, id string) error
}
