package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/alexanderramin/tally/internal/aggregate"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/graphql"
	"github.com/alexanderramin/tally/internal/repository"
	"golang.org/x/sync/errgroup"
)

// ErrNoSource is returned when a request names neither a slug nor a
// snapshot.
var ErrNoSource = errors.New("no slug or snapshot given")

// maxConcurrentFetches bounds parallel slug fetches.
const maxConcurrentFetches = 4

type reportService struct {
	fetcher   graphql.TimesheetFetcher
	snapshots repository.SnapshotRepo
	observer  UseCaseObserver
}

func NewReportService(
	fetcher graphql.TimesheetFetcher,
	snapshots repository.SnapshotRepo,
	observers ...UseCaseObserver,
) ReportService {
	return &reportService{
		fetcher:   fetcher,
		snapshots: snapshots,
		observer:  useCaseObserverOrNoop(observers),
	}
}

// loaded is the record set a report is folded from.
type loaded struct {
	source     contract.ReportSource
	slugs      []string
	snapshotID string
	records    []domain.CaseTimeRecord
	summary    domain.TimesheetSummary
	warnings   []string
}

func (s *reportService) Build(ctx context.Context, req contract.ReportRequest) (resp *contract.ReportResponse, err error) {
	fields := map[string]any{
		"field":     string(req.Field),
		"hierarchy": string(req.Hierarchy),
		"sort":      string(req.SortBy),
		"strict":    req.Strict,
	}
	done := observe(ctx, s.observer, "build-report", fields)
	defer func() { done(err) }()

	if err = validateReportRequest(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if req.Now != nil {
		now = *req.Now
	}

	var src *loaded
	switch {
	case req.SnapshotID != "":
		fields["snapshot"] = req.SnapshotID
		src, err = s.loadSnapshot(ctx, req.SnapshotID)
	case len(dedupe(req.Slugs)) > 0:
		fields["slugs"] = len(req.Slugs)
		src, err = s.fetchAll(ctx, req)
	default:
		err = ErrNoSource
	}
	if err != nil {
		return nil, err
	}

	var roots []*aggregate.Node
	if req.Strict {
		roots, err = aggregate.AggregateStrict(src.records, req.Field, req.Hierarchy)
		if err != nil {
			return nil, err
		}
	} else {
		roots = aggregate.Aggregate(src.records, req.Field, req.Hierarchy)
	}
	roots = aggregate.SortTree(roots, req.SortBy)

	fields["records"] = len(src.records)
	fields["roots"] = len(roots)
	fields["warnings"] = len(src.warnings)

	return &contract.ReportResponse{
		GeneratedAt: now,
		Source:      src.source,
		Slugs:       src.slugs,
		SnapshotID:  src.snapshotID,
		Field:       req.Field,
		Hierarchy:   req.Hierarchy,
		SortBy:      req.SortBy,
		Roots:       roots,
		TotalHours:  aggregate.TotalHours(roots),
		Summary:     src.summary,
		Records:     src.records,
		Warnings:    src.warnings,
	}, nil
}

func validateReportRequest(req contract.ReportRequest) error {
	if !slices.Contains(domain.AllHoursFields(), req.Field) {
		return &contract.ReportError{Code: contract.ReportErrInvalidField, Message: fmt.Sprintf("unknown hours field %q", req.Field)}
	}
	if !slices.Contains(aggregate.AllHierarchies(), req.Hierarchy) {
		return &contract.ReportError{Code: contract.ReportErrInvalidView, Message: fmt.Sprintf("unknown hierarchy %q", req.Hierarchy)}
	}
	if !slices.Contains(aggregate.AllSortColumns(), req.SortBy) {
		return &contract.ReportError{Code: contract.ReportErrInvalidSort, Message: fmt.Sprintf("unknown sort column %q", req.SortBy)}
	}
	return nil
}

func (s *reportService) loadSnapshot(ctx context.Context, id string) (*loaded, error) {
	if s.snapshots == nil {
		return nil, fmt.Errorf("loading snapshot %s: snapshot store not configured", id)
	}
	snap, err := s.snapshots.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot: %w", err)
	}
	records, err := s.snapshots.LoadRecords(ctx, snap.ID)
	if err != nil {
		return nil, fmt.Errorf("loading snapshot records: %w", err)
	}
	return &loaded{
		source:     contract.SourceSnapshot,
		slugs:      []string{snap.Slug},
		snapshotID: snap.ID,
		records:    records,
		summary:    snap.Summary,
	}, nil
}

// fetchAll fetches every slug concurrently and concatenates the records
// in slug order. Any failure cancels the rest.
func (s *reportService) fetchAll(ctx context.Context, req contract.ReportRequest) (*loaded, error) {
	slugs := dedupe(req.Slugs)
	results := make([]*graphql.TimesheetResult, len(slugs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentFetches)
	for i, slug := range slugs {
		g.Go(func() error {
			res, err := s.fetcher.FetchTimesheet(gctx, graphql.TimesheetQuery{
				Slug:    slug,
				Filters: req.Filters,
				Range:   req.Range,
			})
			if err != nil {
				return err
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &loaded{source: contract.SourceLive, slugs: slugs}
	for i, res := range results {
		out.records = append(out.records, res.Records...)
		for _, w := range res.Warnings {
			if len(slugs) > 1 {
				w = slugs[i] + ": " + w
			}
			out.warnings = append(out.warnings, w)
		}
	}
	if len(results) == 1 {
		out.summary = results[0].Summary
	} else {
		// Per-slug distinct counts overlap, so recount from records.
		out.summary = domain.Summarize(out.records)
	}
	return out, nil
}

func dedupe(slugs []string) []string {
	seen := make(map[string]struct{}, len(slugs))
	out := make([]string, 0, len(slugs))
	for _, s := range slugs {
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
