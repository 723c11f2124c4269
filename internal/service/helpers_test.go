package service

import (
	"context"
	"sync"
	"testing"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/graphql"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/alexanderramin/tally/internal/testutil"
)

type recordingObserver struct {
	mu     sync.Mutex
	events []UseCaseEvent
}

func (o *recordingObserver) ObserveUseCase(_ context.Context, e UseCaseEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() UseCaseEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

type fixture struct {
	fetcher   *testutil.FakeFetcher
	snapshots *repository.SQLiteSnapshotRepo
	observer  *recordingObserver
	reports   ReportService
	saves     SnapshotService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	database := testutil.NewTestDB(t)
	f := &fixture{
		fetcher:   testutil.NewFakeFetcher(),
		snapshots: repository.NewSQLiteSnapshotRepo(database),
		observer:  &recordingObserver{},
	}
	f.reports = NewReportService(f.fetcher, f.snapshots, f.observer)
	f.saves = NewSnapshotService(f.fetcher, f.snapshots, testutil.NewTestUoW(database), f.observer)
	return f
}

func sampleResult(warnings ...string) *graphql.TimesheetResult {
	records := testutil.SampleRecords()
	return &graphql.TimesheetResult{
		Records:  records,
		Summary:  domain.Summarize(records),
		Warnings: warnings,
	}
}
