package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alexanderramin/tally/internal/aggregate"
	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/domain"
	"github.com/alexanderramin/tally/internal/graphql"
	"github.com/alexanderramin/tally/internal/repository"
	"github.com/alexanderramin/tally/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rootKeys(nodes []*aggregate.Node) []string {
	keys := make([]string, len(nodes))
	for i, n := range nodes {
		keys[i] = n.Key
	}
	return keys
}

func TestBuild_LiveSingleSlug(t *testing.T) {
	f := newFixture(t)
	res := sampleResult("summary missing from response")
	f.fetcher.Set("acme", res)

	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)
	req := contract.NewReportRequest("acme")
	req.Now = &now
	resp, err := f.reports.Build(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, contract.SourceLive, resp.Source)
	assert.Equal(t, []string{"acme"}, resp.Slugs)
	assert.Equal(t, now, resp.GeneratedAt)
	assert.Equal(t, []string{"Mgr1", "Mgr2"}, rootKeys(resp.Roots))
	assert.Equal(t, 10.0, resp.Roots[0].TotalHours)
	assert.Equal(t, 4.0, resp.Roots[1].TotalHours)
	assert.Equal(t, 14.0, resp.TotalHours)
	assert.Equal(t, res.Summary, resp.Summary)
	assert.Len(t, resp.Records, 4)
	assert.Equal(t, []string{"summary missing from response"}, resp.Warnings)
	assert.False(t, resp.Empty())
}

func TestBuild_FieldSwitchChangesTotals(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Set("acme", sampleResult())

	req := contract.NewReportRequest("acme")
	req.Field = domain.HoursInternal
	resp, err := f.reports.Build(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, []string{"Mgr2", "Mgr1"}, rootKeys(resp.Roots))
	assert.Equal(t, 7.0, resp.TotalHours)
}

func TestBuild_EmptyCategory(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Set("acme", &graphql.TimesheetResult{Records: []domain.CaseTimeRecord{
		testutil.NewTestRecord("A", "Acme", "Bob", "Mgr1", testutil.WithConsulting("Ana", 3)),
	}})

	req := contract.NewReportRequest("acme")
	req.Field = domain.HoursSquad
	resp, err := f.reports.Build(context.Background(), req)
	require.NoError(t, err)
	assert.True(t, resp.Empty())
	assert.Zero(t, resp.TotalHours)
}

func TestBuild_MultipleSlugs(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Set("acme", sampleResult("cases without an account manager"))
	f.fetcher.Set("globex", &graphql.TimesheetResult{
		Records: []domain.CaseTimeRecord{
			testutil.NewTestRecord("Audit", "Acme", "Bob", "Mgr1", testutil.WithConsulting("Zed", 1)),
		},
		Summary:  domain.TimesheetSummary{UniqueClients: 99},
		Warnings: []string{"summary missing from response"},
	})

	resp, err := f.reports.Build(context.Background(), contract.NewReportRequest("globex", "acme"))
	require.NoError(t, err)

	assert.Equal(t, []string{"globex", "acme"}, resp.Slugs)
	require.Len(t, resp.Records, 5)
	assert.Equal(t, "Zed", resp.Records[0].PerWorkerHours[0].WorkerName, "records follow slug order")
	assert.Equal(t, []string{
		"globex: summary missing from response",
		"acme: cases without an account manager",
	}, resp.Warnings)
	assert.Equal(t, 3, resp.Summary.UniqueClients, "distinct counts recomputed across slugs")
	assert.Equal(t, 15.0, resp.TotalHours)
}

func TestBuild_DuplicateSlugsFetchedOnce(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Set("acme", sampleResult())

	resp, err := f.reports.Build(context.Background(), contract.NewReportRequest("acme", "", "acme"))
	require.NoError(t, err)
	assert.Equal(t, 1, f.fetcher.Calls())
	assert.Equal(t, []string{"acme"}, resp.Slugs)
	assert.Equal(t, 14.0, resp.TotalHours)
}

func TestBuild_PassesFiltersAndRange(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Set("acme", sampleResult())

	rng, err := domain.ParseDateRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	req := contract.NewReportRequest("acme")
	req.Filters = []domain.Filter{{Field: "client", SelectedValues: []string{"Acme"}}}
	req.Range = rng

	_, err = f.reports.Build(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, f.fetcher.Queries, 1)
	assert.Equal(t, req.Filters, f.fetcher.Queries[0].Filters)
	assert.Equal(t, rng, f.fetcher.Queries[0].Range)
}

func TestBuild_NoSource(t *testing.T) {
	f := newFixture(t)

	_, err := f.reports.Build(context.Background(), contract.NewReportRequest())
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = f.reports.Build(context.Background(), contract.NewReportRequest("", ""))
	assert.ErrorIs(t, err, ErrNoSource)
}

func TestBuild_InvalidOptions(t *testing.T) {
	f := newFixture(t)

	cases := []struct {
		name   string
		mutate func(*contract.ReportRequest)
		code   contract.ReportErrorCode
	}{
		{"field", func(r *contract.ReportRequest) { r.Field = "overtime" }, contract.ReportErrInvalidField},
		{"hierarchy", func(r *contract.ReportRequest) { r.Hierarchy = "region" }, contract.ReportErrInvalidView},
		{"sort", func(r *contract.ReportRequest) { r.SortBy = "size" }, contract.ReportErrInvalidSort},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := contract.NewReportRequest("acme")
			tc.mutate(&req)
			_, err := f.reports.Build(context.Background(), req)
			var rerr *contract.ReportError
			require.ErrorAs(t, err, &rerr)
			assert.Equal(t, tc.code, rerr.Code)
		})
	}
	assert.Zero(t, f.fetcher.Calls(), "validation happens before fetching")
}

func TestBuild_FetchErrorPropagates(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Set("acme", sampleResult())
	f.fetcher.Fail("globex", graphql.ErrTimeout)

	_, err := f.reports.Build(context.Background(), contract.NewReportRequest("acme", "globex"))
	assert.ErrorIs(t, err, graphql.ErrTimeout)
	assert.False(t, f.observer.last().Success)
}

func TestBuild_StrictRejectsNegativeHours(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Set("acme", &graphql.TimesheetResult{Records: []domain.CaseTimeRecord{
		testutil.NewTestRecord("A", "Acme", "Bob", "Mgr1", testutil.WithConsulting("Ana", -2)),
		testutil.NewTestRecord("B", "Acme", "Bob", "Mgr1", testutil.WithConsulting("Ana", 5)),
	}})

	req := contract.NewReportRequest("acme")
	_, err := f.reports.Build(context.Background(), req)
	require.NoError(t, err, "lenient mode accepts the data")

	req.Strict = true
	_, err = f.reports.Build(context.Background(), req)
	assert.ErrorIs(t, err, domain.ErrInvalidHours)
}

func TestBuild_SortByClients(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Set("acme", sampleResult())

	req := contract.NewReportRequest("acme")
	req.SortBy = aggregate.SortClients
	resp, err := f.reports.Build(context.Background(), req)
	require.NoError(t, err)

	// Both managers have one client with consulting hours; ties keep
	// first-seen order.
	assert.Equal(t, []string{"Mgr1", "Mgr2"}, rootKeys(resp.Roots))
	assert.Equal(t, 1, resp.Roots[0].UniqueClients())
}

func TestBuild_FromSnapshot(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Set("acme", sampleResult())

	saved, err := f.saves.Save(context.Background(), contract.SnapshotRequest{Slug: "acme"})
	require.NoError(t, err)
	f.fetcher.Fail("acme", graphql.ErrUnavailable)

	req := contract.NewReportRequest("acme")
	req.SnapshotID = saved.Snapshot.ShortID()
	resp, err := f.reports.Build(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, contract.SourceSnapshot, resp.Source)
	assert.Equal(t, saved.Snapshot.ID, resp.SnapshotID)
	assert.Equal(t, []string{"acme"}, resp.Slugs)
	assert.Equal(t, 14.0, resp.TotalHours)
	assert.Equal(t, saved.Snapshot.Summary, resp.Summary)
	assert.Equal(t, 1, f.fetcher.Calls(), "snapshot reports never fetch")
}

func TestBuild_SnapshotNotFound(t *testing.T) {
	f := newFixture(t)

	req := contract.NewReportRequest()
	req.SnapshotID = "deadbeef"
	_, err := f.reports.Build(context.Background(), req)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestBuild_ObservesUseCase(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Set("acme", sampleResult("w1"))

	_, err := f.reports.Build(context.Background(), contract.NewReportRequest("acme"))
	require.NoError(t, err)

	ev := f.observer.last()
	assert.Equal(t, "build-report", ev.Name)
	assert.True(t, ev.Success)
	assert.Equal(t, 4, ev.Fields["records"])
	assert.Equal(t, 2, ev.Fields["roots"])
	assert.Equal(t, 1, ev.Fields["warnings"])
	assert.Equal(t, "consulting", ev.Fields["field"])
}

func TestBuild_CanceledContext(t *testing.T) {
	f := newFixture(t)
	f.fetcher.Set("acme", sampleResult())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := f.reports.Build(ctx, contract.NewReportRequest("acme"))
	assert.True(t, errors.Is(err, context.Canceled))
}
