package testutil

import (
	"context"
	"fmt"
	"sync"

	"github.com/alexanderramin/tally/internal/graphql"
)

// FakeFetcher is an in-memory graphql.TimesheetFetcher keyed by slug.
// Unknown slugs return graphql.ErrNoData.
type FakeFetcher struct {
	mu      sync.Mutex
	Results map[string]*graphql.TimesheetResult
	Errs    map[string]error
	Queries []graphql.TimesheetQuery
}

func NewFakeFetcher() *FakeFetcher {
	return &FakeFetcher{
		Results: map[string]*graphql.TimesheetResult{},
		Errs:    map[string]error{},
	}
}

// Set registers the result for slug and returns f for chaining.
func (f *FakeFetcher) Set(slug string, res *graphql.TimesheetResult) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	res.Slug = slug
	f.Results[slug] = res
	return f
}

func (f *FakeFetcher) Fail(slug string, err error) *FakeFetcher {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errs[slug] = err
	return f
}

func (f *FakeFetcher) FetchTimesheet(ctx context.Context, q graphql.TimesheetQuery) (*graphql.TimesheetResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Queries = append(f.Queries, q)
	if err, ok := f.Errs[q.Slug]; ok {
		return nil, fmt.Errorf("fetching timesheet %q: %w", q.Slug, err)
	}
	res, ok := f.Results[q.Slug]
	if !ok {
		return nil, fmt.Errorf("fetching timesheet %q: %w", q.Slug, graphql.ErrNoData)
	}
	cp := *res
	return &cp, nil
}

// Calls reports how many fetches were made.
func (f *FakeFetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Queries)
}
