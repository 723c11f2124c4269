package graphql

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/alexanderramin/tally/internal/domain"
)

// TimesheetQuery selects a dataset, optional filters and a date range.
type TimesheetQuery struct {
	Slug    string
	Filters []domain.Filter
	Range   domain.DateRange
}

// TimesheetResult is a decoded timesheet. Warnings describe data the
// server left out or sent malformed; affected values count as zero.
type TimesheetResult struct {
	Slug     string
	Records  []domain.CaseTimeRecord
	Summary  domain.TimesheetSummary
	Warnings []string
}

// TimesheetFetcher loads timesheets.
type TimesheetFetcher interface {
	FetchTimesheet(ctx context.Context, q TimesheetQuery) (*TimesheetResult, error)
}

// TimesheetAPI implements TimesheetFetcher over a Client.
type TimesheetAPI struct {
	client Client
}

func NewTimesheetAPI(client Client) *TimesheetAPI {
	return &TimesheetAPI{client: client}
}

type filterInput struct {
	Field          string   `json:"field"`
	SelectedValues []string `json:"selectedValues"`
}

type timesheetData struct {
	Timesheet *wireTimesheet `json:"timesheet"`
}

type wireTimesheet struct {
	Summary *wireSummary `json:"summary"`
	ByCase  []wireCase   `json:"byCase"`
}

type wireSummary struct {
	TotalHours            float64 `json:"totalHours"`
	TotalConsultingHours  float64 `json:"totalConsultingHours"`
	TotalHandsOnHours     float64 `json:"totalHandsOnHours"`
	TotalSquadHours       float64 `json:"totalSquadHours"`
	TotalInternalHours    float64 `json:"totalInternalHours"`
	UniqueClients         int     `json:"uniqueClients"`
	UniqueSponsors        int     `json:"uniqueSponsors"`
	UniqueCases           int     `json:"uniqueCases"`
	UniqueWorkers         int     `json:"uniqueWorkers"`
	UniqueAccountManagers int     `json:"uniqueAccountManagers"`
}

type wireCase struct {
	Title       string `json:"title"`
	CaseDetails *struct {
		Sponsor string `json:"sponsor"`
		Client  *struct {
			Name           string `json:"name"`
			AccountManager *struct {
				Name string `json:"name"`
			} `json:"accountManager"`
		} `json:"client"`
	} `json:"caseDetails"`
	// Kept raw so a malformed list only drops this case.
	ByWorker json.RawMessage `json:"byWorker"`
}

type wireWorker struct {
	Worker               string     `json:"worker"`
	TotalConsultingHours hoursValue `json:"totalConsultingHours"`
	TotalHandsOnHours    hoursValue `json:"totalHandsOnHours"`
	TotalSquadHours      hoursValue `json:"totalSquadHours"`
	TotalInternalHours   hoursValue `json:"totalInternalHours"`
}

// Variables builds the operation variables for q.
func (q TimesheetQuery) Variables() map[string]any {
	vars := map[string]any{"slug": q.Slug}
	if len(q.Filters) > 0 {
		filters := make([]filterInput, len(q.Filters))
		for i, f := range q.Filters {
			filters[i] = filterInput{Field: f.Field, SelectedValues: f.SelectedValues}
		}
		vars["filters"] = filters
	}
	start, end := q.Range.Format(domain.DateLayoutDMY)
	if start != "" {
		vars["dateStart"] = start
	}
	if end != "" {
		vars["dateEnd"] = end
	}
	return vars
}

func (a *TimesheetAPI) FetchTimesheet(ctx context.Context, q TimesheetQuery) (*TimesheetResult, error) {
	if q.Slug == "" {
		return nil, errors.New("timesheet query: slug is required")
	}

	var data timesheetData
	err := a.client.Do(ctx, Request{
		OperationName: "Timesheet",
		Query:         TimesheetDocument,
		Variables:     q.Variables(),
	}, &data)

	var partial []string
	if err != nil {
		if !IsPartial(err) {
			return nil, fmt.Errorf("fetching timesheet %q: %w", q.Slug, err)
		}
		var re *ResponseError
		errors.As(err, &re)
		for _, ge := range re.Errors {
			partial = append(partial, "server: "+ge.String())
		}
	}

	result := decodeTimesheet(data.Timesheet)
	result.Slug = q.Slug
	result.Warnings = append(partial, result.Warnings...)
	return result, nil
}

func decodeTimesheet(ts *wireTimesheet) *TimesheetResult {
	w := &warnings{}
	result := &TimesheetResult{}
	if ts == nil {
		w.add("timesheet missing from response; showing no data")
		result.Warnings = w.list()
		return result
	}

	if ts.Summary == nil {
		w.add("summary missing from response")
	} else {
		s := ts.Summary
		result.Summary = domain.TimesheetSummary{
			TotalHours:            s.TotalHours,
			TotalConsultingHours:  s.TotalConsultingHours,
			TotalHandsOnHours:     s.TotalHandsOnHours,
			TotalSquadHours:       s.TotalSquadHours,
			TotalInternalHours:    s.TotalInternalHours,
			UniqueClients:         s.UniqueClients,
			UniqueSponsors:        s.UniqueSponsors,
			UniqueCases:           s.UniqueCases,
			UniqueWorkers:         s.UniqueWorkers,
			UniqueAccountManagers: s.UniqueAccountManagers,
		}
	}

	result.Records = make([]domain.CaseTimeRecord, 0, len(ts.ByCase))
	for _, c := range ts.ByCase {
		result.Records = append(result.Records, decodeCase(c, w))
	}
	result.Warnings = w.list()
	return result
}

func decodeCase(c wireCase, w *warnings) domain.CaseTimeRecord {
	rec := domain.CaseTimeRecord{Title: c.Title}
	if c.CaseDetails == nil {
		w.add("cases without caseDetails (client, sponsor and manager left blank)")
	} else {
		rec.SponsorName = c.CaseDetails.Sponsor
		if cl := c.CaseDetails.Client; cl != nil {
			rec.ClientName = cl.Name
			if cl.AccountManager != nil {
				rec.AccountManagerName = cl.AccountManager.Name
			}
		}
		if rec.AccountManagerName == "" {
			w.add("cases without an account manager")
		}
	}

	if len(c.ByWorker) == 0 || string(c.ByWorker) == "null" {
		w.add("cases without byWorker (counted as 0 hours)")
		return rec
	}
	var workers []wireWorker
	if err := json.Unmarshal(c.ByWorker, &workers); err != nil {
		w.add(fmt.Sprintf("case %q: byWorker is not a list of workers (counted as 0 hours)", c.Title))
		return rec
	}

	rec.PerWorkerHours = make([]domain.WorkerHours, 0, len(workers))
	for _, wk := range workers {
		rec.PerWorkerHours = append(rec.PerWorkerHours, domain.WorkerHours{
			WorkerName:      wk.Worker,
			ConsultingHours: hours(wk.TotalConsultingHours, "totalConsultingHours", w),
			HandsOnHours:    hours(wk.TotalHandsOnHours, "totalHandsOnHours", w),
			SquadHours:      hours(wk.TotalSquadHours, "totalSquadHours", w),
			InternalHours:   hours(wk.TotalInternalHours, "totalInternalHours", w),
		})
	}
	return rec
}

func hours(h hoursValue, field string, w *warnings) float64 {
	switch {
	case !h.present:
		w.add("worker entries without " + field + " (treated as 0)")
		return 0
	case !h.valid:
		w.add("worker entries with non-numeric " + field)
		return h.value
	default:
		return h.value
	}
}

// warnings counts repeated messages and keeps first-seen order.
type warnings struct {
	order  []string
	counts map[string]int
}

func (w *warnings) add(msg string) {
	if w.counts == nil {
		w.counts = make(map[string]int)
	}
	if w.counts[msg] == 0 {
		w.order = append(w.order, msg)
	}
	w.counts[msg]++
}

func (w *warnings) list() []string {
	out := make([]string, 0, len(w.order))
	for _, msg := range w.order {
		if n := w.counts[msg]; n > 1 {
			out = append(out, fmt.Sprintf("%d %s", n, msg))
			continue
		}
		out = append(out, msg)
	}
	return out
}
