package graphql

import (
	"context"
	"encoding/json"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alexanderramin/tally/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const timesheetBody = `{"data":{"timesheet":{
  "summary":{"totalHours":10,"totalConsultingHours":8,"totalHandsOnHours":2,"totalSquadHours":0,"totalInternalHours":0,
             "uniqueClients":1,"uniqueSponsors":1,"uniqueCases":2,"uniqueWorkers":2,"uniqueAccountManagers":1},
  "byCase":[
    {"title":"A","caseDetails":{"sponsor":"Bob","client":{"name":"Acme","accountManager":{"name":"Mgr1"}}},
     "byWorker":[{"worker":"W1","totalConsultingHours":5,"totalHandsOnHours":2,"totalSquadHours":0,"totalInternalHours":0}]},
    {"title":"B","caseDetails":{"sponsor":"Bob","client":{"name":"Acme","accountManager":{"name":"Mgr1"}}},
     "byWorker":[{"worker":"W2","totalConsultingHours":"3","totalHandsOnHours":0,"totalSquadHours":0,"totalInternalHours":0}]}
  ]}}}`

func timesheetServer(t *testing.T, body string, check func(req Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if check != nil {
			check(req)
		}
		writeJSON(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchTimesheet_DecodesRecords(t *testing.T) {
	srv := timesheetServer(t, timesheetBody, func(req Request) {
		assert.Equal(t, "Timesheet", req.OperationName)
		assert.Equal(t, TimesheetDocument, req.Query)
		assert.Equal(t, "acme-2024", req.Variables["slug"])
	})

	api := NewTimesheetAPI(NewClient(testConfig(srv.URL), nil))
	res, err := api.FetchTimesheet(context.Background(), TimesheetQuery{Slug: "acme-2024"})
	require.NoError(t, err)

	assert.Equal(t, "acme-2024", res.Slug)
	assert.Empty(t, res.Warnings)
	assert.Equal(t, 8.0, res.Summary.TotalConsultingHours)
	assert.Equal(t, 2, res.Summary.UniqueCases)

	require.Len(t, res.Records, 2)
	a := res.Records[0]
	assert.Equal(t, "A", a.Title)
	assert.Equal(t, "Acme", a.ClientName)
	assert.Equal(t, "Bob", a.SponsorName)
	assert.Equal(t, "Mgr1", a.AccountManagerName)
	assert.Equal(t, []domain.WorkerHours{{WorkerName: "W1", ConsultingHours: 5, HandsOnHours: 2}}, a.PerWorkerHours)
	assert.Equal(t, 3.0, res.Records[1].HoursFor(domain.HoursConsulting), "numeric strings accepted")
}

func TestTimesheetQuery_Variables(t *testing.T) {
	r, err := domain.ParseDateRange("2024-01-01", "31-01-2024")
	require.NoError(t, err)
	q := TimesheetQuery{
		Slug:    "acme",
		Filters: []domain.Filter{{Field: "Client", SelectedValues: []string{"Acme"}}},
		Range:   r,
	}

	raw, err := json.Marshal(q.Variables())
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"slug":"acme",
		"filters":[{"field":"Client","selectedValues":["Acme"]}],
		"dateStart":"01-01-2024",
		"dateEnd":"31-01-2024"
	}`, string(raw))

	open := TimesheetQuery{Slug: "acme"}.Variables()
	assert.Equal(t, map[string]any{"slug": "acme"}, open)
}

func TestFetchTimesheet_PartialDataBecomesWarnings(t *testing.T) {
	body := `{"data":{"timesheet":{
	  "byCase":[
	    {"title":"Broken","caseDetails":{"sponsor":"Bob","client":{"name":"Acme","accountManager":{"name":"Mgr1"}}},"byWorker":"oops"},
	    {"title":"NoDetails","byWorker":[{"worker":"W1","totalConsultingHours":2}]},
	    {"title":"Odd","caseDetails":{"sponsor":"Eve","client":{"name":"Globex"}},
	     "byWorker":[{"worker":"W2","totalConsultingHours":"lots","totalHandsOnHours":1,"totalSquadHours":null,"totalInternalHours":0}]},
	    {"title":"Nothing","caseDetails":{"sponsor":"Eve","client":{"name":"Globex","accountManager":{"name":"Mgr2"}}}}
	  ]}},
	  "errors":[{"message":"summary unavailable","path":["timesheet","summary"]}]}`
	srv := timesheetServer(t, body, nil)

	res, err := NewTimesheetAPI(NewClient(testConfig(srv.URL), nil)).
		FetchTimesheet(context.Background(), TimesheetQuery{Slug: "acme"})
	require.NoError(t, err)

	require.Len(t, res.Records, 4)
	assert.Empty(t, res.Records[0].PerWorkerHours, "malformed byWorker contributes nothing")
	assert.Equal(t, "", res.Records[1].ClientName)
	assert.Equal(t, 2.0, res.Records[1].HoursFor(domain.HoursConsulting))
	assert.True(t, math.IsNaN(res.Records[2].PerWorkerHours[0].ConsultingHours))
	assert.Equal(t, 0.0, res.Records[2].HoursFor(domain.HoursConsulting))
	assert.Empty(t, res.Records[3].PerWorkerHours)

	assert.Equal(t, []string{
		"server: timesheet.summary: summary unavailable",
		"summary missing from response",
		`case "Broken": byWorker is not a list of workers (counted as 0 hours)`,
		"cases without caseDetails (client, sponsor and manager left blank)",
		"worker entries without totalHandsOnHours (treated as 0)",
		"2 worker entries without totalSquadHours (treated as 0)",
		"worker entries without totalInternalHours (treated as 0)",
		"cases without an account manager",
		"worker entries with non-numeric totalConsultingHours",
		"cases without byWorker (counted as 0 hours)",
	}, res.Warnings)
}

func TestFetchTimesheet_RepeatedWarningsCounted(t *testing.T) {
	body := `{"data":{"timesheet":{"summary":{},"byCase":[
	  {"title":"A","caseDetails":{"sponsor":"S","client":{"name":"C","accountManager":{"name":"M"}}},"byWorker":[{"worker":"W1","totalConsultingHours":1,"totalHandsOnHours":0,"totalInternalHours":0}]},
	  {"title":"B","caseDetails":{"sponsor":"S","client":{"name":"C","accountManager":{"name":"M"}}},"byWorker":[{"worker":"W2","totalConsultingHours":1,"totalHandsOnHours":0,"totalInternalHours":0}]}
	]}}}`
	srv := timesheetServer(t, body, nil)

	res, err := NewTimesheetAPI(NewClient(testConfig(srv.URL), nil)).
		FetchTimesheet(context.Background(), TimesheetQuery{Slug: "acme"})
	require.NoError(t, err)
	assert.Equal(t, []string{"2 worker entries without totalSquadHours (treated as 0)"}, res.Warnings)
}

func TestFetchTimesheet_NullTimesheet(t *testing.T) {
	srv := timesheetServer(t, `{"data":{"timesheet":null}}`, nil)
	res, err := NewTimesheetAPI(NewClient(testConfig(srv.URL), nil)).
		FetchTimesheet(context.Background(), TimesheetQuery{Slug: "acme"})
	require.NoError(t, err)
	assert.Empty(t, res.Records)
	assert.Equal(t, []string{"timesheet missing from response; showing no data"}, res.Warnings)
}

func TestFetchTimesheet_HardErrors(t *testing.T) {
	srv := timesheetServer(t, `{"data":null,"errors":[{"message":"unknown slug"}]}`, nil)
	api := NewTimesheetAPI(NewClient(testConfig(srv.URL), nil))

	_, err := api.FetchTimesheet(context.Background(), TimesheetQuery{Slug: "nope"})
	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.Contains(t, err.Error(), `fetching timesheet "nope"`)

	_, err = api.FetchTimesheet(context.Background(), TimesheetQuery{})
	assert.ErrorContains(t, err, "slug is required")
}
