package cli

import (
	"context"
	"testing"

	"github.com/alexanderramin/tally/internal/contract"
	"github.com/alexanderramin/tally/internal/teatest"
)

// TestDriver wraps teatest.Driver with access to the browser's rows and
// expand state.
type TestDriver struct {
	*teatest.Driver
}

// NewTestDriver builds a browser for req, sizes it and drains the
// initial load.
func NewTestDriver(t *testing.T, app *App, req contract.ReportRequest) *TestDriver {
	t.Helper()
	m := newBrowseModel(context.Background(), app, req)
	d := teatest.New(t, m, teatest.WithSize(120, 40))
	d.DrainInit()
	return &TestDriver{Driver: d}
}

func (d *TestDriver) browser() *browseModel {
	return d.Model.(*browseModel)
}

// Rows returns the keys of the visible rows, top to bottom.
func (d *TestDriver) Rows() []string {
	rows := d.browser().rows
	keys := make([]string, len(rows))
	for i, r := range rows {
		keys[i] = r.node.Key
	}
	return keys
}

// CursorKey returns the key of the highlighted row.
func (d *TestDriver) CursorKey() string {
	m := d.browser()
	if m.cursor >= len(m.rows) {
		return ""
	}
	return m.rows[m.cursor].node.Key
}

// MoveTo presses down until the cursor sits on key.
func (d *TestDriver) MoveTo(key string) {
	d.T.Helper()
	for range len(d.browser().rows) {
		if d.CursorKey() == key {
			return
		}
		d.PressDown()
	}
	if d.CursorKey() != key {
		d.T.Fatalf("row %q not visible in %v", key, d.Rows())
	}
}
