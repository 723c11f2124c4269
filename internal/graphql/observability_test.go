package graphql

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLogObserver_WritesStructuredLine(t *testing.T) {
	var buf bytes.Buffer
	obs := NewLogObserver(slog.New(slog.NewTextHandler(&buf, nil)))

	obs.OnCallComplete(CallEvent{Operation: "Timesheet", LatencyMs: 12, Attempts: 1, Success: true})
	obs.OnCallComplete(CallEvent{Operation: "Timesheet", Attempts: 2, ErrorCode: "TIMEOUT"})

	out := buf.String()
	assert.Contains(t, out, "level=INFO msg=graphql_call operation=Timesheet latency_ms=12 attempts=1 status=ok")
	assert.Contains(t, out, "level=WARN msg=graphql_call operation=Timesheet latency_ms=0 attempts=2 status=err:TIMEOUT")
}
