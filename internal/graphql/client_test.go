package graphql

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(endpoint string) Config {
	cfg := DefaultConfig()
	cfg.Endpoint = endpoint
	cfg.TimeoutMs = 2000
	return cfg
}

type recordingObserver struct {
	mu     sync.Mutex
	events []CallEvent
}

func (o *recordingObserver) OnCallComplete(e CallEvent) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.events = append(o.events, e)
}

func (o *recordingObserver) last() CallEvent {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.events[len(o.events)-1]
}

func writeJSON(w http.ResponseWriter, body string) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(body))
}

func TestClient_Do_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Empty(t, r.Header.Get("Authorization"))

		var req Request
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "Ping", req.OperationName)
		assert.Equal(t, "query Ping { ping }", req.Query)
		assert.Equal(t, "acme", req.Variables["slug"])

		writeJSON(w, `{"data":{"ping":"pong"}}`)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client := NewClient(testConfig(srv.URL), obs)

	var out struct {
		Ping string `json:"ping"`
	}
	err := client.Do(context.Background(), Request{
		OperationName: "Ping",
		Query:         "query Ping { ping }",
		Variables:     map[string]any{"slug": "acme"},
	}, &out)

	require.NoError(t, err)
	assert.Equal(t, "pong", out.Ping)
	ev := obs.last()
	assert.True(t, ev.Success)
	assert.Equal(t, "Ping", ev.Operation)
	assert.Equal(t, 1, ev.Attempts)
}

func TestClient_Do_SendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer s3cret", r.Header.Get("Authorization"))
		writeJSON(w, `{"data":{}}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Token = "s3cret"
	client := NewClient(cfg, nil)

	require.NoError(t, client.Do(context.Background(), Request{Query: "{}"}, nil))
}

func TestClient_Do_GraphQLErrorsWithoutData(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":null,"errors":[{"message":"unknown slug","path":["timesheet"]}]}`)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client := NewClient(testConfig(srv.URL), obs)
	err := client.Do(context.Background(), Request{Query: "{}"}, &struct{}{})

	var re *ResponseError
	require.ErrorAs(t, err, &re)
	assert.False(t, re.Partial)
	assert.False(t, IsPartial(err))
	assert.Contains(t, err.Error(), "timesheet: unknown slug")
	assert.Equal(t, "GRAPHQL", obs.last().ErrorCode)
}

func TestClient_Do_PartialDataStillDecoded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":{"ping":"pong"},"errors":[{"message":"summary resolver failed"}]}`)
	}))
	defer srv.Close()

	obs := &recordingObserver{}
	client := NewClient(testConfig(srv.URL), obs)
	var out struct {
		Ping string `json:"ping"`
	}
	err := client.Do(context.Background(), Request{Query: "{}"}, &out)

	assert.True(t, IsPartial(err))
	assert.Equal(t, "pong", out.Ping)
	assert.True(t, obs.last().Success)
	assert.Equal(t, "PARTIAL", obs.last().ErrorCode)
}

func TestClient_Do_EmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{}`)
	}))
	defer srv.Close()

	err := NewClient(testConfig(srv.URL), nil).Do(context.Background(), Request{Query: "{}"}, nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestClient_Do_NoRetryByDefault(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	err := NewClient(testConfig(srv.URL), nil).Do(context.Background(), Request{Query: "{}"}, nil)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, int32(1), calls.Load())
}

func TestClient_Do_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, `{"data":{"ok":true}}`)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 2
	obs := &recordingObserver{}

	var out struct {
		OK bool `json:"ok"`
	}
	require.NoError(t, NewClient(cfg, obs).Do(context.Background(), Request{Query: "{}"}, &out))
	assert.True(t, out.OK)
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, 3, obs.last().Attempts)
}

func TestClient_Do_RetryExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 1
	err := NewClient(cfg, nil).Do(context.Background(), Request{Query: "{}"}, nil)

	assert.ErrorIs(t, err, ErrRetryExhausted)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_Do_ClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad query", http.StatusBadRequest)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 3
	obs := &recordingObserver{}
	err := NewClient(cfg, obs).Do(context.Background(), Request{Query: "{"}, nil)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad query")
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "HTTP_400", obs.last().ErrorCode)
}

func TestClient_Do_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(500 * time.Millisecond):
		}
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.TimeoutMs = 50
	obs := &recordingObserver{}
	err := NewClient(cfg, obs).Do(context.Background(), Request{Query: "{}"}, nil)

	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, "TIMEOUT", obs.last().ErrorCode)
}

func TestClient_Do_Unavailable(t *testing.T) {
	cfg := testConfig("http://127.0.0.1:1/graphql") // nothing listening
	obs := &recordingObserver{}
	err := NewClient(cfg, obs).Do(context.Background(), Request{Query: "{}"}, nil)

	assert.ErrorIs(t, err, ErrUnavailable)
	assert.False(t, obs.last().Success)
	assert.Equal(t, "UNAVAILABLE", obs.last().ErrorCode)
}

func TestClient_Do_CanceledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"data":{}}`)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewClient(testConfig(srv.URL), nil).Do(ctx, Request{Query: "{}"}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
