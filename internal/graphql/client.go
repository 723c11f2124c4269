// Package graphql talks to the reporting backend's GraphQL endpoint and
// decodes its timesheet documents into domain records.
package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

// Config configures the HTTP client.
type Config struct {
	Endpoint   string
	Token      string // sent as a bearer token when set
	TimeoutMs  int
	MaxRetries int
}

// DefaultConfig returns a Config pointing at a local backend. Requests
// are not retried unless MaxRetries is raised.
func DefaultConfig() Config {
	return Config{
		Endpoint:   "http://localhost:4000/graphql",
		TimeoutMs:  15000,
		MaxRetries: 0,
	}
}

// Request is a GraphQL operation.
type Request struct {
	OperationName string         `json:"operationName,omitempty"`
	Query         string         `json:"query"`
	Variables     map[string]any `json:"variables,omitempty"`
}

// Client executes GraphQL operations.
type Client interface {
	// Do sends req and decodes the response's data object into out.
	// A *ResponseError with Partial set is returned alongside decoded data.
	Do(ctx context.Context, req Request, out any) error
}

type httpClient struct {
	cfg      Config
	http     *http.Client
	observer Observer
}

// NewClient creates a Client posting JSON to cfg.Endpoint.
func NewClient(cfg Config, observer Observer) Client {
	if observer == nil {
		observer = NoopObserver{}
	}
	var transport http.RoundTripper = &http.Transport{
		DialContext: (&net.Dialer{
			Timeout: 5 * time.Second,
		}).DialContext,
	}
	if cfg.Token != "" {
		transport = &oauth2.Transport{
			Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: cfg.Token, TokenType: "Bearer"}),
			Base:   transport,
		}
	}
	return &httpClient{
		cfg:      cfg,
		http:     &http.Client{Transport: transport},
		observer: observer,
	}
}

type response struct {
	Data   json.RawMessage `json:"data"`
	Errors []Error         `json:"errors"`
}

func (c *httpClient) Do(ctx context.Context, req Request, out any) error {
	start := time.Now()

	if c.cfg.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(c.cfg.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	attempts := 1 + max(c.cfg.MaxRetries, 0)
	var lastErr error
	tries := 0
	for tries < attempts {
		tries++
		resp, err := c.doRequest(ctx, req)
		if err == nil {
			err = decode(resp, out)
			c.observe(req, start, tries, err)
			return err
		}
		lastErr = err

		// Don't retry on context cancellation/timeout or client errors
		if ctx.Err() != nil || !retryable(err) {
			break
		}
	}

	err := c.classify(ctx, lastErr, tries)
	c.observe(req, start, tries, err)
	return err
}

func (c *httpClient) classify(ctx context.Context, err error, tries int) error {
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		return ErrTimeout
	case ctx.Err() != nil:
		return ctx.Err()
	case isConnectionError(err):
		return fmt.Errorf("%w: %s", ErrUnavailable, c.cfg.Endpoint)
	case tries > 1:
		return fmt.Errorf("%w: %v", ErrRetryExhausted, err)
	default:
		return err
	}
}

func (c *httpClient) observe(req Request, start time.Time, tries int, err error) {
	c.observer.OnCallComplete(CallEvent{
		Operation: req.OperationName,
		LatencyMs: time.Since(start).Milliseconds(),
		Attempts:  tries,
		Success:   err == nil || IsPartial(err),
		ErrorCode: errorCode(err),
	})
}

func (c *httpClient) doRequest(ctx context.Context, req Request) (*response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.Endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, &StatusError{StatusCode: httpResp.StatusCode, Body: string(bytes.TrimSpace(body))}
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	return &resp, nil
}

func decode(resp *response, out any) error {
	hasData := len(resp.Data) > 0 && !bytes.Equal(resp.Data, []byte("null"))
	if !hasData {
		if len(resp.Errors) > 0 {
			return &ResponseError{Errors: resp.Errors}
		}
		return ErrNoData
	}
	if out != nil {
		if err := json.Unmarshal(resp.Data, out); err != nil {
			return fmt.Errorf("decoding data: %w", err)
		}
	}
	if len(resp.Errors) > 0 {
		return &ResponseError{Errors: resp.Errors, Partial: true}
	}
	return nil
}

func retryable(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	if err == nil {
		return false
	}
	var netErr *net.OpError
	return errors.As(err, &netErr)
}

func errorCode(err error) string {
	var se *StatusError
	var re *ResponseError
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTimeout):
		return "TIMEOUT"
	case errors.Is(err, ErrUnavailable):
		return "UNAVAILABLE"
	case errors.As(err, &re):
		if re.Partial {
			return "PARTIAL"
		}
		return "GRAPHQL"
	case errors.As(err, &se):
		return fmt.Sprintf("HTTP_%d", se.StatusCode)
	case errors.Is(err, ErrNoData):
		return "NO_DATA"
	default:
		return "UNKNOWN"
	}
}
