package graphql

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnavailable indicates the GraphQL endpoint could not be reached.
	ErrUnavailable = errors.New("graphql endpoint unavailable")

	// ErrTimeout indicates the request exceeded the configured timeout.
	ErrTimeout = errors.New("graphql request timed out")

	// ErrRetryExhausted indicates every configured attempt failed.
	ErrRetryExhausted = errors.New("graphql retry attempts exhausted")

	// ErrNoData indicates a response that carried neither data nor errors.
	ErrNoData = errors.New("graphql response has no data")
)

// Error is one entry of a GraphQL response's errors array.
type Error struct {
	Message string `json:"message"`
	Path    []any  `json:"path,omitempty"`
}

func (e Error) String() string {
	if len(e.Path) == 0 {
		return e.Message
	}
	parts := make([]string, len(e.Path))
	for i, p := range e.Path {
		parts[i] = fmt.Sprint(p)
	}
	return strings.Join(parts, ".") + ": " + e.Message
}

// ResponseError carries the errors array of a response. Partial is set
// when the server also returned data, which has been decoded.
type ResponseError struct {
	Errors  []Error
	Partial bool
}

func (e *ResponseError) Error() string {
	msgs := make([]string, len(e.Errors))
	for i, ge := range e.Errors {
		msgs[i] = ge.String()
	}
	prefix := "graphql errors"
	if e.Partial {
		prefix = "graphql partial errors"
	}
	return prefix + ": " + strings.Join(msgs, "; ")
}

// StatusError is a non-200 HTTP response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graphql endpoint returned status %d: %s", e.StatusCode, e.Body)
}

// IsPartial reports whether err only signals partially returned data.
func IsPartial(err error) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.Partial
}
