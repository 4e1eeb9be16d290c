// Package sidecar fetches exposition text from a co-located process.
package sidecar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
)

// DefaultTimeout bounds a fetch when no timeout is given
const DefaultTimeout = 10 * time.Second

// ErrTimeout is matched by every *TimeoutError
var ErrTimeout = errors.New("sidecar: timeout")

// TimeoutError reports a fetch that did not finish within its timeout
type TimeoutError struct {
	URL     string
	Timeout time.Duration
}

// Error implements the error interface
func (e *TimeoutError) Error() string {
	return "Timeout on " + e.URL
}

// Is reports whether target is ErrTimeout
func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// FetchError reports a connection or stream failure
type FetchError struct {
	URL string
	Err error
}

// Error implements the error interface
func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

// Unwrap returns the underlying error
func (e *FetchError) Unwrap() error {
	return e.Err
}

// Client performs bounded GET requests
type Client struct {
	httpClient *http.Client
	timeout    time.Duration
}

// NewClient creates a client whose fetches are bounded by timeout.
// A zero timeout means DefaultTimeout.
func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Client{
		httpClient: &http.Client{},
		timeout:    timeout,
	}
}

// Timeout returns the bound applied to each fetch
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Fetch issues a single GET and returns the whole body as text. The status
// code is not inspected. Trace context found in ctx is propagated.
func (c *Client) Fetch(ctx context.Context, url string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", &FetchError{URL: url, Err: err}
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", c.wrap(ctx, url, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", c.wrap(ctx, url, err)
	}

	return string(body), nil
}

// wrap distinguishes our own deadline from other failures, including
// cancellation of the caller's context
func (c *Client) wrap(ctx context.Context, url string, err error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{URL: url, Timeout: c.timeout}
	}
	return &FetchError{URL: url, Err: err}
}

// Fetch performs a one-off bounded GET. A zero timeout means DefaultTimeout.
func Fetch(ctx context.Context, url string, timeout time.Duration) (string, error) {
	return NewClient(timeout).Fetch(ctx, url)
}
