// Package remote provides paginator sources backed by HTTP endpoints.
//
// URLSource asks a server for one page at a time. JSONSource downloads a whole
// JSON document and slices the array it contains on the client. Both share a
// Client that can rate limit and circuit-break outgoing requests.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds a single request when no http.Client is supplied.
	DefaultTimeout = 30 * time.Second

	// DefaultMaxBodyBytes caps the size of a response body.
	DefaultMaxBodyBytes int64 = 32 << 20

	// maxErrorBody is how much of a failed response is kept on HTTPError.
	maxErrorBody = 512

	breakerTimeout = 30 * time.Second
)

// Remote source errors.
var (
	ErrInvalidURL   = errors.New("invalid remote URL")
	ErrMissingTotal = errors.New("response has no total count")
	ErrMissingItems = errors.New("response has no items")
	ErrNotArray     = errors.New("items path does not resolve to an array")
	ErrBodyTooLarge = errors.New("response body too large")
)

// HTTPError is returned for non-2xx responses.
type HTTPError struct {
	StatusCode int
	Body       string
}

func (e *HTTPError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("remote returned %d %s", e.StatusCode, http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("remote returned %d %s: %s", e.StatusCode, http.StatusText(e.StatusCode), e.Body)
}

// Client performs GET requests for remote sources.
type Client struct {
	http    *http.Client
	header  http.Header
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
	maxBody int64
	logger  zerolog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithHeader adds a header sent with every request.
func WithHeader(key, value string) ClientOption {
	return func(c *Client) {
		c.header.Add(key, value)
	}
}

// WithRateLimit limits requests to rps per second with the given burst.
// A non-positive rps disables limiting.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithCircuitBreaker opens a breaker named name after maxFailures consecutive
// failed requests. While open, requests fail with gobreaker.ErrOpenState
// without reaching the network. Client errors (4xx) and canceled requests do
// not count as failures.
func WithCircuitBreaker(name string, maxFailures uint32) ClientOption {
	return func(c *Client) {
		if maxFailures == 0 {
			c.breaker = nil
			return
		}
		c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     breakerTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= maxFailures
			},
			IsSuccessful: breakerSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				c.logger.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("circuit breaker state changed")
			},
		})
	}
}

// WithMaxBodyBytes caps the response size.
func WithMaxBodyBytes(n int64) ClientOption {
	return func(c *Client) {
		if n > 0 {
			c.maxBody = n
		}
	}
}

// WithLogger sets the logger for request diagnostics.
func WithLogger(l zerolog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = l.With().Str("component", "remote").Logger()
	}
}

// NewClient creates a Client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		http:    &http.Client{Timeout: DefaultTimeout},
		header:  make(http.Header),
		maxBody: DefaultMaxBodyBytes,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get fetches u and returns the response body. Non-2xx responses yield
// *HTTPError.
func (c *Client) Get(ctx context.Context, u *url.URL) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("waiting for rate limiter: %w", err)
		}
	}

	if c.breaker == nil {
		return c.do(ctx, u)
	}
	out, err := c.breaker.Execute(func() (interface{}, error) {
		return c.do(ctx, u)
	})
	if err != nil {
		return nil, err
	}
	body, _ := out.([]byte)
	return body, nil
}

// BreakerState reports the circuit breaker state, or StateClosed when the
// client has no breaker.
func (c *Client) BreakerState() gobreaker.State {
	if c.breaker == nil {
		return gobreaker.StateClosed
	}
	return c.breaker.State()
}

func (c *Client) do(ctx context.Context, u *url.URL) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("requesting %s: %w", redact(u), err)
	}
	defer resp.Body.Close()

	c.logger.Debug().
		Str("url", redact(u)).
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("remote fetch")

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &HTTPError{StatusCode: resp.StatusCode, Body: string(snippet)}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return nil, fmt.Errorf("%w: limit %d bytes", ErrBodyTooLarge, c.maxBody)
	}
	return body, nil
}

func breakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var he *HTTPError
	if errors.As(err, &he) {
		return he.StatusCode < http.StatusInternalServerError
	}
	return false
}

// redact drops credentials from u for logging.
func redact(u *url.URL) string {
	return u.Redacted()
}

// parseURL validates raw as an absolute http(s) URL.
func parseURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	return u, nil
}
