package sdk

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/sethvargo/go-retry"

	"github.com/hangeul-lab/authoring/internal/redact"
)

// DefaultTimeout bounds a single attempt.
const DefaultTimeout = 15 * time.Second

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Envelope is the body of every API response.
type Envelope[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// IDData is the payload of create and update responses.
type IDData struct {
	ID int64 `json:"id"`
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-attempt timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithRetryPolicy replaces the default retry policy.
func WithRetryPolicy(p RetryPolicy) Option {
	return func(c *Client) {
		c.retry = p.normalized()
	}
}

// WithCookieSource sets where the session cookie comes from.
func WithCookieSource(src CookieSource) Option {
	return func(c *Client) {
		c.cookies = src
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// WithEndpoints replaces the endpoint catalog.
func WithEndpoints(routes map[string]Route) Option {
	return func(c *Client) {
		c.routes = routes
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// Client issues requests against the API.
type Client struct {
	base    *url.URL
	http    *http.Client
	routes  map[string]Route
	cookies CookieSource
	timeout time.Duration
	retry   RetryPolicy
	logger  *slog.Logger
}

// New creates a client for the API at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("sdk: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("sdk: base url must be http or https, got %q", baseURL)
	}

	c := &Client{
		base:    base,
		http:    &http.Client{},
		routes:  DefaultEndpoints,
		timeout: DefaultTimeout,
		retry:   DefaultRetryPolicy(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(slog.String("component", "sdk_client"))
	return c, nil
}

// Do calls endpoint with the given path parameters. A non-nil body is sent
// as JSON; a non-nil out receives the decoded response body. Failed
// attempts are retried according to the client's policy; the error of the
// last attempt is returned.
func (c *Client) Do(ctx context.Context, endpoint string, params Params, body, out any) error {
	route, ok := c.routes[endpoint]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownEndpoint, endpoint)
	}
	path, err := route.expand(params)
	if err != nil {
		return err
	}

	var payload []byte
	if body != nil {
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("sdk: encode request: %w", err)
		}
	}

	target := c.base.String() + path
	log := c.logger.With(slog.String("endpoint", endpoint), slog.String("method", route.Method))
	maxAttempts := c.retry.Retries + 1
	attempt := 0

	return retry.Do(ctx, c.retry.backoff(), func(ctx context.Context) error {
		attempt++
		err := c.attempt(ctx, route.Method, target, payload, out)
		if err == nil {
			return nil
		}
		// The caller gave up; nothing more to try.
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !c.retry.shouldRetry(err) {
			log.WarnContext(ctx, "request failed, not retrying",
				"attempt", attempt,
				"error", redact.Error(err))
			return err
		}
		if attempt < maxAttempts {
			log.InfoContext(ctx, "request failed, retrying",
				"attempt", attempt,
				"max_attempts", maxAttempts,
				"delay", c.retry.Delay(attempt).String(),
				"error", redact.Error(err))
		} else {
			log.WarnContext(ctx, "request failed, retries exhausted",
				"attempts", attempt,
				"error", redact.Error(err))
		}
		return retry.RetryableError(err)
	})
}

// attempt performs one HTTP exchange.
func (c *Client) attempt(ctx context.Context, method, target string, payload []byte, out any) error {
	actx := ctx
	if c.timeout > 0 {
		var cancel context.CancelFunc
		actx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(actx, method, target, reader)
	if err != nil {
		return fmt.Errorf("sdk: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.attachCookie(ctx, req)

	resp, err := c.http.Do(req)
	if err != nil {
		return c.transportError(ctx, actx, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.transportError(ctx, actx, err)
	}

	switch {
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return newAPIError(resp.StatusCode, raw)
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &decodeError{err: err}
	}
	return nil
}

// attachCookie adds the session cookie. A failed lookup is logged and the
// request goes out without one; the server answers 401 if it needs it.
func (c *Client) attachCookie(ctx context.Context, req *http.Request) {
	if c.cookies == nil {
		return
	}
	value, err := c.cookies.Cookie(ctx)
	if err != nil {
		if !errors.Is(err, ErrNoCookie) {
			c.logger.WarnContext(ctx, "cookie lookup failed, sending request without it",
				"error", redact.Error(err))
		}
		return
	}
	req.Header.Set("Cookie", value)
}

func (c *Client) transportError(ctx, actx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if errors.Is(actx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%w after %s", ErrTimeout, c.timeout)
	}
	return fmt.Errorf("sdk: transport: %w", err)
}
