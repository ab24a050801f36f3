// Package apiclient talks to the job-alert backend. It implements the
// repository and gateway interfaces of the domain packages.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/job-alert-agent/internal/domain/session"
	"github.com/cmlabs-hris/job-alert-agent/internal/pkg/metrics"
	"golang.org/x/oauth2"
)

var ErrNotFound = errors.New("resource not found")

// APIError is a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("backend returned %d", e.StatusCode)
	}
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Detail)
}

// Unwrap maps well-known statuses onto sentinel errors
func (e *APIError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusUnauthorized:
		return session.ErrNotAuthenticated
	case http.StatusNotFound:
		return ErrNotFound
	default:
		return nil
	}
}

// Config holds backend client configuration
type Config struct {
	BaseURL string
	Timeout time.Duration // default: 15 seconds
}

// Client is the backend API client
type Client struct {
	baseURL string
	public  *http.Client
	authed  *http.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a client. Authenticated calls take their bearer token from ts
// on every request, so a new login takes effect immediately.
func New(cfg Config, ts oauth2.TokenSource, m *metrics.Metrics, logger *slog.Logger) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 15 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		public:  &http.Client{Timeout: cfg.Timeout},
		authed:  newAuthedClient(ts, cfg.Timeout),
		metrics: m,
		logger:  logger,
	}
}

func newAuthedClient(ts oauth2.TokenSource, timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &oauth2.Transport{
			Source: ts,
			Base:   http.DefaultTransport,
		},
	}
}

type request struct {
	name   string // metrics label
	method string
	path   string
	query  url.Values
	body   any
	// token overrides the session token source for this call.
	token string
	auth  bool
}

func (c *Client) do(ctx context.Context, r request, out any) error {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}

	var body io.Reader
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", r.name, err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return fmt.Errorf("build %s request: %w", r.name, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	httpClient := c.public
	switch {
	case r.token != "":
		httpClient = newAuthedClient(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: r.token, TokenType: "Bearer"}), c.public.Timeout)
	case r.auth:
		httpClient = c.authed
	}

	start := time.Now()
	resp, err := httpClient.Do(req)
	if err != nil {
		c.metrics.BackendRequests.WithLabelValues(r.name, "error").Inc()
		return fmt.Errorf("%s: %w", r.name, err)
	}
	defer resp.Body.Close()

	c.metrics.BackendRequests.WithLabelValues(r.name, strconv.Itoa(resp.StatusCode)).Inc()
	c.metrics.BackendLatency.WithLabelValues(r.name).Observe(time.Since(start).Seconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Detail: readDetail(resp.Body)}
		c.logger.Warn("Backend request failed", "request", r.name, "status", resp.StatusCode, "detail", apiErr.Detail)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", r.name, err)
	}
	return nil
}

// readDetail extracts the error message from a {"detail": ...} body
func readDetail(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 64<<10))
	if err != nil || len(raw) == 0 {
		return ""
	}

	var body struct {
		Detail  any    `json:"detail"`
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &body) == nil {
		switch d := body.Detail.(type) {
		case string:
			return d
		case nil:
			if body.Message != "" {
				return body.Message
			}
		default:
			b, _ := json.Marshal(d)
			return string(b)
		}
	}
	return strings.TrimSpace(string(raw))
}

// statusIs reports whether err is an APIError with the given status
func statusIs(err error, status int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == status
}
