// Package transport performs single HTTP attempts for the search loops and
// reduces each one to a Result.
//
// A Result either carries a response (StatusCode, Body, Header) or a
// classified transport error in Err. Body reads are bounded and every
// response body is drained and closed before the Result is returned.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/httpclient"
	"github.com/authprobe/authprobe/pkg/iohelper"
)

// Result is the outcome of one HTTP attempt.
type Result struct {
	StatusCode int
	Body       []byte
	Header     http.Header
	Latency    time.Duration

	// Err is non-nil when no HTTP response was received. It matches one of
	// the httpclient sentinels with errors.Is, or the context error when the
	// request was cancelled.
	Err error
}

// Client sends attempts through an *http.Client.
type Client struct {
	http      *http.Client
	userAgent string
	maxBody   int64
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// WithMaxBody overrides the response body read limit.
func WithMaxBody(n int64) Option {
	return func(c *Client) { c.maxBody = n }
}

// WithLogger sets the logger used for per-request debug output.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// New wraps hc. A nil hc uses httpclient.Default().
func New(hc *http.Client, opts ...Option) *Client {
	if hc == nil {
		hc = httpclient.Default()
	}
	c := &Client{
		http:      hc,
		userAgent: defaults.UAMinimal,
		maxBody:   iohelper.DefaultMaxBodySize,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostJSON sends payload as a JSON POST body.
func (c *Client) PostJSON(ctx context.Context, url string, payload any) Result {
	data, err := json.Marshal(payload)
	if err != nil {
		return Result{Err: fmt.Errorf("marshal payload: %w", err)}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return Result{Err: httpclient.Classify(err)}
	}
	req.Header.Set("Content-Type", defaults.ContentTypeJSON)
	return c.do(req)
}

// Get sends a GET request.
func (c *Client) Get(ctx context.Context, url string) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return Result{Err: httpclient.Classify(err)}
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) Result {
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	latency := time.Since(start)
	if err != nil {
		err = httpclient.Classify(err)
		c.logger.Debug("request failed",
			slog.String("method", req.Method),
			slog.String("url", req.URL.String()),
			slog.Any("error", err))
		return Result{Latency: latency, Err: err}
	}
	defer iohelper.DrainAndClose(resp.Body)

	body := iohelper.ReadBodyOrLog(io.LimitReader(resp.Body, c.maxBody), c.logger)
	c.logger.Debug("response",
		slog.String("method", req.Method),
		slog.String("url", req.URL.String()),
		slog.Int("status", resp.StatusCode),
		slog.Duration("latency", latency))

	return Result{
		StatusCode: resp.StatusCode,
		Body:       body,
		Header:     resp.Header,
		Latency:    latency,
	}
}
