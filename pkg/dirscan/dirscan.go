// Package dirscan requests every word of a wordlist under a base URL and
// classifies each path. Unlike the locator it does not stop at the first
// hit.
package dirscan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/authprobe/authprobe/pkg/events"
	"github.com/authprobe/authprobe/pkg/pacing"
	"github.com/authprobe/authprobe/pkg/transport"
)

// ErrInvalidBaseURL is returned when the base URL is not an absolute
// http(s) URL.
var ErrInvalidBaseURL = errors.New("dirscan: invalid base URL")

// Status classifies one path.
type Status string

const (
	StatusFound    Status = "found"
	StatusRedirect Status = "redirect"
	StatusNotFound Status = "not_found"
	StatusError    Status = "error"
)

// Entry is the classification of one word.
type Entry struct {
	Path       string `json:"path"`
	URL        string `json:"url"`
	Status     Status `json:"status"`
	StatusCode int    `json:"status_code,omitempty"`
	Location   string `json:"location,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Summary aggregates a scan.
type Summary struct {
	// Hits holds found and redirect entries in scan order.
	Hits      []Entry `json:"hits"`
	Requests  int     `json:"requests"`
	Found     int     `json:"found"`
	Redirects int     `json:"redirects"`
	NotFound  int     `json:"not_found"`
	Errors    int     `json:"errors"`
}

// Scanner runs directory scans.
type Scanner struct {
	client     *transport.Client
	pacer      pacing.Pacer
	dispatcher *events.Dispatcher
	logger     *slog.Logger
	onEntry    func(Entry)
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithPacer inserts a pause between requests. Scans are unpaced by default.
func WithPacer(p pacing.Pacer) Option {
	return func(s *Scanner) {
		if p != nil {
			s.pacer = p
		}
	}
}

// WithDispatcher sets where attempt events are sent.
func WithDispatcher(d *events.Dispatcher) Option {
	return func(s *Scanner) { s.dispatcher = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Scanner) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// OnEntry registers a callback invoked for every classified word.
func OnEntry(fn func(Entry)) Option {
	return func(s *Scanner) { s.onEntry = fn }
}

// New creates a Scanner. A nil client uses transport.New(nil).
func New(client *transport.Client, opts ...Option) *Scanner {
	if client == nil {
		client = transport.New(nil)
	}
	s := &Scanner{
		client: client,
		pacer:  pacing.None,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Scan issues GET baseURL/word for every word, in order. The error is
// non-nil only for an invalid base URL or a cancelled context; in the
// latter case the partial Summary is returned too.
func (s *Scanner) Scan(ctx context.Context, baseURL string, words []string) (Summary, error) {
	base, err := normalizeBase(baseURL)
	if err != nil {
		return Summary{}, err
	}

	var sum Summary
	start := time.Now()
	s.dispatcher.Dispatch(ctx, events.NewStartEvent(events.StageDirscan, base, len(words)))
	s.logger.Info("scanning directories", slog.String("target", base), slog.Int("words", len(words)))

	for i, word := range words {
		if i > 0 {
			if err := s.pacer.Wait(ctx); err != nil {
				return sum, s.interrupted(ctx, sum, start, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return sum, s.interrupted(ctx, sum, start, err)
		}

		path := strings.TrimLeft(word, "/")
		target := base + "/" + path
		sum.Requests++
		res := s.client.Get(ctx, target)
		if res.Err != nil && ctx.Err() != nil {
			return sum, s.interrupted(ctx, sum, start, ctx.Err())
		}

		e := classify(path, target, res)
		sum.add(e)

		ev := events.NewAttemptEvent(events.StageDirscan, sum.Requests, http.MethodGet, target)
		ev.StatusCode = e.StatusCode
		ev.Location = e.Location
		ev.Latency = res.Latency
		ev.Error = e.Error
		ev.Outcome = outcomeOf(e.Status)
		s.dispatcher.Dispatch(ctx, ev)

		if s.onEntry != nil {
			s.onEntry(e)
		}
	}

	s.dispatcher.Dispatch(ctx, events.NewCompleteEvent(events.StageDirscan, len(sum.Hits) > 0,
		fmt.Sprintf("%d found, %d redirects", sum.Found, sum.Redirects), sum.Requests, time.Since(start)))
	return sum, nil
}

func (s *Scanner) interrupted(ctx context.Context, sum Summary, start time.Time, err error) error {
	ev := events.NewCompleteEvent(events.StageDirscan, len(sum.Hits) > 0, "", sum.Requests, time.Since(start))
	ev.Interrupted = true
	s.dispatcher.Dispatch(context.WithoutCancel(ctx), ev)
	return err
}

func classify(path, target string, res transport.Result) Entry {
	e := Entry{Path: path, URL: target, StatusCode: res.StatusCode}
	switch {
	case res.Err != nil:
		e.Status = StatusError
		e.Error = res.Err.Error()
	case res.StatusCode == http.StatusOK:
		e.Status = StatusFound
	case res.StatusCode == http.StatusMovedPermanently, res.StatusCode == http.StatusFound:
		e.Status = StatusRedirect
		e.Location = res.Header.Get("Location")
	default:
		e.Status = StatusNotFound
	}
	return e
}

func (sum *Summary) add(e Entry) {
	switch e.Status {
	case StatusFound:
		sum.Found++
		sum.Hits = append(sum.Hits, e)
	case StatusRedirect:
		sum.Redirects++
		sum.Hits = append(sum.Hits, e)
	case StatusNotFound:
		sum.NotFound++
	case StatusError:
		sum.Errors++
	}
}

func outcomeOf(s Status) events.Outcome {
	switch s {
	case StatusFound:
		return events.OutcomeHit
	case StatusRedirect:
		return events.OutcomeRedirect
	case StatusError:
		return events.OutcomeError
	default:
		return events.OutcomeMiss
	}
}

func normalizeBase(baseURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	return strings.TrimRight(u.String(), "/"), nil
}
