// Package locator finds the authentication endpoint of a target by probing
// candidate paths with a throwaway credential.
//
// Candidates are tried one at a time, in strategy order. The first path
// whose status is in the live set (200 or 401 by default) wins and no
// further requests are sent. Transport failures count as "not live" and the
// search moves on.
package locator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/events"
	"github.com/authprobe/authprobe/pkg/transport"
)

// Outcome is the result of a Locate call.
type Outcome struct {
	Found      bool   `json:"found"`
	URL        string `json:"url,omitempty"`
	StatusCode int    `json:"status_code,omitempty"`
	Strategy   string `json:"strategy"`
	Attempts   int    `json:"attempts"`
}

// Locator runs endpoint searches.
type Locator struct {
	client     *transport.Client
	live       []int
	password   string
	dispatcher *events.Dispatcher
	logger     *slog.Logger
}

// Option configures a Locator.
type Option func(*Locator)

// WithLiveStatuses replaces the set of statuses that mark a path as live.
func WithLiveStatuses(codes ...int) Option {
	return func(l *Locator) {
		if len(codes) > 0 {
			l.live = codes
		}
	}
}

// WithProbePassword sets the password sent with every candidate.
func WithProbePassword(pw string) Option {
	return func(l *Locator) { l.password = pw }
}

// WithDispatcher sets where attempt events are sent.
func WithDispatcher(d *events.Dispatcher) Option {
	return func(l *Locator) { l.dispatcher = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Locator) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// New creates a Locator. A nil client uses transport.New(nil).
func New(client *transport.Client, opts ...Option) *Locator {
	if client == nil {
		client = transport.New(nil)
	}
	l := &Locator{
		client:   client,
		live:     defaults.LiveStatusCodes(),
		password: defaults.ProbePassword,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Locate tries each candidate of s under baseURL and returns the first live
// one. Exhausting the strategy yields Outcome{Found: false} and a nil
// error. The error is non-nil only for an invalid base URL or a cancelled
// context.
func (l *Locator) Locate(ctx context.Context, baseURL string, s Strategy) (Outcome, error) {
	base, err := normalizeBase(baseURL)
	if err != nil {
		return Outcome{}, err
	}

	out := Outcome{Strategy: s.Name()}
	start := time.Now()
	l.dispatcher.Dispatch(ctx, events.NewStartEvent(events.StageLocate, base, s.Len()))
	l.logger.Info("locating endpoint", slog.String("target", base), slog.String("strategy", s.Name()), slog.Int("candidates", s.Len()))

	payload := map[string]string{"password": l.password}

	for path := range s.Candidates() {
		if err := ctx.Err(); err != nil {
			return out, l.interrupted(ctx, out, start, err)
		}

		out.Attempts++
		candidate := base + path
		res := l.client.PostJSON(ctx, candidate, payload)
		if res.Err != nil && ctx.Err() != nil {
			return out, l.interrupted(ctx, out, start, ctx.Err())
		}

		ev := events.NewAttemptEvent(events.StageLocate, out.Attempts, http.MethodPost, candidate)
		ev.Latency = res.Latency
		ev.StatusCode = res.StatusCode
		switch {
		case res.Err != nil:
			ev.Outcome = events.OutcomeError
			ev.Error = res.Err.Error()
		case l.isLive(res.StatusCode):
			ev.Outcome = events.OutcomeHit
		default:
			ev.Outcome = events.OutcomeMiss
		}
		l.dispatcher.Dispatch(ctx, ev)

		if ev.Outcome == events.OutcomeHit {
			out.Found = true
			out.URL = candidate
			out.StatusCode = res.StatusCode
			break
		}
	}

	l.dispatcher.Dispatch(ctx, events.NewCompleteEvent(events.StageLocate, out.Found, out.URL, out.Attempts, time.Since(start)))
	return out, nil
}

func (l *Locator) isLive(code int) bool {
	return slices.Contains(l.live, code)
}

func (l *Locator) interrupted(ctx context.Context, out Outcome, start time.Time, err error) error {
	ev := events.NewCompleteEvent(events.StageLocate, false, "", out.Attempts, time.Since(start))
	ev.Interrupted = true
	l.dispatcher.Dispatch(context.WithoutCancel(ctx), ev)
	return err
}

// normalizeBase validates baseURL and strips trailing slashes.
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
