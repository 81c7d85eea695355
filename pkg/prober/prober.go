// Package prober searches for a credential accepted by a known
// authentication endpoint.
//
// Credentials are tried one at a time with a fixed pause between attempts.
// The search stops at the first accepted credential. Running out of
// candidates is a normal outcome, not an error.
package prober

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/authprobe/authprobe/pkg/defaults"
	"github.com/authprobe/authprobe/pkg/duration"
	"github.com/authprobe/authprobe/pkg/events"
	"github.com/authprobe/authprobe/pkg/pacing"
	"github.com/authprobe/authprobe/pkg/transport"
)

// Outcome is the result of a Probe call.
type Outcome struct {
	Found      bool        `json:"found"`
	Credential *Credential `json:"credential,omitempty"`
	// Token is the bearer token from a successful username+password login,
	// empty when the response carried none.
	Token    string  `json:"token,omitempty"`
	Variant  Variant `json:"variant"`
	Attempts int     `json:"attempts"`
}

// Prober runs credential searches.
type Prober struct {
	client     *transport.Client
	pacer      pacing.Pacer
	dispatcher *events.Dispatcher
	logger     *slog.Logger
}

// Option configures a Prober.
type Option func(*Prober)

// WithPacer replaces the default 200ms fixed pacer.
func WithPacer(p pacing.Pacer) Option {
	return func(pr *Prober) {
		if p != nil {
			pr.pacer = p
		}
	}
}

// WithDispatcher sets where attempt events are sent.
func WithDispatcher(d *events.Dispatcher) Option {
	return func(pr *Prober) { pr.dispatcher = d }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(pr *Prober) {
		if logger != nil {
			pr.logger = logger
		}
	}
}

// New creates a Prober. A nil client uses transport.New(nil).
func New(client *transport.Client, opts ...Option) *Prober {
	if client == nil {
		client = transport.New(nil)
	}
	p := &Prober{
		client: client,
		pacer:  pacing.NewFixed(duration.PacingDefault),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Probe tries each credential of src against endpoint and returns the first
// accepted one. The pacer is consulted before every attempt except the
// first. The error is non-nil only for an invalid endpoint or a cancelled
// context.
func (p *Prober) Probe(ctx context.Context, endpoint string, src Source) (Outcome, error) {
	if err := validateEndpoint(endpoint); err != nil {
		return Outcome{}, err
	}

	out := Outcome{Variant: src.Variant()}
	start := time.Now()
	p.dispatcher.Dispatch(ctx, events.NewStartEvent(events.StageProbe, endpoint, src.Len()))
	p.logger.Info("probing credentials", slog.String("endpoint", endpoint), slog.String("variant", string(src.Variant())), slog.Int("candidates", src.Len()))

	for cred := range src.Candidates() {
		if out.Attempts > 0 {
			if err := p.pacer.Wait(ctx); err != nil {
				return out, p.interrupted(ctx, out, start, err)
			}
		}
		if err := ctx.Err(); err != nil {
			return out, p.interrupted(ctx, out, start, err)
		}

		out.Attempts++
		res := p.client.PostJSON(ctx, endpoint, body(src.Variant(), cred))
		if res.Err != nil && ctx.Err() != nil {
			return out, p.interrupted(ctx, out, start, ctx.Err())
		}

		ev := events.NewAttemptEvent(events.StageProbe, out.Attempts, http.MethodPost, endpoint)
		ev.Username = cred.Username
		ev.Password = cred.Password
		ev.StatusCode = res.StatusCode
		ev.Latency = res.Latency

		ok, token := false, ""
		if res.Err != nil {
			ev.Outcome = events.OutcomeError
			ev.Error = res.Err.Error()
		} else {
			ok, token = accepted(src.Variant(), res)
			ev.Outcome = events.OutcomeMiss
			if ok {
				ev.Outcome = events.OutcomeHit
			}
		}
		p.dispatcher.Dispatch(ctx, ev)

		if ok {
			c := cred
			out.Found = true
			out.Credential = &c
			out.Token = token
			break
		}
	}

	result := ""
	if out.Credential != nil {
		result = out.Credential.String()
	}
	p.dispatcher.Dispatch(ctx, events.NewCompleteEvent(events.StageProbe, out.Found, result, out.Attempts, time.Since(start)))
	return out, nil
}

func (p *Prober) interrupted(ctx context.Context, out Outcome, start time.Time, err error) error {
	ev := events.NewCompleteEvent(events.StageProbe, false, "", out.Attempts, time.Since(start))
	ev.Interrupted = true
	p.dispatcher.Dispatch(context.WithoutCancel(ctx), ev)
	return err
}

func body(v Variant, c Credential) map[string]string {
	if v == VariantUserPass {
		return map[string]string{"username": c.Username, "password": c.Password}
	}
	return map[string]string{"password": c.Password}
}

// accepted applies the variant's success rule. The password-only variant
// never looks at the body.
func accepted(v Variant, res transport.Result) (bool, string) {
	if res.StatusCode != http.StatusOK {
		return false, ""
	}
	if v == VariantPassword {
		return true, ""
	}

	var doc map[string]any
	if err := json.Unmarshal(res.Body, &doc); err != nil {
		return false, ""
	}
	if status, _ := doc[defaults.SuccessStatusField].(string); status != defaults.SuccessStatusValue {
		return false, ""
	}
	token, _ := doc[defaults.TokenField].(string)
	return true, token
}

func validateEndpoint(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEndpoint, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: %q", ErrInvalidEndpoint, endpoint)
	}
	return nil
}
