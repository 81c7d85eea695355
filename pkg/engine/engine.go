// Package engine runs the auto pipeline: locate the authentication endpoint
// under a base URL, then probe it for a working credential.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/authprobe/authprobe/pkg/locator"
	"github.com/authprobe/authprobe/pkg/prober"
	"github.com/authprobe/authprobe/pkg/report"
)

// Plan describes one auto run.
type Plan struct {
	// Target is the base URL searched by the locator.
	Target string
	// Endpoint skips locating when set.
	Endpoint string
	// Strategy generates locator candidates. Nil uses the common paths.
	Strategy locator.Strategy
	// Source generates credentials for the prober.
	Source prober.Source
	// RunID replaces the report's generated run ID when set.
	RunID string
}

// Engine chains a Locator and a Prober.
type Engine struct {
	locator *locator.Locator
	prober  *prober.Prober
	logger  *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an Engine.
func New(loc *locator.Locator, pr *prober.Prober, opts ...Option) *Engine {
	e := &Engine{locator: loc, prober: pr, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the plan. The report is always returned, finished, and
// carries whatever the stages recorded before an error or cancellation.
// Not finding an endpoint or a credential is not an error.
func (e *Engine) Run(ctx context.Context, plan Plan) (*report.Report, error) {
	rep := report.New("auto", plan.Target)
	if plan.RunID != "" {
		rep.RunID = plan.RunID
	}

	if plan.Source == nil || plan.Source.Len() == 0 {
		err := fmt.Errorf("%w: empty credential source", ErrNoCandidates)
		rep.Finish(err, false)
		return rep, err
	}

	endpoint := plan.Endpoint
	if endpoint == "" {
		strategy := plan.Strategy
		if strategy == nil {
			strategy = locator.NewCommonPathStrategy()
		}
		out, err := e.locator.Locate(ctx, plan.Target, strategy)
		rep.SetLocate(out)
		if err != nil {
			rep.Finish(err, isInterrupted(err))
			return rep, fmt.Errorf("locate: %w", err)
		}
		if !out.Found {
			e.logger.Info("no authentication endpoint found", slog.Int("attempts", out.Attempts))
			rep.Finish(nil, false)
			return rep, nil
		}
		endpoint = out.URL
	} else {
		e.logger.Debug("endpoint given, skipping locate", slog.String("endpoint", endpoint))
	}

	out, err := e.prober.Probe(ctx, endpoint, plan.Source)
	rep.SetProbe(endpoint, out)
	if err != nil {
		rep.Finish(err, isInterrupted(err))
		return rep, fmt.Errorf("probe: %w", err)
	}
	rep.Finish(nil, false)
	return rep, nil
}

func isInterrupted(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
