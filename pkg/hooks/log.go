// Package hooks contains the event observers attached to a run: structured
// logging, a Prometheus metrics endpoint and OpenTelemetry tracing.
package hooks

import (
	"context"
	"log/slog"

	"github.com/authprobe/authprobe/pkg/events"
)

// Compile-time interface check.
var _ events.Hook = (*LogHook)(nil)

// orDefault returns l if non-nil, otherwise slog.Default().
func orDefault(l *slog.Logger) *slog.Logger {
	if l != nil {
		return l
	}
	return slog.Default()
}

// LogHook writes every event as a structured log record. Attempts are
// logged at Debug, hits and stage boundaries at Info.
type LogHook struct {
	logger *slog.Logger
}

// NewLogHook creates a LogHook. A nil logger uses slog.Default().
func NewLogHook(logger *slog.Logger) *LogHook {
	return &LogHook{logger: orDefault(logger)}
}

// EventTypes implements events.Hook.
func (h *LogHook) EventTypes() []events.EventType { return nil }

// OnEvent implements events.Hook.
func (h *LogHook) OnEvent(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case *events.StartEvent:
		h.logger.LogAttrs(ctx, slog.LevelInfo, "stage started",
			slog.String("run_id", e.RunID),
			slog.String("stage", string(e.Stage)),
			slog.String("target", e.Target),
			slog.Int("candidates", e.Total))

	case *events.AttemptEvent:
		level := slog.LevelDebug
		if e.Outcome == events.OutcomeHit || e.Outcome == events.OutcomeRedirect {
			level = slog.LevelInfo
		}
		attrs := []slog.Attr{
			slog.String("stage", string(e.Stage)),
			slog.Int("index", e.Index),
			slog.String("method", e.Method),
			slog.String("url", e.URL),
			slog.String("outcome", string(e.Outcome)),
			slog.Duration("latency", e.Latency),
		}
		if e.Username != "" {
			attrs = append(attrs, slog.String("username", e.Username))
		}
		if e.Password != "" {
			attrs = append(attrs, slog.String("password", e.Password))
		}
		if e.StatusCode != 0 {
			attrs = append(attrs, slog.Int("status", e.StatusCode))
		}
		if e.Location != "" {
			attrs = append(attrs, slog.String("location", e.Location))
		}
		if e.Error != "" {
			attrs = append(attrs, slog.String("error", e.Error))
		}
		h.logger.LogAttrs(ctx, level, "attempt", attrs...)

	case *events.CompleteEvent:
		h.logger.LogAttrs(ctx, slog.LevelInfo, "stage complete",
			slog.String("run_id", e.RunID),
			slog.String("stage", string(e.Stage)),
			slog.Bool("found", e.Found),
			slog.String("result", e.Result),
			slog.Int("attempts", e.Attempts),
			slog.Duration("duration", e.Duration),
			slog.Bool("interrupted", e.Interrupted))
	}
	return nil
}
