package ui

import (
	"context"
	"fmt"
	"strings"

	"github.com/authprobe/authprobe/pkg/events"
)

// ConsoleHook prints attempts as they happen. Hits and redirects are
// always shown; misses and errors only in verbose mode.
type ConsoleHook struct {
	verbose bool
}

var _ events.Hook = (*ConsoleHook)(nil)

// NewConsoleHook creates a ConsoleHook.
func NewConsoleHook(verbose bool) *ConsoleHook {
	return &ConsoleHook{verbose: verbose}
}

// EventTypes implements events.Hook.
func (h *ConsoleHook) EventTypes() []events.EventType {
	return []events.EventType{events.EventTypeStart, events.EventTypeAttempt}
}

// OnEvent implements events.Hook.
func (h *ConsoleHook) OnEvent(_ context.Context, event events.Event) error {
	if IsSilent() {
		return nil
	}
	switch e := event.(type) {
	case *events.StartEvent:
		title := fmt.Sprintf("%s %s", e.Stage, e.Target)
		if e.Total > 0 {
			title += fmt.Sprintf(" (%d candidates)", e.Total)
		}
		PrintSection(title)
	case *events.AttemptEvent:
		if e.Outcome == events.OutcomeHit || e.Outcome == events.OutcomeRedirect || h.verbose {
			fmt.Fprintln(writer(), FormatAttempt(e))
		}
	}
	return nil
}

// FormatAttempt renders one attempt as a bracketed line:
//
//	[probe] [hit] [200] http://127.0.0.1:5000/api/auth admin:Secr3t! [12ms]
func FormatAttempt(e *events.AttemptEvent) string {
	var b strings.Builder

	bracket := func(s string) {
		b.WriteString(BracketStyle.Render("["))
		b.WriteString(s)
		b.WriteString(BracketStyle.Render("] "))
	}

	bracket(StageStyle.Render(string(e.Stage)))
	bracket(OutcomeStyle(e.Outcome).Render(string(e.Outcome)))
	if e.StatusCode != 0 {
		bracket(StatusCodeStyle(e.StatusCode).Render(fmt.Sprintf("%d", e.StatusCode)))
	}
	b.WriteString(URLStyle.Render(e.URL))

	switch {
	case e.Username != "":
		b.WriteString(" " + StatValueStyle.Render(e.Username+":"+e.Password))
	case e.Password != "":
		b.WriteString(" " + StatValueStyle.Render(e.Password))
	}
	if e.Location != "" {
		b.WriteString(" -> " + e.Location)
	}
	if e.Error != "" {
		b.WriteString(" " + WarningStyle.Render(e.Error))
	}
	if e.Latency > 0 {
		b.WriteString(" ")
		b.WriteString(BracketStyle.Render("["))
		b.WriteString(StatLabelStyle.Render(fmt.Sprintf("%dms", e.Latency.Milliseconds())))
		b.WriteString(BracketStyle.Render("]"))
	}
	return strings.TrimRight(b.String(), " ")
}
