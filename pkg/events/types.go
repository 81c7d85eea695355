// Package events defines the events emitted while a search runs and the
// Dispatcher that routes them to hooks.
//
// Searches emit one StartEvent, one AttemptEvent per candidate and one
// CompleteEvent. Hooks (structured logging, Prometheus, OpenTelemetry)
// observe them without the search loops knowing who is listening.
package events

import "time"

// EventType represents the type of event.
type EventType string

const (
	// EventTypeStart indicates a search stage has started.
	EventTypeStart EventType = "start"
	// EventTypeAttempt indicates one candidate was tried.
	EventTypeAttempt EventType = "attempt"
	// EventTypeComplete indicates a search stage has finished.
	EventTypeComplete EventType = "complete"
)

// Stage names the search that produced an event.
type Stage string

const (
	StageLocate  Stage = "locate"
	StageProbe   Stage = "probe"
	StageDirscan Stage = "dirscan"
)

// Outcome classifies a single attempt.
type Outcome string

const (
	// OutcomeHit is a live endpoint, an accepted credential or a found path.
	OutcomeHit Outcome = "hit"
	// OutcomeRedirect is a directory-scan path answering 301/302.
	OutcomeRedirect Outcome = "redirect"
	// OutcomeMiss is any other HTTP response.
	OutcomeMiss Outcome = "miss"
	// OutcomeError is a transport failure with no HTTP response.
	OutcomeError Outcome = "error"
)

// Event is implemented by every event type.
type Event interface {
	EventType() EventType
	Timestamp() time.Time
}

// BaseEvent holds the fields shared by every event.
type BaseEvent struct {
	Type  EventType `json:"type"`
	Time  time.Time `json:"timestamp"`
	RunID string    `json:"run_id,omitempty"`
	Stage Stage     `json:"stage"`
}

// EventType implements Event.
func (b BaseEvent) EventType() EventType { return b.Type }

// Timestamp implements Event.
func (b BaseEvent) Timestamp() time.Time { return b.Time }

func base(t EventType, stage Stage) BaseEvent {
	return BaseEvent{Type: t, Time: time.Now(), Stage: stage}
}

// StartEvent is emitted before the first attempt of a stage.
type StartEvent struct {
	BaseEvent
	Target string `json:"target"`
	// Total is the number of candidates, or 0 when unknown up front.
	Total int `json:"total"`
}

// NewStartEvent creates a StartEvent.
func NewStartEvent(stage Stage, target string, total int) *StartEvent {
	return &StartEvent{BaseEvent: base(EventTypeStart, stage), Target: target, Total: total}
}

// AttemptEvent describes one request and how it was classified.
type AttemptEvent struct {
	BaseEvent
	// Index is the 1-based attempt number within the stage.
	Index      int           `json:"index"`
	Method     string        `json:"method"`
	URL        string        `json:"url"`
	Username   string        `json:"username,omitempty"`
	Password   string        `json:"password,omitempty"`
	StatusCode int           `json:"status_code,omitempty"`
	Location   string        `json:"location,omitempty"`
	Latency    time.Duration `json:"latency_ns"`
	Outcome    Outcome       `json:"outcome"`
	Error      string        `json:"error,omitempty"`
}

// NewAttemptEvent creates an AttemptEvent stamped with the current time.
func NewAttemptEvent(stage Stage, index int, method, url string) *AttemptEvent {
	return &AttemptEvent{BaseEvent: base(EventTypeAttempt, stage), Index: index, Method: method, URL: url}
}

// CompleteEvent is emitted once per stage, after the last attempt.
type CompleteEvent struct {
	BaseEvent
	Found    bool          `json:"found"`
	Result   string        `json:"result,omitempty"`
	Attempts int           `json:"attempts"`
	Duration time.Duration `json:"duration_ns"`
	// Interrupted is set when the stage ended on context cancellation.
	Interrupted bool `json:"interrupted,omitempty"`
}

// NewCompleteEvent creates a CompleteEvent.
func NewCompleteEvent(stage Stage, found bool, result string, attempts int, elapsed time.Duration) *CompleteEvent {
	return &CompleteEvent{
		BaseEvent: base(EventTypeComplete, stage),
		Found:     found,
		Result:    result,
		Attempts:  attempts,
		Duration:  elapsed,
	}
}
