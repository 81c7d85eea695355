package events

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"
)

// Hook is the interface for event observers.
type Hook interface {
	// OnEvent is called for each matching event.
	OnEvent(ctx context.Context, event Event) error

	// EventTypes returns the event types this hook handles.
	// Return nil or empty slice to receive all events.
	EventTypes() []EventType
}

// Closer is implemented by hooks that own background resources such as a
// metrics server or a trace exporter.
type Closer interface {
	Close(ctx context.Context) error
}

// Dispatcher routes events to hooks synchronously, on the caller's
// goroutine, in registration order. It is safe for concurrent use.
// A nil *Dispatcher drops every event.
type Dispatcher struct {
	mu     sync.RWMutex
	hooks  []Hook
	runID  string
	logger *slog.Logger
}

// NewDispatcher creates a dispatcher. runID is stamped on every event that
// does not already carry one.
func NewDispatcher(runID string, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{runID: runID, logger: logger}
}

// RegisterHook adds a hook to the dispatcher.
func (d *Dispatcher) RegisterHook(h Hook) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.hooks = append(d.hooks, h)
}

// Dispatch sends an event to all hooks that handle its type. Hook errors
// are logged and never stop delivery to the remaining hooks.
func (d *Dispatcher) Dispatch(ctx context.Context, event Event) {
	if d == nil || event == nil {
		return
	}
	d.stamp(event)

	d.mu.RLock()
	defer d.mu.RUnlock()

	for _, h := range d.hooks {
		if !handles(h, event.EventType()) {
			continue
		}
		if err := h.OnEvent(ctx, event); err != nil {
			d.logger.Debug("hook failed", slog.String("event", string(event.EventType())), slog.Any("error", err))
		}
	}
}

func (d *Dispatcher) stamp(event Event) {
	if d.runID == "" {
		return
	}
	var b *BaseEvent
	switch e := event.(type) {
	case *StartEvent:
		b = &e.BaseEvent
	case *AttemptEvent:
		b = &e.BaseEvent
	case *CompleteEvent:
		b = &e.BaseEvent
	}
	if b != nil && b.RunID == "" {
		b.RunID = d.runID
	}
}

// handles checks if a hook handles the given event type.
func handles(h Hook, t EventType) bool {
	types := h.EventTypes()
	return len(types) == 0 || slices.Contains(types, t)
}

// Close releases every hook that implements Closer.
func (d *Dispatcher) Close(ctx context.Context) error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	var errs []error
	for _, h := range d.hooks {
		if c, ok := h.(Closer); ok {
			if err := c.Close(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}
