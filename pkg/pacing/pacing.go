// Package pacing spaces out consecutive credential attempts.
//
// The delay is a plain unconditional sleep: it does not adapt to the
// target's responses and is not a token bucket. Tests swap the sleeper so no
// real time passes.
//
// Usage:
//
//	p := pacing.NewFixed(duration.PacingDefault)
//	for i, c := range candidates {
//	    if i > 0 {
//	        if err := p.Wait(ctx); err != nil {
//	            return err
//	        }
//	    }
//	    try(c)
//	}
package pacing

import (
	"context"
	"time"
)

// Pacer blocks between attempts.
type Pacer interface {
	// Wait blocks for the pacing interval or until ctx is done, in which
	// case it returns ctx.Err().
	Wait(ctx context.Context) error
}

// sleeper is an interface for waiting, allowing tests to override time.After.
type sleeper interface {
	sleep(ctx context.Context, d time.Duration) error
}

// realSleeper uses a timer for production code.
type realSleeper struct{}

func (realSleeper) sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Fixed waits the same Interval before every attempt after the first.
type Fixed struct {
	Interval time.Duration

	s sleeper
}

// NewFixed returns a Fixed pacer. A zero or negative interval disables
// pacing; Wait then only reports context cancellation.
func NewFixed(interval time.Duration) *Fixed {
	return &Fixed{Interval: interval, s: realSleeper{}}
}

// Wait implements Pacer.
func (f *Fixed) Wait(ctx context.Context) error {
	if f == nil || f.Interval <= 0 {
		return ctx.Err()
	}
	s := f.s
	if s == nil {
		s = realSleeper{}
	}
	return s.sleep(ctx, f.Interval)
}

// None never waits.
var None Pacer = NewFixed(0)
