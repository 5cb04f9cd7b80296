// Package automation decides how a composed prompt is executed: by the real
// browser-automation backend, or by a bounded simulated wait when that backend
// cannot be used.
package automation

import (
	"context"
	"time"
)

// Ritual names used for logging and metrics.
const (
	RitualBreak   = "break_ritual"
	RitualReentry = "reentry"
)

// ReentryFallbackDelay is the simulated latency of a re-entry.
const ReentryFallbackDelay = 100 * time.Millisecond

// BreakFallbackDelay is the simulated latency of a break ritual:
// seconds/60 of a second, floored at 100ms and capped at 2s.
func BreakFallbackDelay(seconds int) time.Duration {
	proportional := time.Duration(seconds) * time.Second / 60
	return min(2*time.Second, max(100*time.Millisecond, proportional))
}

// Invocation is a single prompt execution handed to a Backend.
type Invocation struct {
	ID            string
	Ritual        string
	Prompt        string
	StartingPage  string
	APIKey        string
	FallbackDelay time.Duration // honoured by Simulated only
}

// Backend executes automation prompts.
type Backend interface {
	// Name identifies the backend in logs.
	Name() string

	// Available reports whether the backend binding is usable right now.
	// Implementations must be cheap and safe for concurrent calls.
	Available() bool

	// Invoke runs the prompt. It blocks until the backend finishes.
	Invoke(ctx context.Context, inv Invocation) error
}

// Simulated stands in for the real backend. It waits for the invocation's
// fallback delay without occupying a worker.
type Simulated struct{}

// Name implements Backend.
func (Simulated) Name() string { return "simulated" }

// Available implements Backend.
func (Simulated) Available() bool { return true }

// Invoke waits for inv.FallbackDelay or until ctx is done.
func (Simulated) Invoke(ctx context.Context, inv Invocation) error {
	if inv.FallbackDelay <= 0 {
		return nil
	}
	timer := time.NewTimer(inv.FallbackDelay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

var _ Backend = Simulated{}
