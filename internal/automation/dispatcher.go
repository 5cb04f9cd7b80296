package automation

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"

	"github.com/neuronudge/nova-bridge/internal/metrics"
)

const (
	// CredentialEnv holds the API key that gates the real backend.
	CredentialEnv = "NOVA_ACT_API_KEY"

	// SkipReasonUnavailable is reported when the simulated backend ran instead.
	SkipReasonUnavailable = "nova_unavailable"

	defaultWorkers = 4
)

// EnvLookup reads a process environment value. os.LookupEnv by default.
type EnvLookup func(key string) (string, bool)

// Job is a composed prompt waiting to be dispatched.
type Job struct {
	Ritual        string
	Prompt        string
	StartingPage  string
	FallbackDelay time.Duration
}

// Result reports how a job was executed.
type Result struct {
	Nova    bool
	Skipped string
}

// Dispatcher routes jobs to the real backend when it is usable and to the
// simulated backend otherwise. Availability is re-checked on every dispatch.
type Dispatcher struct {
	backend  Backend
	fallback Backend
	lookup   EnvLookup
	pool     *semaphore.Weighted
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithEnvLookup replaces the environment accessor.
func WithEnvLookup(lookup EnvLookup) Option {
	return func(d *Dispatcher) {
		if lookup != nil {
			d.lookup = lookup
		}
	}
}

// WithWorkers bounds the number of concurrent real invocations.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.pool = semaphore.NewWeighted(int64(n))
		}
	}
}

// WithFallback replaces the simulated backend.
func WithFallback(b Backend) Option {
	return func(d *Dispatcher) {
		if b != nil {
			d.fallback = b
		}
	}
}

// WithMetrics records dispatch metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(d *Dispatcher) { d.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		if logger != nil {
			d.logger = logger
		}
	}
}

// NewDispatcher creates a dispatcher. backend may be nil when no real
// automation binding is compiled in or configured.
func NewDispatcher(backend Backend, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		backend:  backend,
		fallback: Simulated{},
		lookup:   os.LookupEnv,
		pool:     semaphore.NewWeighted(defaultWorkers),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Available reports whether the real backend would be used right now.
func (d *Dispatcher) Available() bool {
	_, reason := d.availability()
	return reason == ""
}

func (d *Dispatcher) credential() string {
	value, ok := d.lookup(CredentialEnv)
	if !ok {
		return ""
	}
	return strings.TrimSpace(value)
}

// availability returns the credential, or the reason the real backend
// cannot be used.
func (d *Dispatcher) availability() (apiKey, reason string) {
	if d.backend == nil || !d.backend.Available() {
		return "", "automation backend not installed"
	}
	apiKey = d.credential()
	if apiKey == "" {
		return "", CredentialEnv + " not set"
	}
	return apiKey, ""
}

// Dispatch executes the job. Backend failures are logged and returned as
// *DispatchError; they never fall back to the simulated path.
func (d *Dispatcher) Dispatch(ctx context.Context, job Job) (Result, error) {
	inv := Invocation{
		ID:            uuid.NewString(),
		Ritual:        job.Ritual,
		Prompt:        job.Prompt,
		StartingPage:  job.StartingPage,
		FallbackDelay: job.FallbackDelay,
	}
	start := time.Now()

	apiKey, reason := d.availability()
	if reason != "" {
		d.logger.Warn("Nova unavailable, running in dry-run mode",
			"ritual", job.Ritual,
			"dispatch_id", inv.ID,
			"reason", reason,
			"delay", job.FallbackDelay)
		if err := d.fallback.Invoke(ctx, inv); err != nil {
			return Result{}, fmt.Errorf("simulated %s: %w", job.Ritual, err)
		}
		d.metrics.ObserveDispatch(job.Ritual, metrics.ModeSimulated, time.Since(start))
		return Result{Nova: false, Skipped: SkipReasonUnavailable}, nil
	}

	inv.APIKey = apiKey
	d.logger.Info("Dispatching to Nova",
		"ritual", job.Ritual,
		"dispatch_id", inv.ID,
		"backend", d.backend.Name(),
		"starting_page", job.StartingPage)

	if err := d.offload(ctx, inv); err != nil {
		if ctx.Err() != nil {
			d.logger.Warn("Nova invocation interrupted",
				"ritual", job.Ritual,
				"dispatch_id", inv.ID,
				"error", err.Error())
			return Result{}, fmt.Errorf("%s dispatch: %w", job.Ritual, ctx.Err())
		}
		d.logger.Error("Nova invocation failed",
			"ritual", job.Ritual,
			"dispatch_id", inv.ID,
			"error", err.Error())
		d.metrics.ObserveFailure(job.Ritual)
		return Result{}, &DispatchError{Ritual: job.Ritual, Backend: d.backend.Name(), Err: err}
	}

	elapsed := time.Since(start)
	d.metrics.ObserveDispatch(job.Ritual, metrics.ModeNova, elapsed)
	d.logger.Info("Nova invocation completed",
		"ritual", job.Ritual,
		"dispatch_id", inv.ID,
		"duration", elapsed)
	return Result{Nova: true}, nil
}

// offload runs the blocking backend call on a pooled worker goroutine and
// waits for it or for ctx. A panic in the backend is returned as an error.
func (d *Dispatcher) offload(ctx context.Context, inv Invocation) error {
	if err := d.pool.Acquire(ctx, 1); err != nil {
		return err
	}

	done := make(chan error, 1)
	go func() {
		defer d.pool.Release(1)
		defer func() {
			if p := recover(); p != nil {
				done <- fmt.Errorf("backend panic: %v", p)
			}
		}()
		done <- d.backend.Invoke(ctx, inv)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
