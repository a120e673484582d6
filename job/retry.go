package job

import (
	"context"
	"time"

	"github.com/jobmesh/jobmesh/core"
)

// Retry repeats a child job until it succeeds, up to a maximum attempt
// count, with an optional interval between attempts. The interval is a
// suspension point observing the run's cancellation signal.
type Retry struct {
	name        string
	child       core.Job
	maxAttempts int
	interval    time.Duration
}

// RetryOption customizes a Retry job.
type RetryOption func(r *Retry)

// WithMaxAttempts sets the maximum number of attempts (default 3).
func WithMaxAttempts(n int) RetryOption {
	return func(r *Retry) {
		if n > 0 {
			r.maxAttempts = n
		}
	}
}

// WithInterval sets the delay between attempts (default none).
func WithInterval(d time.Duration) RetryOption {
	return func(r *Retry) { r.interval = d }
}

// NewRetry creates a retry wrapper around child.
func NewRetry(name string, child core.Job, opts ...RetryOption) *Retry {
	r := &Retry{name: name, child: child, maxAttempts: 3}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Name returns the job name.
func (r *Retry) Name() string { return r.name }

// Run executes the child until the first success. Exhausting all attempts is
// an ordinary failure; cancellation between attempts is logged distinctly.
func (r *Retry) Run(ctx context.Context, exec *core.ExecutionContext) bool {
	if r.child == nil {
		exec.Logger().Error("retry job has no child", "job", r.name)
		return false
	}

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			exec.Logger().Info("retry cancelled", "job", r.name, "attempt", attempt, "outcome", core.OutcomeCancelled.String())
			return false
		}

		if r.child.Run(ctx, exec) {
			return true
		}

		if attempt < r.maxAttempts && r.interval > 0 {
			timer := time.NewTimer(r.interval)
			select {
			case <-ctx.Done():
				timer.Stop()
				exec.Logger().Info("retry cancelled", "job", r.name, "attempt", attempt, "outcome", core.OutcomeCancelled.String())
				return false
			case <-timer.C:
			}
		}
	}

	exec.Logger().Warn("retry attempts exhausted", "job", r.name, "attempts", r.maxAttempts)
	return false
}
