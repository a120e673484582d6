package job

import (
	"context"
	"fmt"
	"time"

	"github.com/jobmesh/jobmesh/core"
)

// defaultPollInterval is how often WaitUntil re-evaluates its predicate.
const defaultPollInterval = 10 * time.Millisecond

// Delay suspends for a fixed duration, observing the run's cancellation
// signal. Cancellation during (or before) the delay reports the cancelled
// outcome and returns false.
type Delay struct {
	name string
	d    time.Duration
}

// NewDelay creates a delay job.
func NewDelay(d time.Duration) *Delay {
	return &Delay{name: fmt.Sprintf("delay(%s)", d), d: d}
}

// Name returns the job name.
func (d *Delay) Name() string { return d.name }

// Run waits for the configured duration or until ctx is cancelled.
func (d *Delay) Run(ctx context.Context, exec *core.ExecutionContext) bool {
	if ctx.Err() != nil {
		exec.Logger().Info("delay cancelled", "job", d.name, "outcome", core.OutcomeCancelled.String())
		return false
	}
	if d.d <= 0 {
		return true
	}

	timer := time.NewTimer(d.d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		exec.Logger().Info("delay cancelled", "job", d.name, "outcome", core.OutcomeCancelled.String())
		return false
	case <-timer.C:
		return true
	}
}

// WaitUntil polls a predicate until it becomes true, the timeout elapses or
// the run is cancelled. Timeout is an ordinary failure logged distinctly
// from cancellation.
type WaitUntil struct {
	name     string
	pred     func() bool
	timeout  time.Duration
	interval time.Duration
}

// WaitOption customizes a WaitUntil job.
type WaitOption func(w *WaitUntil)

// WithPollInterval overrides the predicate polling interval.
func WithPollInterval(d time.Duration) WaitOption {
	return func(w *WaitUntil) {
		if d > 0 {
			w.interval = d
		}
	}
}

// NewWaitUntil creates a predicate wait job with the given timeout.
func NewWaitUntil(pred func() bool, timeout time.Duration, opts ...WaitOption) *WaitUntil {
	w := &WaitUntil{
		name:     fmt.Sprintf("wait-until(%s)", timeout),
		pred:     pred,
		timeout:  timeout,
		interval: defaultPollInterval,
	}
	for _, o := range opts {
		o(w)
	}
	return w
}

// Name returns the job name.
func (w *WaitUntil) Name() string { return w.name }

// Run polls the predicate at the configured interval. The predicate is
// checked once before any suspension so an already-true condition never waits.
func (w *WaitUntil) Run(ctx context.Context, exec *core.ExecutionContext) bool {
	if w.pred == nil {
		exec.Logger().Error("wait-until job has no predicate", "job", w.name)
		return false
	}
	if ctx.Err() != nil {
		exec.Logger().Info("wait-until cancelled", "job", w.name, "outcome", core.OutcomeCancelled.String())
		return false
	}
	if w.pred() {
		return true
	}

	deadline := time.NewTimer(w.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			exec.Logger().Info("wait-until cancelled", "job", w.name, "outcome", core.OutcomeCancelled.String())
			return false
		case <-deadline.C:
			exec.Logger().Warn("wait-until timed out", "job", w.name, "timeout", w.timeout, "outcome", core.OutcomeTimedOut.String())
			return false
		case <-ticker.C:
			if w.pred() {
				return true
			}
		}
	}
}
