// Package manager tracks in-flight pipeline executions. It owns the table of
// running pipelines keyed by identity, creates cancellation scopes linking
// the caller's context with the pipeline's own signal, and guarantees the
// tracking entry and scope are released on every exit path.
package manager

import (
	"context"
	"sync"
	"time"

	"github.com/jobmesh/jobmesh/core"
	"github.com/jobmesh/jobmesh/logging"
)

// Options holds dependency overrides passed to New().
type Options struct {
	// Logger receives run lifecycle reports. Defaults to NoOpLogger.
	Logger logging.Logger
}

// run is the tracking record of one in-flight pipeline execution.
type run struct {
	cancel context.CancelFunc
}

// Manager owns the set of in-flight pipeline executions. Public methods are
// safe for concurrent use.
type Manager struct {
	mu     sync.RWMutex
	runs   map[string]*run
	logger logging.Logger
}

// New constructs a Manager with an empty tracking table.
func New(optFns ...func(o *Options)) *Manager {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	return &Manager{
		runs:   make(map[string]*run),
		logger: opts.Logger,
	}
}

// ExecutePipelineAsync runs root against exec under a cancellation scope
// linked to both ctx and the context's own signal, tracking the run under
// id. The returned channel receives exactly one result and is then closed.
//
// An empty id or nil root is a validation failure: it is logged, nothing is
// recorded, and the channel immediately yields false. Starting a run for an
// id that is already tracked overwrites the tracking entry without
// cancelling the old run; the old run's completion only removes the entry
// if it still points at that run.
func (m *Manager) ExecutePipelineAsync(ctx context.Context, id string, root core.Job, exec *core.ExecutionContext) <-chan bool {
	result := make(chan bool, 1)

	if id == "" || root == nil {
		m.logger.Error("invalid pipeline execution request", "pipeline", id, "has_root", root != nil)
		result <- false
		close(result)
		return result
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if exec == nil {
		exec = core.NewExecutionContext(func(o *core.Options) { o.Logger = m.logger })
	}

	runCtx, cancel := context.WithCancel(ctx)
	unlink := context.AfterFunc(exec.Signal(), cancel)

	r := &run{cancel: cancel}
	m.mu.Lock()
	m.runs[id] = r
	m.mu.Unlock()

	m.logger.Debug("pipeline run started", "pipeline", id)

	go func() {
		// The release is deferred as a safety net and invoked explicitly
		// before the result is delivered, so observers that drain the result
		// channel always see the identity back in the idle state.
		defer close(result)
		defer m.release(id, r, unlink, cancel)

		start := time.Now()
		ok := m.runRoot(runCtx, root, exec)

		outcome := core.OutcomeCompleted
		switch {
		case !ok && runCtx.Err() != nil:
			outcome = core.OutcomeCancelled
		case !ok:
			outcome = core.OutcomeFailed
		}
		m.logger.Info("pipeline run finished", "pipeline", id, "outcome", outcome.String(), "duration", time.Since(start))

		m.release(id, r, unlink, cancel)
		result <- ok
	}()

	return result
}

// release unlinks the context signal, releases the scope and removes the
// tracking entry if it still points at this run. Safe to call twice.
func (m *Manager) release(id string, r *run, unlink func() bool, cancel context.CancelFunc) {
	unlink()
	cancel()
	m.mu.Lock()
	if m.runs[id] == r {
		delete(m.runs, id)
	}
	m.mu.Unlock()
}

// runRoot executes the root job containing any fault that escapes it.
func (m *Manager) runRoot(ctx context.Context, root core.Job, exec *core.ExecutionContext) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("pipeline run faulted", "job", root.Name(), "outcome", core.OutcomeFaulted.String(), "panic", r)
			ok = false
		}
	}()
	return root.Run(ctx, exec)
}

// CancelPipeline signals the tracked scope for id, reporting whether a run
// was tracked. Cancelling a pipeline that already finished is a no-op.
func (m *Manager) CancelPipeline(id string) bool {
	m.mu.RLock()
	r, ok := m.runs[id]
	m.mu.RUnlock()

	if !ok {
		return false
	}
	m.logger.Info("cancelling pipeline run", "pipeline", id)
	r.cancel()
	return true
}

// CancelAllPipelines signals every tracked scope and clears the table.
func (m *Manager) CancelAllPipelines() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for id, r := range m.runs {
		m.logger.Info("cancelling pipeline run", "pipeline", id)
		r.cancel()
	}
	m.runs = make(map[string]*run)
}

// IsPipelineRunning reports whether a run is tracked under id.
func (m *Manager) IsPipelineRunning(id string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.runs[id]
	return ok
}

// RunningCount returns the number of tracked runs.
func (m *Manager) RunningCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.runs)
}
