// Package pipeline provides the fluent builder assembling jobs into a named
// execution flow. A Pipeline owns one ExecutionContext, keeps its job list
// behind a mutex, and snapshots the list before every run so concurrent
// mutation never corrupts an in-flight execution.
package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jobmesh/jobmesh/core"
	"github.com/jobmesh/jobmesh/job"
	"github.com/jobmesh/jobmesh/logging"
	"github.com/jobmesh/jobmesh/manager"
)

// Runner executes a pipeline's root job under tracked cancellation. It is
// satisfied by *manager.Manager.
type Runner interface {
	ExecutePipelineAsync(ctx context.Context, id string, root core.Job, exec *core.ExecutionContext) <-chan bool
}

// Options holds dependency overrides passed to New().
type Options struct {
	// Runner executes and tracks pipeline runs. Defaults to a private manager.
	Runner Runner
	// Logger receives builder and run reports. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Pipeline is a named, ordered collection of jobs plus one owned execution
// context. Mutating methods return the Pipeline for fluent chaining and are
// safe for concurrent use.
type Pipeline struct {
	id     string
	mu     sync.Mutex
	jobs   []core.Job
	exec   *core.ExecutionContext
	runner Runner
	logger logging.Logger
}

// New constructs a Pipeline. An empty id is replaced with a generated one so
// every pipeline has a stable identity.
func New(id string, optFns ...func(o *Options)) *Pipeline {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if id == "" {
		id = uuid.NewString()
	}
	if opts.Runner == nil {
		opts.Runner = manager.New(func(o *manager.Options) { o.Logger = opts.Logger })
	}

	return &Pipeline{
		id:     id,
		exec:   core.NewExecutionContext(func(o *core.Options) { o.Logger = opts.Logger }),
		runner: opts.Runner,
		logger: opts.Logger,
	}
}

// ID returns the pipeline identity.
func (p *Pipeline) ID() string { return p.id }

// Context returns the owned execution context.
func (p *Pipeline) Context() *core.ExecutionContext { return p.exec }

// AddJob appends a job to the list. A nil job is a validation failure that
// is logged and skipped.
func (p *Pipeline) AddJob(j core.Job) *Pipeline {
	if j == nil {
		p.logger.Error("nil job rejected", "pipeline", p.id)
		return p
	}
	p.mu.Lock()
	p.jobs = append(p.jobs, j)
	p.mu.Unlock()
	return p
}

// AddAction appends a named action job around fn.
func (p *Pipeline) AddAction(name string, fn job.ActionFunc) *Pipeline {
	if fn == nil {
		p.logger.Error("nil action rejected", "pipeline", p.id, "job", name)
		return p
	}
	return p.AddJob(job.NewAction(name, fn))
}

// AddTyped appends a typed action job resolving a context object of kind T.
// It is a package function because Go methods cannot be generic.
func AddTyped[T any](p *Pipeline, name string, fn func(ctx context.Context, obj T) bool) *Pipeline {
	if fn == nil {
		p.logger.Error("nil action rejected", "pipeline", p.id, "job", name)
		return p
	}
	return p.AddJob(job.NewTyped[T](name, fn))
}

// AddDelay appends a cooperative delay observing the run's cancellation signal.
func (p *Pipeline) AddDelay(d time.Duration) *Pipeline {
	return p.AddJob(job.NewDelay(d))
}

// AddWaitUntil appends a predicate wait with the given timeout.
func (p *Pipeline) AddWaitUntil(pred func() bool, timeout time.Duration) *Pipeline {
	if pred == nil {
		p.logger.Error("nil predicate rejected", "pipeline", p.id)
		return p
	}
	return p.AddJob(job.NewWaitUntil(pred, timeout))
}

// AddParallel appends a join-all parallel group over the given jobs.
func (p *Pipeline) AddParallel(jobs ...core.Job) *Pipeline {
	return p.AddJob(job.NewParallel("parallel", jobs...))
}

// ClearJobs removes every job from the list. Runs already in flight keep
// their snapshot.
func (p *Pipeline) ClearJobs() *Pipeline {
	p.mu.Lock()
	p.jobs = nil
	p.mu.Unlock()
	return p
}

// Jobs returns a defensive copy of the current job list.
func (p *Pipeline) Jobs() []core.Job {
	p.mu.Lock()
	defer p.mu.Unlock()
	jobs := make([]core.Job, len(p.jobs))
	copy(jobs, p.jobs)
	return jobs
}

// Len returns the number of jobs currently in the list.
func (p *Pipeline) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.jobs)
}

// SetContext stores obj in the owned execution context, failing with
// core.ErrDuplicateKind if an object of that kind already exists. Mutation
// failure is surfaced explicitly rather than silently swallowed mid-chain.
func (p *Pipeline) SetContext(obj any) error {
	return p.exec.Set(obj)
}

// SetOrUpdateContext upserts obj into the owned execution context.
func (p *Pipeline) SetOrUpdateContext(obj any) *Pipeline {
	p.exec.SetOrReplace(obj)
	return p
}

// Cancel signals the owned context's cancellation signal.
func (p *Pipeline) Cancel() {
	p.exec.Cancel()
}

// ExecuteAsync snapshots the job list, wraps it in a single sequential root
// job and hands it to the Runner keyed by the pipeline identity. An empty
// job list succeeds immediately (logged as a warning).
func (p *Pipeline) ExecuteAsync(ctx context.Context) <-chan bool {
	snapshot := p.Jobs()
	if len(snapshot) == 0 {
		p.logger.Warn("pipeline has no jobs", "pipeline", p.id)
		return immediateResult(true)
	}

	root := job.NewSequence(p.id, snapshot...)
	return p.runner.ExecutePipelineAsync(ctx, p.id, root, p.exec)
}

// Execute runs the pipeline and blocks until its single result arrives.
func (p *Pipeline) Execute(ctx context.Context) bool {
	return <-p.ExecuteAsync(ctx)
}

func immediateResult(ok bool) <-chan bool {
	ch := make(chan bool, 1)
	ch <- ok
	close(ch)
	return ch
}
