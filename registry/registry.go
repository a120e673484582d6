// Package registry lets distributed call sites contribute jobs to named
// pipelines, either directly or into priority buckets that are assembled
// into a runnable job list on demand. A Registry is an injectable instance
// rather than a hidden global; it starts with empty tables and tears down
// via Clear/ClearAll.
package registry

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jobmesh/jobmesh/core"
	"github.com/jobmesh/jobmesh/job"
	"github.com/jobmesh/jobmesh/logging"
	"github.com/jobmesh/jobmesh/manager"
	"github.com/jobmesh/jobmesh/pipeline"
)

// Options holds dependency overrides passed to New().
type Options struct {
	// Manager tracks and cancels in-flight runs for all registry pipelines.
	// Defaults to a fresh manager.
	Manager *manager.Manager
	// Logger receives registry reports. Defaults to NoOpLogger.
	Logger logging.Logger
}

// Registry maps pipeline identities to pipelines and to priority-bucketed
// job registrations. All methods are safe for concurrent use.
type Registry struct {
	mu        sync.RWMutex
	pipelines map[string]*pipeline.Pipeline
	buckets   map[string]map[int][]core.Job
	manager   *manager.Manager
	logger    logging.Logger
}

// New constructs a Registry with empty tables.
func New(optFns ...func(o *Options)) *Registry {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	if opts.Manager == nil {
		opts.Manager = manager.New(func(o *manager.Options) { o.Logger = opts.Logger })
	}

	return &Registry{
		pipelines: make(map[string]*pipeline.Pipeline),
		buckets:   make(map[string]map[int][]core.Job),
		manager:   opts.Manager,
		logger:    opts.Logger,
	}
}

// Manager returns the execution manager shared by all registry pipelines.
func (r *Registry) Manager() *manager.Manager { return r.manager }

// GetOrCreatePipeline returns the pipeline for key, creating it (and an
// empty bucket map) if absent. An empty key is a validation failure.
func (r *Registry) GetOrCreatePipeline(key string) *pipeline.Pipeline {
	if key == "" {
		r.logger.Error("empty pipeline key rejected")
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.getOrCreateLocked(key)
}

// getOrCreateLocked creates the pipeline and bucket map for key; the caller
// must hold the write lock.
func (r *Registry) getOrCreateLocked(key string) *pipeline.Pipeline {
	if p, ok := r.pipelines[key]; ok {
		return p
	}
	p := pipeline.New(key, func(o *pipeline.Options) {
		o.Runner = r.manager
		o.Logger = r.logger
	})
	r.pipelines[key] = p
	if _, ok := r.buckets[key]; !ok {
		r.buckets[key] = make(map[int][]core.Job)
	}
	return p
}

// RegisterJob appends j directly to the named pipeline's job list,
// independent of any priority registrations.
func (r *Registry) RegisterJob(key string, j core.Job) {
	if j == nil {
		r.logger.Error("nil job rejected", "pipeline", key)
		return
	}
	if p := r.GetOrCreatePipeline(key); p != nil {
		p.AddJob(j)
	}
}

// RegisterAction appends a named action job directly to the named pipeline.
func (r *Registry) RegisterAction(key, name string, fn job.ActionFunc) {
	if fn == nil {
		r.logger.Error("nil action rejected", "pipeline", key, "job", name)
		return
	}
	r.RegisterJob(key, job.NewAction(name, fn))
}

// RegisterJobWithPriority appends j to the bucket for priority, creating the
// bucket if absent. Buckets are visited in ascending priority order, jobs
// within a bucket in registration order.
func (r *Registry) RegisterJobWithPriority(key string, j core.Job, priority int) {
	if key == "" || j == nil {
		r.logger.Error("invalid priority registration", "pipeline", key, "has_job", j != nil)
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.getOrCreateLocked(key)
	r.buckets[key][priority] = append(r.buckets[key][priority], j)
}

// RegisterActionWithPriority appends a named action job to the bucket for priority.
func (r *Registry) RegisterActionWithPriority(key, name string, fn job.ActionFunc, priority int) {
	if fn == nil {
		r.logger.Error("nil action rejected", "pipeline", key, "job", name)
		return
	}
	r.RegisterJobWithPriority(key, job.NewAction(name, fn), priority)
}

// BuildPriorityPipeline replaces the named pipeline's job list with the
// contents of its priority buckets, walked in ascending priority order. The
// rebuild is idempotent. Returns nil (logged as a warning) when no buckets
// are registered for key.
func (r *Registry) BuildPriorityPipeline(key string) *pipeline.Pipeline {
	r.mu.Lock()
	defer r.mu.Unlock()

	buckets := r.buckets[key]
	if len(buckets) == 0 {
		r.logger.Warn("no priority registrations for pipeline", "pipeline", key)
		return nil
	}

	priorities := make([]int, 0, len(buckets))
	for prio := range buckets {
		priorities = append(priorities, prio)
	}
	sort.Ints(priorities)

	p := r.getOrCreateLocked(key)
	p.ClearJobs()
	for _, prio := range priorities {
		for _, j := range buckets[prio] {
			p.AddJob(j)
		}
	}
	return p
}

// ExecutePriorityPipelineAsync cancels any in-flight run for key, signals
// the pipeline's own cancellation, then rebuilds from priority buckets and
// executes. Re-invocations of the same named pipeline never race against a
// stale prior run. The cancellation epoch is reset before the new run so the
// fresh scope is not born cancelled.
func (r *Registry) ExecutePriorityPipelineAsync(ctx context.Context, key string) <-chan bool {
	r.manager.CancelPipeline(key)

	r.mu.RLock()
	p := r.pipelines[key]
	r.mu.RUnlock()
	if p != nil {
		p.Context().Cancel()
		p.Context().ResetCancellation()
	}

	built := r.BuildPriorityPipeline(key)
	if built == nil {
		return immediateResult(false)
	}
	return built.ExecuteAsync(ctx)
}

// ExecuteAsync runs the named pipeline's current job list as-is, without a
// rebuild. An unknown key is logged and yields false.
func (r *Registry) ExecuteAsync(ctx context.Context, key string) <-chan bool {
	r.mu.RLock()
	p := r.pipelines[key]
	r.mu.RUnlock()

	if p == nil {
		r.logger.Warn("unknown pipeline", "pipeline", key)
		return immediateResult(false)
	}
	return p.ExecuteAsync(ctx)
}

// SetContextObject stores obj in the named pipeline's execution context,
// surfacing core.ErrDuplicateKind to the caller.
func (r *Registry) SetContextObject(key string, obj any) error {
	p := r.GetOrCreatePipeline(key)
	if p == nil {
		return errors.New("empty pipeline key")
	}
	return p.SetContext(obj)
}

// SetOrUpdateContextObject upserts obj into the named pipeline's execution context.
func (r *Registry) SetOrUpdateContextObject(key string, obj any) {
	if p := r.GetOrCreatePipeline(key); p != nil {
		p.SetOrUpdateContext(obj)
	}
}

// CancelPipeline signals the named pipeline's own cancellation and asks the
// manager to cancel any tracked run for the identity.
func (r *Registry) CancelPipeline(key string) {
	r.mu.RLock()
	p := r.pipelines[key]
	r.mu.RUnlock()

	if p != nil {
		p.Context().Cancel()
	}
	r.manager.CancelPipeline(key)
}

// Clear cancels and removes all tracked state for key: the pipeline, its
// context and its priority buckets.
func (r *Registry) Clear(key string) {
	r.mu.Lock()
	p := r.pipelines[key]
	delete(r.pipelines, key)
	delete(r.buckets, key)
	r.mu.Unlock()

	r.manager.CancelPipeline(key)
	if p != nil {
		p.Context().Dispose()
	}
}

// ClearAll cancels every tracked run and drops all pipelines and buckets.
func (r *Registry) ClearAll() {
	r.mu.Lock()
	pipelines := r.pipelines
	r.pipelines = make(map[string]*pipeline.Pipeline)
	r.buckets = make(map[string]map[int][]core.Job)
	r.mu.Unlock()

	r.manager.CancelAllPipelines()
	for _, p := range pipelines {
		p.Context().Dispose()
	}
}

// HasPipeline reports whether a pipeline exists for key.
func (r *Registry) HasPipeline(key string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.pipelines[key]
	return ok
}

// Pipelines returns the number of registered pipelines.
func (r *Registry) Pipelines() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pipelines)
}

func immediateResult(ok bool) <-chan bool {
	ch := make(chan bool, 1)
	ch <- ok
	close(ch)
	return ch
}
