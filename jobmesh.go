// Package jobmesh provides a high-level façade over the pipeline registry
// and execution manager, enabling quick assembly of asynchronous job flows.
// Most applications interact with this package by:
//  1. Creating a Mesh via New() (optionally supplying a structured logger)
//  2. Registering jobs against named pipelines, directly or with priorities
//  3. Executing pipelines asynchronously (ExecuteAsync /
//     ExecutePriorityAsync) or synchronously (ExecuteSync)
//
// The façade delegates orchestration to registry.Registry and
// manager.Manager while keeping setup and usage ergonomics concise. The
// defaults are safe for local development and testing; production users
// typically supply a structured logger.
package jobmesh

import (
	"context"

	"github.com/jobmesh/jobmesh/core"
	"github.com/jobmesh/jobmesh/job"
	"github.com/jobmesh/jobmesh/logging"
	"github.com/jobmesh/jobmesh/manager"
	"github.com/jobmesh/jobmesh/pipeline"
	"github.com/jobmesh/jobmesh/registry"
)

// Options configures the Mesh instance.
type Options struct {
	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Mesh is the high-level façade aggregating the registry and the execution manager.
type Mesh struct {
	registry *registry.Registry
	manager  *manager.Manager
	logger   logging.Logger
}

// New creates a new Mesh instance with optional overrides.
func New(optFns ...func(o *Options)) *Mesh {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	m := manager.New(func(o *manager.Options) { o.Logger = opts.Logger })
	r := registry.New(func(o *registry.Options) {
		o.Manager = m
		o.Logger = opts.Logger
	})

	return &Mesh{registry: r, manager: m, logger: opts.Logger}
}

// Registry returns the underlying pipeline registry.
func (m *Mesh) Registry() *registry.Registry { return m.registry }

// Manager returns the underlying execution manager.
func (m *Mesh) Manager() *manager.Manager { return m.manager }

// Pipeline returns the named pipeline, creating it on first use.
func (m *Mesh) Pipeline(key string) *pipeline.Pipeline {
	return m.registry.GetOrCreatePipeline(key)
}

// RegisterJob appends j directly to the named pipeline.
func (m *Mesh) RegisterJob(key string, j core.Job) { m.registry.RegisterJob(key, j) }

// RegisterAction appends a named action job directly to the named pipeline.
func (m *Mesh) RegisterAction(key, name string, fn job.ActionFunc) {
	m.registry.RegisterAction(key, name, fn)
}

// RegisterJobWithPriority contributes j to the named pipeline's priority bucket.
func (m *Mesh) RegisterJobWithPriority(key string, j core.Job, priority int) {
	m.registry.RegisterJobWithPriority(key, j, priority)
}

// RegisterActionWithPriority contributes a named action job to the priority bucket.
func (m *Mesh) RegisterActionWithPriority(key, name string, fn job.ActionFunc, priority int) {
	m.registry.RegisterActionWithPriority(key, name, fn, priority)
}

// ExecuteAsync runs the named pipeline's current job list.
func (m *Mesh) ExecuteAsync(ctx context.Context, key string) <-chan bool {
	return m.registry.ExecuteAsync(ctx, key)
}

// ExecutePriorityAsync cancels any stale run, rebuilds the named pipeline
// from its priority buckets and executes it.
func (m *Mesh) ExecutePriorityAsync(ctx context.Context, key string) <-chan bool {
	return m.registry.ExecutePriorityPipelineAsync(ctx, key)
}

// ExecuteSync is a synchronous helper that drains the async result, honoring
// ctx while waiting.
func (m *Mesh) ExecuteSync(ctx context.Context, key string) bool {
	select {
	case ok := <-m.registry.ExecuteAsync(ctx, key):
		return ok
	case <-ctx.Done():
		return false
	}
}

// Cancel signals cancellation for the named pipeline and its tracked run.
func (m *Mesh) Cancel(key string) { m.registry.CancelPipeline(key) }

// CancelAll signals every tracked run.
func (m *Mesh) CancelAll() { m.manager.CancelAllPipelines() }

// Running reports whether a run is tracked for the named pipeline.
func (m *Mesh) Running(key string) bool { return m.manager.IsPipelineRunning(key) }

// RunningCount returns the number of tracked runs.
func (m *Mesh) RunningCount() int { return m.manager.RunningCount() }

// Shutdown cancels all runs and drops every pipeline and bucket.
func (m *Mesh) Shutdown() {
	m.manager.CancelAllPipelines()
	m.registry.ClearAll()
}
