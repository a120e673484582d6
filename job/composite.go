package job

import (
	"context"

	"github.com/jobmesh/jobmesh/core"
)

// Sequence runs its children in strict list order, short-circuiting on the
// first false result.
type Sequence struct {
	name     string
	children []core.Job
}

// NewSequence creates a sequence over the given children.
func NewSequence(name string, children ...core.Job) *Sequence {
	return &Sequence{name: name, children: children}
}

// Name returns the job name.
func (s *Sequence) Name() string { return s.name }

// Len returns the number of children.
func (s *Sequence) Len() int { return len(s.children) }

// Run executes each child in order. The first failure stops the walk; no
// subsequent child runs. An empty sequence succeeds.
func (s *Sequence) Run(ctx context.Context, exec *core.ExecutionContext) bool {
	for _, child := range s.children {
		if !child.Run(ctx, exec) {
			exec.Logger().Debug("sequence short-circuited", "job", s.name, "failed_child", child.Name())
			return false
		}
	}
	return true
}

// Composite owns ordered pre-jobs, one main body and ordered post-jobs.
//
// Execution order: all pre-jobs in sequence (a failure skips the remaining
// pre-jobs, the main body and all post-jobs); then the main body (a failure
// skips the post-jobs); then all post-jobs in sequence with the same
// short-circuit rule. The overall result is true only if every stage that
// actually executed returned true.
type Composite struct {
	name string
	pre  []core.Job
	main core.Job
	post []core.Job
}

// CompositeOption customizes a Composite.
type CompositeOption func(c *Composite)

// WithPre appends pre-jobs run before the main body.
func WithPre(jobs ...core.Job) CompositeOption {
	return func(c *Composite) { c.pre = append(c.pre, jobs...) }
}

// WithPost appends post-jobs run after a successful main body.
func WithPost(jobs ...core.Job) CompositeOption {
	return func(c *Composite) { c.post = append(c.post, jobs...) }
}

// NewComposite creates a composite around main. A nil main body is treated
// as a trivially successful stage.
func NewComposite(name string, main core.Job, opts ...CompositeOption) *Composite {
	c := &Composite{name: name, main: main}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Name returns the job name.
func (c *Composite) Name() string { return c.name }

// Run executes pre, main and post stages per the composite ordering rules.
func (c *Composite) Run(ctx context.Context, exec *core.ExecutionContext) bool {
	for _, pre := range c.pre {
		if !pre.Run(ctx, exec) {
			exec.Logger().Debug("composite pre-job failed", "job", c.name, "failed_child", pre.Name())
			return false
		}
	}

	if c.main != nil && !c.main.Run(ctx, exec) {
		exec.Logger().Debug("composite main job failed", "job", c.name, "failed_child", c.main.Name())
		return false
	}

	for _, post := range c.post {
		if !post.Run(ctx, exec) {
			exec.Logger().Debug("composite post-job failed", "job", c.name, "failed_child", post.Name())
			return false
		}
	}

	return true
}
