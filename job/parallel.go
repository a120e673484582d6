package job

import (
	"context"
	"sync"

	"github.com/jobmesh/jobmesh/core"
)

// Parallel starts every child concurrently against the same execution
// context and waits for all of them to finish regardless of individual
// outcomes. Siblings are never cancelled on a first failure; the group
// result is the logical AND of all child results.
type Parallel struct {
	name     string
	children []core.Job
}

// NewParallel creates a parallel group over the given children.
func NewParallel(name string, children ...core.Job) *Parallel {
	return &Parallel{name: name, children: children}
}

// Name returns the job name.
func (p *Parallel) Name() string { return p.name }

// Run launches each child in its own goroutine and joins all of them. An
// empty group trivially succeeds. Children start in the order given but make
// no completion-order guarantee.
func (p *Parallel) Run(ctx context.Context, exec *core.ExecutionContext) bool {
	if len(p.children) == 0 {
		exec.Logger().Debug("parallel group is empty", "job", p.name)
		return true
	}

	results := make([]bool, len(p.children))
	var wg sync.WaitGroup

	for i, child := range p.children {
		wg.Add(1)
		go func(i int, child core.Job) {
			defer wg.Done()
			// Guard here too so an unguarded ad-hoc Job cannot crash the group.
			results[i] = runGuarded(exec, child.Name(), func() bool { return child.Run(ctx, exec) })
		}(i, child)
	}

	wg.Wait()

	ok := true
	for _, r := range results {
		ok = ok && r
	}
	if !ok {
		exec.Logger().Debug("parallel group had failures", "job", p.name)
	}
	return ok
}
