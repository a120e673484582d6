package job

import (
	"context"

	"github.com/jobmesh/jobmesh/core"
)

// ActionFunc is the shape of a user-supplied job body.
type ActionFunc func(ctx context.Context, exec *core.ExecutionContext) bool

// Action wraps a single asynchronous function into a named Job.
type Action struct {
	name string
	fn   ActionFunc
}

// NewAction creates a named action job around fn.
func NewAction(name string, fn ActionFunc) *Action {
	return &Action{name: name, fn: fn}
}

// Name returns the job name.
func (a *Action) Name() string { return a.name }

// Run executes the wrapped function. A nil function is a validation failure
// reported as false; a panic inside fn is contained at this boundary.
func (a *Action) Run(ctx context.Context, exec *core.ExecutionContext) bool {
	if a.fn == nil {
		exec.Logger().Error("action job has no function", "job", a.name)
		return false
	}
	return runGuarded(exec, a.name, func() bool { return a.fn(ctx, exec) })
}

// runGuarded invokes fn containing any panic at the job boundary, logging it
// with the job's name and converting it to a false result.
func runGuarded(exec *core.ExecutionContext, name string, fn func() bool) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			exec.Logger().Error("job fault contained", "job", name, "outcome", core.OutcomeFaulted.String(), "panic", r)
			ok = false
		}
	}()
	return fn()
}
