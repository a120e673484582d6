package job

import (
	"context"

	"github.com/jobmesh/jobmesh/core"
)

// Typed wraps a function over a single context object of kind T. At run time
// the object is resolved from the execution context; a lookup miss is a type
// mismatch reported as failure, never a panic.
type Typed[T any] struct {
	name string
	fn   func(ctx context.Context, obj T) bool
}

// NewTyped creates a named typed job around fn.
func NewTyped[T any](name string, fn func(ctx context.Context, obj T) bool) *Typed[T] {
	return &Typed[T]{name: name, fn: fn}
}

// Name returns the job name.
func (t *Typed[T]) Name() string { return t.name }

// Run resolves the T instance from exec and executes the wrapped function.
// Missing function or missing context object are logged and reported false.
func (t *Typed[T]) Run(ctx context.Context, exec *core.ExecutionContext) bool {
	if t.fn == nil {
		exec.Logger().Error("typed job has no function", "job", t.name, "kind", core.KindName[T]())
		return false
	}

	obj, ok := core.TryGet[T](exec)
	if !ok {
		exec.Logger().Error("typed job could not resolve context object", "job", t.name, "kind", core.KindName[T]())
		return false
	}

	return runGuarded(exec, t.name, func() bool { return t.fn(ctx, obj) })
}
