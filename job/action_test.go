package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jobmesh/jobmesh/core"
)

func TestAction_Run(t *testing.T) {
	exec := core.NewExecutionContext()

	ok := NewAction("succeeds", func(ctx context.Context, exec *core.ExecutionContext) bool {
		return true
	}).Run(context.Background(), exec)
	assert.True(t, ok)

	ok = NewAction("fails", func(ctx context.Context, exec *core.ExecutionContext) bool {
		return false
	}).Run(context.Background(), exec)
	assert.False(t, ok)
}

func TestAction_NilFunctionFails(t *testing.T) {
	exec := core.NewExecutionContext()

	a := NewAction("empty", nil)
	assert.False(t, a.Run(context.Background(), exec))
	assert.Equal(t, "empty", a.Name())
}

func TestAction_PanicContainedAtBoundary(t *testing.T) {
	exec := core.NewExecutionContext()

	a := NewAction("explodes", func(ctx context.Context, exec *core.ExecutionContext) bool {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		assert.False(t, a.Run(context.Background(), exec))
	})
}

func TestAction_SharesContextStore(t *testing.T) {
	exec := core.NewExecutionContext()

	write := NewAction("write", func(ctx context.Context, exec *core.ExecutionContext) bool {
		exec.SetOrReplace(&gameConfig{Level: 7})
		return true
	})
	read := NewAction("read", func(ctx context.Context, exec *core.ExecutionContext) bool {
		cfg, ok := core.TryGet[*gameConfig](exec)
		return ok && cfg.Level == 7
	})

	assert.True(t, write.Run(context.Background(), exec))
	assert.True(t, read.Run(context.Background(), exec))
}
