package job

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobmesh/jobmesh/core"
)

func TestTyped_ResolvesContextObject(t *testing.T) {
	exec := core.NewExecutionContext()
	require.NoError(t, exec.Set(&gameConfig{Level: 4}))

	j := NewTyped("check-level", func(ctx context.Context, cfg *gameConfig) bool {
		return cfg.Level == 4
	})

	assert.True(t, j.Run(context.Background(), exec))
}

func TestTyped_MissingKindIsFailureNotPanic(t *testing.T) {
	exec := core.NewExecutionContext()

	j := NewTyped("check-level", func(ctx context.Context, cfg *gameConfig) bool {
		return true
	})

	assert.NotPanics(t, func() {
		assert.False(t, j.Run(context.Background(), exec))
	})
}

func TestTyped_NilFunctionFails(t *testing.T) {
	exec := core.NewExecutionContext()

	j := NewTyped[*gameConfig]("empty", nil)
	assert.False(t, j.Run(context.Background(), exec))
}

func TestTyped_StoreItselfResolvable(t *testing.T) {
	exec := core.NewExecutionContext()
	require.NoError(t, exec.Set(&gameConfig{Level: 9}))

	j := NewTyped("via-store", func(ctx context.Context, ec *core.ExecutionContext) bool {
		cfg, ok := core.TryGet[*gameConfig](ec)
		return ok && cfg.Level == 9
	})

	assert.True(t, j.Run(context.Background(), exec))
}

func TestTyped_PanicContainedAtBoundary(t *testing.T) {
	exec := core.NewExecutionContext()
	require.NoError(t, exec.Set(&gameConfig{Level: 1}))

	j := NewTyped("explodes", func(ctx context.Context, cfg *gameConfig) bool {
		panic("boom")
	})

	assert.NotPanics(t, func() {
		assert.False(t, j.Run(context.Background(), exec))
	})
}
