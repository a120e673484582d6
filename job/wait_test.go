package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jobmesh/jobmesh/core"
)

func TestDelay_Completes(t *testing.T) {
	exec := core.NewExecutionContext()

	d := NewDelay(5 * time.Millisecond)
	assert.True(t, d.Run(context.Background(), exec))
}

func TestDelay_ZeroDurationSucceedsImmediately(t *testing.T) {
	exec := core.NewExecutionContext()
	assert.True(t, NewDelay(0).Run(context.Background(), exec))
}

func TestDelay_CancelledBeforeRunFails(t *testing.T) {
	exec := core.NewExecutionContext()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, NewDelay(0).Run(ctx, exec))
}

func TestDelay_CancelledDuringRunFails(t *testing.T) {
	exec := core.NewExecutionContext()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	assert.False(t, NewDelay(time.Minute).Run(ctx, exec))
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestWaitUntil_PredicateAlreadyTrue(t *testing.T) {
	exec := core.NewExecutionContext()

	w := NewWaitUntil(func() bool { return true }, time.Minute)
	assert.True(t, w.Run(context.Background(), exec))
}

func TestWaitUntil_PredicateBecomesTrue(t *testing.T) {
	exec := core.NewExecutionContext()

	var flips atomic.Int32
	w := NewWaitUntil(func() bool {
		return flips.Add(1) >= 3
	}, time.Minute, WithPollInterval(time.Millisecond))

	assert.True(t, w.Run(context.Background(), exec))
}

func TestWaitUntil_TimeoutFails(t *testing.T) {
	exec := core.NewExecutionContext()

	w := NewWaitUntil(func() bool { return false }, 20*time.Millisecond,
		WithPollInterval(time.Millisecond))

	assert.False(t, w.Run(context.Background(), exec))
}

func TestWaitUntil_CancellationFails(t *testing.T) {
	exec := core.NewExecutionContext()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	w := NewWaitUntil(func() bool { return false }, time.Minute,
		WithPollInterval(time.Millisecond))

	assert.False(t, w.Run(ctx, exec))
}

func TestWaitUntil_NilPredicateFails(t *testing.T) {
	exec := core.NewExecutionContext()
	assert.False(t, NewWaitUntil(nil, time.Minute).Run(context.Background(), exec))
}
