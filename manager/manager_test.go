package manager

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jobmesh/jobmesh/core"
	"github.com/jobmesh/jobmesh/job"
)

// blockingJob returns a job that signals started and then waits for release
// or cancellation.
func blockingJob(name string, started chan<- struct{}, release <-chan struct{}) core.Job {
	return job.NewAction(name, func(ctx context.Context, exec *core.ExecutionContext) bool {
		close(started)
		select {
		case <-ctx.Done():
			return false
		case <-release:
			return true
		}
	})
}

func TestManager_RejectsInvalidRequests(t *testing.T) {
	m := New()
	exec := core.NewExecutionContext()

	ok := <-m.ExecutePipelineAsync(context.Background(), "", job.NewSequence("root"), exec)
	assert.False(t, ok, "empty id should be rejected")

	ok = <-m.ExecutePipelineAsync(context.Background(), "p1", nil, exec)
	assert.False(t, ok, "nil root should be rejected")

	assert.Equal(t, 0, m.RunningCount(), "rejected requests must not be tracked")
}

func TestManager_SuccessfulRunRemovesTrackingEntry(t *testing.T) {
	m := New()
	exec := core.NewExecutionContext()

	root := job.NewAction("ok", func(ctx context.Context, exec *core.ExecutionContext) bool {
		return true
	})

	ok := <-m.ExecutePipelineAsync(context.Background(), "p1", root, exec)
	assert.True(t, ok)
	assert.False(t, m.IsPipelineRunning("p1"))
	assert.Equal(t, 0, m.RunningCount())
}

func TestManager_TracksRunWhileInFlight(t *testing.T) {
	m := New()
	exec := core.NewExecutionContext()

	started := make(chan struct{})
	release := make(chan struct{})
	result := m.ExecutePipelineAsync(context.Background(), "p1", blockingJob("block", started, release), exec)

	<-started
	assert.True(t, m.IsPipelineRunning("p1"))
	assert.Equal(t, 1, m.RunningCount())

	close(release)
	assert.True(t, <-result)
	assert.False(t, m.IsPipelineRunning("p1"))
}

func TestManager_CancelPipeline(t *testing.T) {
	m := New()
	exec := core.NewExecutionContext()

	started := make(chan struct{})
	release := make(chan struct{})
	result := m.ExecutePipelineAsync(context.Background(), "p1", blockingJob("block", started, release), exec)

	<-started
	assert.True(t, m.CancelPipeline("p1"))
	assert.False(t, <-result, "cancelled run reports false")
	assert.False(t, m.IsPipelineRunning("p1"))

	assert.False(t, m.CancelPipeline("p1"), "cancelling a finished pipeline is a no-op")
}

func TestManager_ContextSignalCancelsRun(t *testing.T) {
	m := New()
	exec := core.NewExecutionContext()

	started := make(chan struct{})
	release := make(chan struct{})
	result := m.ExecutePipelineAsync(context.Background(), "p1", blockingJob("block", started, release), exec)

	<-started
	exec.Cancel()
	assert.False(t, <-result, "pipeline's own signal is a valid cancellation source")
}

func TestManager_ExternalTokenCancelsRun(t *testing.T) {
	m := New()
	exec := core.NewExecutionContext()

	ctx, cancel := context.WithCancel(context.Background())
	started := make(chan struct{})
	release := make(chan struct{})
	result := m.ExecutePipelineAsync(ctx, "p1", blockingJob("block", started, release), exec)

	<-started
	cancel()
	assert.False(t, <-result, "caller token is a valid cancellation source")
}

func TestManager_PreCancelledContextFailsAtFirstSuspension(t *testing.T) {
	m := New()
	exec := core.NewExecutionContext()
	exec.Cancel()

	root := job.NewSequence("root", job.NewDelay(time.Minute))

	start := time.Now()
	ok := <-m.ExecutePipelineAsync(context.Background(), "p1", root, exec)
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 10*time.Second)
}

func TestManager_FaultingRootReportsFalse(t *testing.T) {
	m := New()
	exec := core.NewExecutionContext()

	// Ad-hoc root without its own boundary guard.
	root := faultyJob{}

	assert.NotPanics(t, func() {
		assert.False(t, <-m.ExecutePipelineAsync(context.Background(), "p1", root, exec))
	})
	assert.Equal(t, 0, m.RunningCount())
}

type faultyJob struct{}

func (faultyJob) Name() string { return "faulty" }
func (faultyJob) Run(ctx context.Context, exec *core.ExecutionContext) bool {
	panic("boom")
}

func TestManager_CancelAllPipelines(t *testing.T) {
	m := New()

	var results []<-chan bool
	for _, id := range []string{"p1", "p2", "p3"} {
		exec := core.NewExecutionContext()
		started := make(chan struct{})
		results = append(results, m.ExecutePipelineAsync(context.Background(), id, blockingJob(id, started, nil), exec))
		<-started
	}
	require.Equal(t, 3, m.RunningCount())

	m.CancelAllPipelines()
	for _, r := range results {
		assert.False(t, <-r)
	}
	assert.Equal(t, 0, m.RunningCount())
}

func TestManager_NewRunOverwritesStaleEntryWithoutCancellingIt(t *testing.T) {
	m := New()

	execA := core.NewExecutionContext()
	startedA := make(chan struct{})
	releaseA := make(chan struct{})
	resultA := m.ExecutePipelineAsync(context.Background(), "p1", blockingJob("a", startedA, releaseA), execA)
	<-startedA

	execB := core.NewExecutionContext()
	startedB := make(chan struct{})
	releaseB := make(chan struct{})
	resultB := m.ExecutePipelineAsync(context.Background(), "p1", blockingJob("b", startedB, releaseB), execB)
	<-startedB

	// The first run keeps going; only the tracking entry was replaced.
	close(releaseA)
	assert.True(t, <-resultA)
	assert.True(t, m.IsPipelineRunning("p1"), "second run's entry must survive the first run's completion")

	close(releaseB)
	assert.True(t, <-resultB)
	assert.False(t, m.IsPipelineRunning("p1"))
}
