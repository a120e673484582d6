package job

import (
	"context"
	"sync"

	"github.com/stretchr/testify/mock"

	"github.com/jobmesh/jobmesh/core"
)

type gameConfig struct {
	Level int
}

// MockJob for testing composite jobs
type MockJob struct {
	mock.Mock
	name string
}

func NewMockJob(name string) *MockJob {
	return &MockJob{name: name}
}

func (m *MockJob) Name() string { return m.name }

func (m *MockJob) Run(ctx context.Context, exec *core.ExecutionContext) bool {
	args := m.Called(ctx, exec)
	return args.Bool(0)
}

// callLog records job invocation order across goroutines.
type callLog struct {
	mu    sync.Mutex
	names []string
}

func (l *callLog) record(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.names = append(l.names, name)
}

func (l *callLog) calls() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, len(l.names))
	copy(out, l.names)
	return out
}

// recorded returns an action job that logs its name and returns result.
func recorded(log *callLog, name string, result bool) core.Job {
	return NewAction(name, func(ctx context.Context, exec *core.ExecutionContext) bool {
		log.record(name)
		return result
	})
}
