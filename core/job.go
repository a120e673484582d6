package core

import "context"

// Job is a unit of work returning a boolean success indicator. Jobs are
// usable standalone or composed into sequences, composites and parallel
// groups.
//
// Contract:
//   - Run returns exactly one boolean and never panics past its boundary;
//     implementations contain faults, log them and report false.
//   - ctx is the cancellation scope for this run. It is only observed at
//     suspension points (delays, predicate polls, parallel joins); a job
//     that never yields cannot be interrupted.
//   - exec is shared between all jobs of one pipeline run. Parallel
//     branches may read and write it concurrently; coordination of a
//     context object's internal fields is the job author's responsibility.
type Job interface {
	// Name returns the human-readable name used in log output.
	Name() string

	// Run executes the job against the shared execution context.
	Run(ctx context.Context, exec *ExecutionContext) bool
}
