// Package core defines the fundamental contracts of the engine: the Job
// interface every unit of work implements, the ExecutionContext that jobs
// share (a typed object store plus a resettable cancellation signal), the
// Outcome classification used for log reporting, and the error values
// surfaced to callers of the construction APIs.
package core
