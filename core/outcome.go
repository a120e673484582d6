package core

// Outcome classifies how a job or pipeline run ended. It exists for the log
// stream only; the result reported to callers is always a single boolean.
type Outcome int

const (
	// OutcomeCompleted indicates the run finished with a true result.
	OutcomeCompleted Outcome = iota
	// OutcomeFailed indicates an ordinary false result.
	OutcomeFailed
	// OutcomeCancelled indicates the cancellation signal was observed at a
	// suspension point.
	OutcomeCancelled
	// OutcomeTimedOut indicates a wait-until predicate never became true
	// within its bound.
	OutcomeTimedOut
	// OutcomeFaulted indicates a panic was contained at a job boundary.
	OutcomeFaulted
)

// String returns the string representation of the outcome.
func (o Outcome) String() string {
	switch o {
	case OutcomeCompleted:
		return "completed"
	case OutcomeFailed:
		return "failed"
	case OutcomeCancelled:
		return "cancelled"
	case OutcomeTimedOut:
		return "timedout"
	case OutcomeFaulted:
		return "faulted"
	default:
		return "unknown"
	}
}
