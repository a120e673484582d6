package core

import "errors"

// ErrDuplicateKind is returned by ExecutionContext.Set when an object of the
// same kind is already stored. It indicates a caller logic bug and is not
// swallowed; use SetOrReplace for intentional overwrites.
var ErrDuplicateKind = errors.New("context object kind already present")

// ErrNilObject is returned when a nil object is passed to a context store
// operation.
var ErrNilObject = errors.New("context object must not be nil")
