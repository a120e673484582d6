package core

import (
	"context"
	"fmt"
	"reflect"
	"sync"

	"github.com/jobmesh/jobmesh/logging"
)

// ExecutionContext is the shared execution scope of a pipeline run. It holds
// at most one context object per kind (the object's dynamic type), a
// cancellation signal that can be reset between runs, and the logger jobs
// report through. It is safe for concurrent access from parallel branches.
//
// Contract:
//   - Set enforces the one-instance-per-kind invariant; SetOrReplace is the
//     explicit upsert.
//   - The store is keyed by the object's concrete type; it is not a general
//     key/value store and has no iteration order.
//   - Cancel affects the current signal epoch only; ResetCancellation
//     discards it and installs a fresh, un-cancelled one.
type ExecutionContext struct {
	mu     sync.RWMutex
	store  map[reflect.Type]any
	signal context.Context
	cancel context.CancelFunc
	logger logging.Logger
}

// Options configures construction of an ExecutionContext.
type Options struct {
	// Logger receives job boundary and cancellation reports. Defaults to NoOpLogger.
	Logger logging.Logger
}

// NewExecutionContext constructs an empty context with a fresh cancellation signal.
func NewExecutionContext(optFns ...func(o *Options)) *ExecutionContext {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	signal, cancel := context.WithCancel(context.Background())

	return &ExecutionContext{
		store:  make(map[reflect.Type]any),
		signal: signal,
		cancel: cancel,
		logger: opts.Logger,
	}
}

// Set stores obj under its concrete kind. It fails with ErrDuplicateKind if
// an object of that kind is already present and with ErrNilObject for nil.
func (ec *ExecutionContext) Set(obj any) error {
	if obj == nil {
		return ErrNilObject
	}
	kind := reflect.TypeOf(obj)

	ec.mu.Lock()
	defer ec.mu.Unlock()

	if _, exists := ec.store[kind]; exists {
		return fmt.Errorf("kind %s: %w", kind, ErrDuplicateKind)
	}
	ec.store[kind] = obj

	return nil
}

// SetOrReplace stores obj under its concrete kind, overwriting any prior
// value of that kind. A nil obj is ignored.
func (ec *ExecutionContext) SetOrReplace(obj any) {
	if obj == nil {
		return
	}
	kind := reflect.TypeOf(obj)

	ec.mu.Lock()
	defer ec.mu.Unlock()
	ec.store[kind] = obj
}

// Len returns the number of stored context objects.
func (ec *ExecutionContext) Len() int {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return len(ec.store)
}

// Cancel transitions the current cancellation signal to cancelled. It is
// idempotent; already-returned jobs are unaffected.
func (ec *ExecutionContext) Cancel() {
	ec.mu.RLock()
	cancel := ec.cancel
	ec.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
}

// ResetCancellation discards the current signal and installs a fresh,
// un-cancelled one, starting a new cancellation epoch. The old signal is
// cancelled so observers of the previous epoch are released.
func (ec *ExecutionContext) ResetCancellation() {
	signal, cancel := context.WithCancel(context.Background())

	ec.mu.Lock()
	old := ec.cancel
	ec.signal = signal
	ec.cancel = cancel
	ec.mu.Unlock()

	if old != nil {
		old()
	}
}

// Signal returns the current epoch's cancellation signal.
func (ec *ExecutionContext) Signal() context.Context {
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	return ec.signal
}

// Done returns a channel closed when the current signal is cancelled.
func (ec *ExecutionContext) Done() <-chan struct{} { return ec.Signal().Done() }

// Cancelled reports whether the current signal has been cancelled.
func (ec *ExecutionContext) Cancelled() bool { return ec.Signal().Err() != nil }

// Dispose clears the store and releases the cancellation signal. The context
// must not be reused for further runs without ResetCancellation.
func (ec *ExecutionContext) Dispose() {
	ec.mu.Lock()
	ec.store = make(map[reflect.Type]any)
	cancel := ec.cancel
	ec.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Logger returns the attached logger, falling back to NoOpLogger so job
// boundaries can always report. Safe on a nil receiver.
func (ec *ExecutionContext) Logger() logging.Logger {
	if ec == nil {
		return logging.NoOpLogger{}
	}
	ec.mu.RLock()
	defer ec.mu.RUnlock()
	if ec.logger == nil {
		return logging.NoOpLogger{}
	}
	return ec.logger
}

// Get returns the stored object of kind T or the zero value if none exists.
func Get[T any](ec *ExecutionContext) T {
	v, _ := TryGet[T](ec)
	return v
}

// TryGet returns the stored object of kind T and whether it was present.
// Requesting the store itself (T = *ExecutionContext) returns ec directly.
func TryGet[T any](ec *ExecutionContext) (T, bool) {
	var zero T
	if ec == nil {
		return zero, false
	}

	// The store itself satisfies a request for its own kind.
	if v, ok := any(ec).(T); ok {
		return v, true
	}

	ec.mu.RLock()
	defer ec.mu.RUnlock()

	obj, ok := ec.store[kindOf[T]()]
	if !ok {
		return zero, false
	}
	v, ok := obj.(T)
	if !ok {
		return zero, false
	}
	return v, true
}

// Remove deletes the stored object of kind T, reporting whether one existed.
func Remove[T any](ec *ExecutionContext) bool {
	if ec == nil {
		return false
	}

	ec.mu.Lock()
	defer ec.mu.Unlock()

	kind := kindOf[T]()
	if _, ok := ec.store[kind]; !ok {
		return false
	}
	delete(ec.store, kind)
	return true
}

// KindName returns the display name of kind T, used in log output.
func KindName[T any]() string { return kindOf[T]().String() }

func kindOf[T any]() reflect.Type { return reflect.TypeOf((*T)(nil)).Elem() }
