package evf

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by Runtime operations. Use [errors.Is] to match
// against these; most are also wrapped with contextual detail via
// [fmt.Errorf]'s %w verb, so direct equality checks should not be relied
// upon.
var (
	// ErrQueueFull is returned by Post when the receiver's event queue is
	// at capacity. The event is left untouched; ref_count is not changed.
	ErrQueueFull = errors.New("evf: active object event queue is full")

	// ErrAllocFailed names allocator exhaustion reported by the Port. No
	// Runtime method returns it: NewEvent reports exhaustion through its
	// ok=false result, and a timer firing whose event cannot be allocated
	// is dropped.
	ErrAllocFailed = errors.New("evf: event allocation failed")

	// ErrInvalidState is returned when an API is called outside the
	// lifecycle state it requires.
	ErrInvalidState = errors.New("evf: operation not valid in current runtime state")

	// ErrInvalidType is returned when an event type falls outside the
	// valid user-defined range for an operation that requires one.
	ErrInvalidType = errors.New("evf: event type out of valid range")

	// ErrCapacityExceeded is returned when a compile-time-style tunable
	// (max active objects, max subscribers, max subscriptions) would be
	// exceeded by a registration.
	ErrCapacityExceeded = errors.New("evf: capacity exceeded")

	// ErrDuplicateSubscription is returned when an active object
	// subscribes to the same event type more than once.
	ErrDuplicateSubscription = errors.New("evf: active object already subscribed to event type")

	// ErrReservedEventType is returned when an active object's
	// subscription list names a framework-reserved event type, where a
	// user type is required.
	ErrReservedEventType = errors.New("evf: event type is reserved for framework use")

	// ErrAlreadyRegistered is returned when an active object is
	// registered more than once.
	ErrAlreadyRegistered = errors.New("evf: active object already registered")

	// ErrRuntimeShutdown is returned by Post/Publish once the runtime has
	// entered the Shutdown state.
	ErrRuntimeShutdown = errors.New("evf: runtime is shutting down")

	// ErrNilEvent is returned when a nil event is passed to Post/Publish.
	ErrNilEvent = errors.New("evf: event must not be nil")

	// ErrNilActiveObject is returned when a nil active object is
	// registered or posted to.
	ErrNilActiveObject = errors.New("evf: active object must not be nil")
)

// assertionError wraps a violated invariant so that Port.Assert
// implementations which choose to return rather than panic still leave a
// descriptive error for Runtime methods to propagate.
type assertionError struct {
	msg string
}

func (e *assertionError) Error() string { return "evf: assertion failed: " + e.msg }

func newAssertionError(format string, args ...any) error {
	return &assertionError{msg: fmt.Sprintf(format, args...)}
}

func wrapInvalidType(t EventType) error {
	return fmt.Errorf("%w: %d", ErrInvalidType, t)
}

func wrapQueueFull(aoName string) error {
	return fmt.Errorf("%w: active object %q", ErrQueueFull, aoName)
}

func wrapCapacityExceeded(what string) error {
	return fmt.Errorf("%w: %s", ErrCapacityExceeded, what)
}

func wrapInvalidState(op string, got runtimeLifecycle) error {
	return fmt.Errorf("%w: %s called while runtime is %s", ErrInvalidState, op, got)
}

