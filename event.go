package evf

import "sync/atomic"

// EventType tags an event's payload. Negative values are reserved for
// framework-defined event types; non-negative values are user types in
// the contiguous range [0, MaxUserEventTypes).
type EventType int32

// Framework-reserved event types.
const (
	// EventTypeNullSentinel terminates an active object's subscription
	// list; it is never delivered.
	EventTypeNullSentinel EventType = -3
	// EventTypeShutdownPending is reserved for future use signalling an
	// impending shutdown; not posted by the current implementation.
	EventTypeShutdownPending EventType = -2
	// EventTypeTimerFinished tags TimerFinishedEvent payloads posted by
	// the timer service.
	EventTypeTimerFinished EventType = -1
)

// userEventTypesStart is the first value in the valid user-defined range.
const userEventTypesStart EventType = 0

// isReservedType reports whether t is one of the framework-defined types.
func isReservedType(t EventType) bool {
	return t < userEventTypesStart
}

// Destructor is invoked exactly once, immediately before an event's
// storage is released, for events of the type it was registered against.
type Destructor func(ev *Event)

// Event is the common envelope delivered to active object handlers. Its
// Payload is set by the producer at construction and must not be mutated
// by a receiver. The reference count and type are framework-internal:
// Type is fixed after construction, and the reference count transitions
// 0 -> k -> 0 exactly once in the event's lifetime, mutated only inside
// the runtime's critical section.
type Event struct {
	Type    EventType
	Payload any

	refCount int32 // accessed only under the runtime's critical section
}

// TimerFinishedEvent is the payload carried by events of type
// EventTypeTimerFinished, posted to a timer's owner when it fires.
type TimerFinishedEvent struct {
	TimerID uint32
}

// NewEvent allocates an event of the given type wrapping payload, going
// through the Port's allocator so that exhaustion (ok=false) is
// observable exactly as a failed post/publish would be: the caller must
// treat the event as not created and must not call Post/Publish with it.
//
// The reference count starts at 0; each successful Post/Publish delivery
// increments it, and each completed RunOne step decrements it, freeing
// the event (running its destructor, if any) when it returns to 0.
func (r *Runtime) NewEvent(t EventType, payload any) (*Event, bool) {
	if !r.port.Alloc(eventHeaderSize) {
		return nil, false
	}
	return &Event{Type: t, Payload: payload}, true
}

// eventHeaderSize is a nominal size passed to Port.Alloc for the event
// envelope. Go's GC doesn't need an exact byte count, but the Port
// contract is size-based (mirroring an embedded allocator), so we supply
// a stable, representative value.
const eventHeaderSize = 32

// RegisterEventDestructor associates fn with events of type t. At most one
// destructor may be registered per type; a later call for the same type
// replaces the previous registration. t must be in the valid user-defined
// range.
func (r *Runtime) RegisterEventDestructor(t EventType, fn Destructor) error {
	if isReservedType(t) || int(t) >= len(r.destructors) {
		r.assertf(false, "RegisterEventDestructor: type %d out of range", t)
		return wrapInvalidType(t)
	}
	r.destructorsMu.Lock()
	r.destructors[t] = fn
	r.destructorsMu.Unlock()
	return nil
}

// retain increments ev's reference count. Must be called with the
// runtime's critical section held.
func retain(ev *Event) {
	atomic.AddInt32(&ev.refCount, 1)
}

// release decrements ev's reference count, running the destructor and
// freeing the event's storage if it reaches zero. Must be called with the
// runtime's critical section held.
func (r *Runtime) release(ev *Event) {
	n := atomic.AddInt32(&ev.refCount, -1)
	if n != 0 {
		return
	}

	var dtor Destructor
	if !isReservedType(ev.Type) && int(ev.Type) < len(r.destructors) {
		r.destructorsMu.RLock()
		dtor = r.destructors[ev.Type]
		r.destructorsMu.RUnlock()
	}
	if dtor != nil {
		dtor(ev)
	}
	r.port.Free(eventHeaderSize)
}
