package evf

import (
	"fmt"
	"sync"
)

// Runtime is a single event-framework instance: the registered active
// objects, the subscription table, the priority scheduling queue, the
// running-timer heap, and the lifecycle state machine that governs them.
// Everything is reachable through this handle rather than through
// process-wide globals, so a process can host more than one independent
// runtime.
type Runtime struct {
	port   Port
	cfg    *runtimeConfig
	logger Logger

	lifecycle atomicLifecycle

	registeredAOs []*ActiveObject

	subscriptions map[EventType][]*ActiveObject // written only during InitNotRunning

	destructors   []Destructor
	destructorsMu sync.RWMutex

	scheduler *priorityScheduler
	timers    timerHeap
}

// NewRuntime constructs a Runtime in the Uninit state. Call Init before
// registering active objects or posting/publishing events.
func NewRuntime(port Port, opts ...Option) (*Runtime, error) {
	if port == nil {
		return nil, newAssertionError("NewRuntime: port must not be nil")
	}
	cfg := resolveOptions(opts)

	r := &Runtime{
		port:          port,
		cfg:           cfg,
		logger:        cfg.logger,
		destructors:   make([]Destructor, cfg.maxUserEventTypes),
		subscriptions: make(map[EventType][]*ActiveObject, cfg.maxUserEventTypes),
		scheduler:     newPriorityScheduler(cfg.priorityMax),
		timers:        make(timerHeap, 0),
	}
	return r, nil
}

// assertf routes a violated invariant through Port.Assert when assertions
// are enabled, so an embedded deployment gets a hard halt while a hosted
// Go deployment can still rely on the returned typed error.
func (r *Runtime) assertf(cond bool, format string, args ...any) {
	if r.cfg.assertionsEnabled {
		r.port.Assert(cond, fmt.Sprintf(format, args...))
	}
}

// Init transitions the Runtime from Uninit to InitNotRunning. The
// subscription table, destructor table, scheduling queue, and registered
// active object list are created empty by NewRuntime; Init does not clear
// them, so anything registered before Init (such as an event destructor)
// is kept. It must be called before any other Runtime operation.
func (r *Runtime) Init() error {
	if !r.lifecycle.CompareAndSwap(lifecycleUninit, lifecycleInitNotRunning) {
		r.assertf(false, "Init: runtime must be Uninit")
		return wrapInvalidState("Init", r.lifecycle.Load())
	}
	r.logger.Debug().Log("runtime initialized")
	return nil
}

// RegisterActiveObject installs ao into the runtime and subscribes it to
// every event type in ao.Subscriptions. Legal only while the runtime is in
// InitNotRunning. Re-registering the same *ActiveObject, exceeding
// MaxActiveObjects, exceeding a type's subscriber capacity, a duplicate
// subscription, or subscribing to a reserved type are all reported as
// errors (and, if assertions are enabled, also asserted).
func (r *Runtime) RegisterActiveObject(ao *ActiveObject) error {
	if ao == nil {
		return ErrNilActiveObject
	}
	if r.lifecycle.Load() != lifecycleInitNotRunning {
		r.assertf(false, "RegisterActiveObject: runtime must be InitNotRunning")
		return wrapInvalidState("RegisterActiveObject", r.lifecycle.Load())
	}
	if ao.registered {
		r.assertf(false, "RegisterActiveObject: %q already registered", ao.Name)
		return ErrAlreadyRegistered
	}
	if len(ao.Name) > r.cfg.maxNameLength {
		r.assertf(false, "RegisterActiveObject: name %q exceeds configured length", ao.Name)
		return wrapCapacityExceeded("active object name exceeds configured length")
	}
	if len(r.registeredAOs) >= r.cfg.maxActiveObjects {
		r.assertf(false, "RegisterActiveObject: max active objects exceeded")
		return wrapCapacityExceeded("max active objects")
	}
	if int(ao.Priority) >= r.cfg.priorityMax {
		r.assertf(false, "RegisterActiveObject: priority %d out of range", ao.Priority)
		return wrapCapacityExceeded("priority out of configured range")
	}
	if len(ao.Subscriptions) > r.cfg.maxSubscriptions {
		r.assertf(false, "RegisterActiveObject: max subscriptions exceeded")
		return wrapCapacityExceeded("subscription list exceeds configured length")
	}

	seen := make(map[EventType]bool, len(ao.Subscriptions))
	for _, t := range ao.Subscriptions {
		if isReservedType(t) {
			r.assertf(false, "RegisterActiveObject: cannot subscribe to reserved type %d", t)
			return ErrReservedEventType
		}
		if int(t) >= r.cfg.maxUserEventTypes {
			r.assertf(false, "RegisterActiveObject: type %d out of range", t)
			return wrapInvalidType(t)
		}
		if seen[t] {
			r.assertf(false, "RegisterActiveObject: duplicate subscription to type %d", t)
			return ErrDuplicateSubscription
		}
		seen[t] = true
	}
	for _, t := range ao.Subscriptions {
		if len(r.subscriptions[t]) >= r.cfg.maxActiveObjects {
			r.assertf(false, "RegisterActiveObject: subscriber capacity exceeded for type %d", t)
			return wrapCapacityExceeded("subscribers for event type")
		}
	}

	r.registeredAOs = append(r.registeredAOs, ao)
	for _, t := range ao.Subscriptions {
		r.subscriptions[t] = append(r.subscriptions[t], ao)
	}
	ao.registered = true

	r.logger.Debug().Str("active_object", ao.Name).Int("priority", int(ao.Priority)).Log("active object registered")
	return nil
}

// Post delivers ev directly to receiver. Legal while the runtime is
// InitNotRunning or Running. Returns ErrQueueFull, leaving ev untouched
// (ref_count unchanged), if receiver's queue is at capacity.
func (r *Runtime) Post(receiver *ActiveObject, ev *Event) error {
	if receiver == nil {
		return ErrNilActiveObject
	}
	if ev == nil {
		return ErrNilEvent
	}
	if !r.lifecycle.acceptsEvents() {
		if r.lifecycle.Load() == lifecycleShutdown {
			return ErrRuntimeShutdown
		}
		r.assertf(false, "Post: runtime must be InitNotRunning or Running")
		return wrapInvalidState("Post", r.lifecycle.Load())
	}

	r.port.CriticalSectionEnter()
	err := r.postLocked(receiver, ev)
	r.port.CriticalSectionExit()
	return err
}

// postLocked performs the enqueue+retain+schedule sequence atomically.
// Must be called with the critical section already held — this is the
// "internal post path" referenced by Publish (one call per subscriber,
// each under its own critical-section scope) and by the timer-fire
// callback (already inside its own critical section).
func (r *Runtime) postLocked(receiver *ActiveObject, ev *Event) error {
	if !receiver.queue.pushBack(ev) {
		r.logger.Debug().Str("active_object", receiver.Name).Log("post skipped: queue full")
		return wrapQueueFull(receiver.Name)
	}
	retain(ev)
	r.scheduler.schedule(receiver)
	return nil
}

// Publish delivers ev to every active object subscribed to ev.Type except
// publisher (if publisher is itself subscribed) — a publisher never
// receives its own published event. Receivers whose queue is full are
// skipped; other receivers still get the event. If zero receivers accept
// it, ev's reference count remains 0 and the caller retains ownership (it
// may post or publish ev again); Publish never frees an event itself.
func (r *Runtime) Publish(publisher *ActiveObject, ev *Event) (delivered int, err error) {
	if ev == nil {
		return 0, ErrNilEvent
	}
	if !r.lifecycle.acceptsEvents() {
		if r.lifecycle.Load() == lifecycleShutdown {
			return 0, ErrRuntimeShutdown
		}
		r.assertf(false, "Publish: runtime must be InitNotRunning or Running")
		return 0, wrapInvalidState("Publish", r.lifecycle.Load())
	}

	subscribers := r.subscriptions[ev.Type]
	for _, receiver := range subscribers {
		if receiver == publisher {
			continue
		}
		r.port.CriticalSectionEnter()
		postErr := r.postLocked(receiver, ev)
		r.port.CriticalSectionExit()
		if postErr == nil {
			delivered++
		}
	}
	return delivered, nil
}

// RunOne pops the highest-priority pending ticket, dequeues one event from
// that active object's queue, invokes its handler to completion, then
// releases the event. Returns StatusRunning immediately if no ticket is
// pending. A handler returning StatusShutdown begins the shutdown
// transition; from then on RunOne continues draining pending work instead
// of invoking handlers, until both the scheduling queue and all active
// object queues are empty, at which point it returns StatusShutdown.
func (r *Runtime) RunOne() (Status, error) {
	switch r.lifecycle.Load() {
	case lifecycleUninit:
		r.assertf(false, "RunOne: runtime must be initialized")
		return StatusRunning, wrapInvalidState("RunOne", r.lifecycle.Load())
	case lifecycleInitNotRunning:
		r.lifecycle.CompareAndSwap(lifecycleInitNotRunning, lifecycleRunning)
	}

	r.port.CriticalSectionEnter()
	ao := r.scheduler.next()
	var ev *Event
	if ao != nil {
		ev = ao.queue.popFront()
	}
	r.port.CriticalSectionExit()

	if ao == nil {
		if r.lifecycle.Load() == lifecycleShutdown {
			return StatusShutdown, nil
		}
		return StatusRunning, nil
	}

	r.assertf(ev != nil, "RunOne: scheduled active object %q had no pending event", ao.Name)

	shuttingDown := r.lifecycle.Load() == lifecycleShutdown
	var status Status
	if shuttingDown || ao.shuttingDown {
		// Draining: release without invoking the handler.
		status = StatusShutdown
	} else {
		status = ao.HandleEvent(ao, ev)
	}

	r.port.CriticalSectionEnter()
	if ev != nil {
		r.release(ev)
	}
	r.port.CriticalSectionExit()

	if status == StatusShutdown {
		ao.shuttingDown = true
		r.lifecycle.CompareAndSwap(lifecycleRunning, lifecycleShutdown)
		r.logger.Info().Str("active_object", ao.Name).Log("active object requested shutdown")
	}

	if r.lifecycle.Load() == lifecycleShutdown && r.HasWork() {
		return StatusRunning, nil
	}
	if r.lifecycle.Load() == lifecycleShutdown {
		return StatusShutdown, nil
	}
	return StatusRunning, nil
}

// Shutdown explicitly requests the runtime begin draining and
// terminating, equivalent to a handler returning StatusShutdown.
func (r *Runtime) Shutdown() {
	if r.lifecycle.CompareAndSwap(lifecycleRunning, lifecycleShutdown) ||
		r.lifecycle.CompareAndSwap(lifecycleInitNotRunning, lifecycleShutdown) {
		r.logger.Info().Log("runtime shutdown requested")
	}
}

// HasWork reports whether the scheduling queue holds any pending tickets.
// Applications use this (under their own check of the result, taken while
// the critical section is held, per the Port contract) to decide when it
// is safe to enter a low-power wait.
func (r *Runtime) HasWork() bool {
	r.port.CriticalSectionEnter()
	defer r.port.CriticalSectionExit()
	return !r.scheduler.empty()
}
