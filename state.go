package evf

import "sync/atomic"

// runtimeLifecycle represents the Runtime's position in its lifecycle.
//
// State Machine:
//
//	Uninit           -> InitNotRunning   [Init()]
//	InitNotRunning   -> Running          [first RunOne()]
//	Running          -> Shutdown         [handler returns StatusShutdown, or Shutdown() called]
//	InitNotRunning   -> Shutdown         [Shutdown() called]
//	Shutdown is terminal.
//
// Registration is legal only in InitNotRunning. Posting/publishing is legal
// in InitNotRunning or Running. Shutdown drains pending work and rejects
// new events.
type runtimeLifecycle uint32

const (
	lifecycleUninit runtimeLifecycle = iota
	lifecycleInitNotRunning
	lifecycleRunning
	lifecycleShutdown
)

func (s runtimeLifecycle) String() string {
	switch s {
	case lifecycleUninit:
		return "Uninit"
	case lifecycleInitNotRunning:
		return "InitNotRunning"
	case lifecycleRunning:
		return "Running"
	case lifecycleShutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// atomicLifecycle is a lock-free state word. The Runtime makes every
// transition, including the one into the terminal Shutdown state, with an
// atomic CAS; Store sets a state unconditionally.
type atomicLifecycle struct {
	v atomic.Uint32
}

func (s *atomicLifecycle) Load() runtimeLifecycle {
	return runtimeLifecycle(s.v.Load())
}

func (s *atomicLifecycle) Store(state runtimeLifecycle) {
	s.v.Store(uint32(state))
}

func (s *atomicLifecycle) CompareAndSwap(from, to runtimeLifecycle) bool {
	return s.v.CompareAndSwap(uint32(from), uint32(to))
}

// acceptsEvents reports whether the runtime, in its current state, may
// accept new posted/published events (I.e. InitNotRunning or Running).
func (s *atomicLifecycle) acceptsEvents() bool {
	switch s.Load() {
	case lifecycleInitNotRunning, lifecycleRunning:
		return true
	default:
		return false
	}
}
