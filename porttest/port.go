// Package porttest provides a deterministic evf.Port implementation for
// tests: a manually advanced clock, an injectable allocation failure
// switch, and a scheduled callback that runs synchronously when Advance
// moves the clock to or past its deadline, so that timer ordering (P5, S5) and allocator-exhaustion behavior
// (AllocFailed paths) can be exercised without real wall-clock sleeps.
package porttest

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Port is a test double for evf.Port. The clock only advances when Advance
// is called; ScheduleCallback records the deadline and function without
// starting any goroutine or timer of its own. Advance invokes the armed
// callback (possibly repeatedly, if the callback re-arms a due deadline,
// mirroring how a real port would retrigger immediately for a backlog of
// expired timers) whenever the new time reaches or passes it.
type Port struct {
	mu      sync.Mutex
	ownerMu sync.Mutex
	ownerID uint64
	depth   int

	nowMS atomic.Uint64

	cbMu       sync.Mutex
	cbDeadline uint64
	cbFn       func()
	cbArmed    bool

	allocFail atomic.Bool
	allocLog  atomic.Int64 // count of Alloc calls, for capacity assertions in tests

	assertFn func(cond bool, msg string)
}

// New constructs a Port anchored at time 0.
func New() *Port {
	return &Port{assertFn: func(cond bool, msg string) {
		if !cond {
			panic("porttest: assertion failed: " + msg)
		}
	}}
}

// SetAssertFunc overrides Assert's behavior, e.g. to record failures into
// a slice instead of panicking.
func (p *Port) SetAssertFunc(fn func(cond bool, msg string)) {
	p.assertFn = fn
}

// SetAllocFailure forces subsequent Alloc calls to fail until cleared.
func (p *Port) SetAllocFailure(fail bool) {
	p.allocFail.Store(fail)
}

// AllocCount reports how many times Alloc has been called.
func (p *Port) AllocCount() int64 {
	return p.allocLog.Load()
}

func (p *Port) Alloc(int) bool {
	p.allocLog.Add(1)
	return !p.allocFail.Load()
}

func (p *Port) Free(int) {}

func (p *Port) Assert(cond bool, msg string) {
	p.assertFn(cond, msg)
}

func (p *Port) CriticalSectionEnter() {
	id := currentGoroutineID()

	p.ownerMu.Lock()
	if p.ownerID == id && p.depth > 0 {
		p.depth++
		p.ownerMu.Unlock()
		return
	}
	p.ownerMu.Unlock()

	p.mu.Lock()

	p.ownerMu.Lock()
	p.ownerID = id
	p.depth = 1
	p.ownerMu.Unlock()
}

func (p *Port) CriticalSectionExit() {
	p.ownerMu.Lock()
	p.depth--
	if p.depth > 0 {
		p.ownerMu.Unlock()
		return
	}
	p.ownerID = 0
	p.ownerMu.Unlock()

	p.mu.Unlock()
}

func (p *Port) NowMS() uint64 {
	return p.nowMS.Load()
}

func (p *Port) ScheduleCallback(atMS uint64, fn func()) {
	p.cbMu.Lock()
	p.cbDeadline = atMS
	p.cbFn = fn
	p.cbArmed = true
	p.cbMu.Unlock()
}

func (p *Port) CancelScheduledCallback() {
	p.cbMu.Lock()
	p.cbArmed = false
	p.cbFn = nil
	p.cbMu.Unlock()
}

// Advance moves the clock forward by deltaMS and fires the armed callback
// (possibly more than once, if it keeps re-arming a deadline that is still
// due) until nothing due remains. Mirrors a real port invoking its timer
// interrupt/goroutine once time crosses an armed deadline.
func (p *Port) Advance(deltaMS uint64) {
	p.nowMS.Add(deltaMS)
	for {
		p.cbMu.Lock()
		due := p.cbArmed && p.cbDeadline <= p.nowMS.Load()
		fn := p.cbFn
		p.cbMu.Unlock()
		if !due || fn == nil {
			return
		}
		fn()
	}
}

func currentGoroutineID() uint64 {
	var buf [64]byte
	n := runtime.Stack(buf[:], false)
	var id uint64
	for i := len("goroutine "); i < n; i++ {
		if buf[i] >= '0' && buf[i] <= '9' {
			id = id*10 + uint64(buf[i]-'0')
		} else {
			break
		}
	}
	return id
}
