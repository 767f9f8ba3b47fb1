package evf

import "container/heap"

// Timer is a software timer whose expiry posts a TimerFinishedEvent to
// Owner. Only the pointer is retained by TimerStart; timers must outlive
// any call to TimerStart/TimerStop made with them, same as the original
// static-lifetime requirement.
type Timer struct {
	Owner    *ActiveObject
	ID       uint32
	Duration uint64 // milliseconds
	Periodic bool

	finishMS uint64
	running  bool
	heapIdx  int
}

// timerHeap is a min-heap of *Timer ordered by finishMS: a
// container/heap.Interface implementation popped with heap.Pop while the
// head's deadline is due. Timers with equal finishMS are not kept in the
// order they were started; the heap defines no order among them.
type timerHeap []*Timer

func (h timerHeap) Len() int { return len(h) }
func (h timerHeap) Less(i, j int) bool {
	return h[i].finishMS < h[j].finishMS
}
func (h timerHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].heapIdx = i
	h[j].heapIdx = j
}
func (h *timerHeap) Push(x any) {
	t := x.(*Timer)
	t.heapIdx = len(*h)
	*h = append(*h, t)
}
func (h *timerHeap) Pop() any {
	old := *h
	n := len(old)
	t := old[n-1]
	old[n-1] = nil
	t.heapIdx = -1
	*h = old[:n-1]
	return t
}

// TimerStart starts (or restarts, if already running) t. The finish time
// is computed as now + Duration. If t becomes the new head of the running
// list (the next timer due to fire), the Port's scheduled callback is
// rearmed.
func (r *Runtime) TimerStart(t *Timer) error {
	if t == nil {
		return ErrNilActiveObject
	}
	r.assertf(t.Owner != nil, "TimerStart: timer %d has no owner", t.ID)
	if t.Owner == nil {
		return newAssertionError("timer %d has no owner", t.ID)
	}

	r.port.CriticalSectionEnter()
	defer r.port.CriticalSectionExit()

	if t.running {
		r.removeRunningTimer(t)
	}

	t.finishMS = r.port.NowMS() + t.Duration
	r.addRunningTimer(t)
	t.running = true

	return nil
}

// TimerStop stops t. If it was running and was the head of the list, the
// Port's scheduled callback is rearmed for the new head, or cancelled if
// the list is now empty. A no-op if t is not running.
func (r *Runtime) TimerStop(t *Timer) error {
	if t == nil {
		return ErrNilActiveObject
	}

	r.port.CriticalSectionEnter()
	defer r.port.CriticalSectionExit()

	if !t.running {
		return nil
	}
	r.removeRunningTimer(t)
	t.running = false
	return nil
}

// addRunningTimer inserts t into the heap and rearms the callback for the
// heap head (the soonest deadline). Must be called with the critical
// section held.
func (r *Runtime) addRunningTimer(t *Timer) {
	heap.Push(&r.timers, t)
	r.rearmTimerCallback()
}

// removeRunningTimer removes t from the heap (wherever it currently sits)
// and rearms the callback for the new heap head, or cancels it if the heap
// is empty. Must be called with the critical section held.
func (r *Runtime) removeRunningTimer(t *Timer) {
	if t.heapIdx < 0 || t.heapIdx >= len(r.timers) {
		return
	}
	heap.Remove(&r.timers, t.heapIdx)
	r.rearmTimerCallback()
}

// rearmTimerCallback arms the Port's scheduled callback for the current
// heap head, or cancels it if the heap is empty. Must be called with the
// critical section held.
func (r *Runtime) rearmTimerCallback() {
	if len(r.timers) == 0 {
		r.port.CancelScheduledCallback()
		return
	}
	r.port.ScheduleCallback(r.timers[0].finishMS, r.onTimerFire)
}

// onTimerFire is the Port's scheduled-callback target. It may run from
// whatever goroutine the Port invokes it from (standing in for an ISR or a
// dedicated timer thread).
//
// Expiry uses finishMS <= now; a prior C implementation's
// timer_handler_callback compared with >=, which is inverted and would
// leave a timer exactly at its deadline unfired until the clock moved
// past it.
func (r *Runtime) onTimerFire() {
	r.port.CriticalSectionEnter()

	now := r.port.NowMS()
	for len(r.timers) > 0 && r.timers[0].finishMS <= now {
		t := r.timers[0]
		heap.Pop(&r.timers)
		t.running = false

		r.fireTimer(t)

		if t.Periodic {
			t.finishMS += t.Duration
			heap.Push(&r.timers, t)
			t.running = true
		}
	}

	r.rearmTimerCallback()
	r.port.CriticalSectionExit()
}

// fireTimer allocates and posts a TimerFinishedEvent for t, via the
// internal post path that assumes the critical section is already held.
// If allocation fails, the firing is dropped for this period: the runtime
// is not corrupted, and later timers still fire.
func (r *Runtime) fireTimer(t *Timer) {
	if !r.port.Alloc(eventHeaderSize) {
		r.logger.Warning().Uint64("timer_id", uint64(t.ID)).Log("timer finished event allocation failed, dropping this firing")
		return
	}
	ev := &Event{
		Type:    EventTypeTimerFinished,
		Payload: &TimerFinishedEvent{TimerID: t.ID},
	}
	r.postLocked(t.Owner, ev)
}
