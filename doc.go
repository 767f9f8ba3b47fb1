// Package evf implements the core of an event framework for cooperative,
// priority-scheduled embedded-style systems: independent active objects
// that communicate exclusively through asynchronous events.
//
// # Architecture
//
// A [Runtime] owns three interlocking mechanisms:
//
//   - Event delivery: [Runtime.Post] (point-to-point) and [Runtime.Publish]
//     (fan-out to subscribers) with reference-counted events and per-type
//     destructors, so one event can be safely delivered to many receivers
//     and reclaimed exactly once.
//   - Priority run-to-completion scheduling: [Runtime.RunOne] pops the
//     highest-priority pending active object step and executes it to
//     completion; equal priorities are served FIFO.
//   - A timer service ([Runtime.TimerStart], [Runtime.TimerStop]) that
//     posts [TimerFinishedEvent] values into owner queues via a single
//     upstream scheduled-callback primitive supplied by the [Port].
//
// All three are coupled through one nestable critical section, supplied by
// the [Port], that stays correct whether events originate from goroutines
// standing in for interrupt handlers, other active objects, or handlers
// already running inside the runtime.
//
// # Usage
//
//	port := evf.NewDefaultPort()
//	rt, err := evf.NewRuntime(port)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := rt.Init(); err != nil {
//	    log.Fatal(err)
//	}
//
//	ao := evf.NewActiveObject("worker", 5, handleEvent, []evf.EventType{EventTypeWork})
//	if err := rt.RegisterActiveObject(ao); err != nil {
//	    log.Fatal(err)
//	}
//
//	ev, ok := rt.NewEvent(EventTypeWork, myPayload)
//	if !ok {
//	    log.Fatal("allocation failed")
//	}
//	if err := rt.Post(ao, ev); err != nil {
//	    log.Fatal(err)
//	}
//
//	for {
//	    status, err := rt.RunOne()
//	    if err != nil {
//	        log.Fatal(err)
//	    }
//	    if status == evf.StatusShutdown && !rt.HasWork() {
//	        break
//	    }
//	}
//
// # Concurrency
//
// [Runtime.Post], [Runtime.Publish], [Runtime.TimerStart] and
// [Runtime.TimerStop] are safe to call concurrently with [Runtime.RunOne]
// and with each other, from any goroutine — they all serialize through the
// [Port]'s critical section. [Runtime.RunOne] itself is not safe to call
// concurrently with itself; exactly one goroutine should drive the
// dispatch loop, matching the cooperative run-to-completion model.
package evf
