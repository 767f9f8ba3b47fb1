package evf

// Status indicates whether an active object's handler wants the runtime to
// keep running or to begin shutting down.
type Status int

const (
	// StatusRunning indicates normal operation continues.
	StatusRunning Status = iota
	// StatusShutdown indicates the active object wants the runtime to
	// begin draining and terminating.
	StatusShutdown
)

func (s Status) String() string {
	if s == StatusShutdown {
		return "Shutdown"
	}
	return "Running"
}

// Handler is invoked by RunOne to process one event for an active object,
// to completion, without suspension. ev is a borrow valid only for the
// duration of the call; it must be copied if the handler needs it beyond
// that.
type Handler func(self *ActiveObject, ev *Event) Status

// ActiveObject is a named, prioritized entity with its own bounded event
// queue and a single handler. All of its work proceeds one event at a
// time, run to completion, driven by the runtime's RunOne.
type ActiveObject struct {
	// Name identifies the active object for debugging and logging only.
	Name string

	// Priority affects scheduling; 0 is the highest priority. Active
	// objects may share a priority; ties are broken FIFO by ticket
	// arrival order.
	Priority uint8

	// HandleEvent is invoked once per dispatched event.
	HandleEvent Handler

	// Subscriptions lists the user event types this active object should
	// receive via Publish. It does not limit what Post can deliver.
	Subscriptions []EventType

	queue        eventQueue
	registered   bool
	shuttingDown bool
}

// activeObjectOption configures an ActiveObject at construction.
type activeObjectOption struct {
	apply func(*ActiveObject, *activeObjectConfig)
}

type activeObjectConfig struct {
	queueCapacity int
}

// WithQueueCapacity overrides the default event queue capacity
// (EVENT_QUEUE_LENGTH) for one active object.
func WithQueueCapacity(n int) activeObjectOption {
	return activeObjectOption{apply: func(_ *ActiveObject, c *activeObjectConfig) {
		c.queueCapacity = n
	}}
}

const defaultEventQueueLength = 16

// NewActiveObject constructs an active object with the given name,
// priority, handler and subscription list. The subscription list need not
// be sentinel-terminated — unlike the original C API, Go slices carry
// their own length — but EventTypeNullSentinel, if present, is treated as
// a terminator for compatibility with code that builds the slice in that
// style.
func NewActiveObject(name string, priority uint8, handler Handler, subscriptions []EventType, opts ...activeObjectOption) *ActiveObject {
	cfg := activeObjectConfig{queueCapacity: defaultEventQueueLength}
	ao := &ActiveObject{
		Name:        name,
		Priority:    priority,
		HandleEvent: handler,
	}
	for _, opt := range opts {
		opt.apply(ao, &cfg)
	}

	subs := make([]EventType, 0, len(subscriptions))
	for _, t := range subscriptions {
		if t == EventTypeNullSentinel {
			break
		}
		subs = append(subs, t)
	}
	ao.Subscriptions = subs
	ao.queue = newEventQueue(cfg.queueCapacity)

	return ao
}
