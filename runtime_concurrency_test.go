package evf

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// S6. ISR-safe post during dispatch: many goroutines concurrently post to
// the same active object while RunOne drains it on a single goroutine.
// Every successfully accepted event must be delivered exactly once, with
// no torn ref_count, regardless of which goroutine's post and which
// RunOne interleave.
func TestPostConcurrentWithRunOne(t *testing.T) {
	port := NewDefaultPort()
	rt, err := NewRuntime(port, WithAssertionsEnabled(true))
	require.NoError(t, err)
	require.NoError(t, rt.Init())

	var delivered atomic.Int64
	ao := NewActiveObject("sink", 0, func(self *ActiveObject, ev *Event) Status {
		delivered.Add(1)
		return StatusRunning
	}, nil, WithQueueCapacity(64))
	require.NoError(t, rt.RegisterActiveObject(ao))

	const producers = 8
	const perProducer = 200

	var accepted atomic.Int64
	var wg sync.WaitGroup
	wg.Add(producers)
	for i := 0; i < producers; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perProducer; j++ {
				ev, ok := rt.NewEvent(eventTypeA, nil)
				if !ok {
					continue
				}
				for {
					if err := rt.Post(ao, ev); err == nil {
						accepted.Add(1)
						break
					}
					time.Sleep(time.Microsecond)
				}
			}
		}()
	}

	stop := make(chan struct{})
	go func() {
		for {
			select {
			case <-stop:
				return
			default:
				rt.RunOne()
			}
		}
	}()

	wg.Wait()
	deadline := time.Now().Add(5 * time.Second)
	for delivered.Load() < accepted.Load() && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	close(stop)

	assert.Equal(t, accepted.Load(), delivered.Load(), "every accepted post must be delivered exactly once")
}

func TestPublishConcurrentFromGoroutines(t *testing.T) {
	port := NewDefaultPort()
	rt, err := NewRuntime(port)
	require.NoError(t, err)
	require.NoError(t, rt.Init())

	var handled atomic.Int64
	for i := 0; i < 4; i++ {
		ao := NewActiveObject("sub", 0, func(self *ActiveObject, ev *Event) Status {
			handled.Add(1)
			return StatusRunning
		}, []EventType{eventTypeA})
		require.NoError(t, rt.RegisterActiveObject(ao))
	}

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ev, ok := rt.NewEvent(eventTypeA, nil)
			require.True(t, ok)
			_, err := rt.Publish(nil, ev)
			require.NoError(t, err)
		}()
	}
	wg.Wait()

	for handled.Load() < 16 {
		rt.RunOne()
	}
	assert.Equal(t, int64(16), handled.Load())
}
