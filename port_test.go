package evf

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPortCriticalSectionReentrant(t *testing.T) {
	p := NewDefaultPort()

	entered := 0
	p.CriticalSectionEnter()
	entered++
	p.CriticalSectionEnter() // nested, same goroutine: must not deadlock
	entered++
	p.CriticalSectionEnter()
	entered++
	p.CriticalSectionExit()
	p.CriticalSectionExit()
	p.CriticalSectionExit()

	assert.Equal(t, 3, entered)

	// The section must be fully released: another goroutine can now enter.
	done := make(chan struct{})
	go func() {
		p.CriticalSectionEnter()
		p.CriticalSectionExit()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("critical section was not released after matching exits")
	}
}

func TestDefaultPortCriticalSectionExcludesOtherGoroutines(t *testing.T) {
	p := NewDefaultPort()
	var mu sync.Mutex
	var order []string

	p.CriticalSectionEnter()

	releaseOuter := make(chan struct{})
	innerDone := make(chan struct{})
	go func() {
		p.CriticalSectionEnter()
		mu.Lock()
		order = append(order, "inner")
		mu.Unlock()
		p.CriticalSectionExit()
		close(innerDone)
	}()

	time.Sleep(20 * time.Millisecond)
	mu.Lock()
	order = append(order, "outer")
	mu.Unlock()
	close(releaseOuter)
	p.CriticalSectionExit()

	select {
	case <-innerDone:
	case <-time.After(time.Second):
		t.Fatal("other goroutine never acquired the section")
	}

	assert.Equal(t, []string{"outer", "inner"}, order)
}

func TestDefaultPortAllocFailureInjection(t *testing.T) {
	p := NewDefaultPort()
	require.True(t, p.Alloc(1))
	p.SetAllocFailure(true)
	require.False(t, p.Alloc(1))
	p.SetAllocFailure(false)
	require.True(t, p.Alloc(1))
}

func TestDefaultPortNowMSMonotonic(t *testing.T) {
	p := NewDefaultPort()
	a := p.NowMS()
	time.Sleep(5 * time.Millisecond)
	b := p.NowMS()
	assert.GreaterOrEqual(t, b, a)
}

func TestDefaultPortScheduleCallback(t *testing.T) {
	p := NewDefaultPort()
	fired := make(chan struct{})
	p.ScheduleCallback(p.NowMS()+5, func() { close(fired) })

	select {
	case <-fired:
	case <-time.After(time.Second):
		t.Fatal("scheduled callback never fired")
	}
}

func TestDefaultPortCancelScheduledCallback(t *testing.T) {
	p := NewDefaultPort()
	fired := false
	p.ScheduleCallback(p.NowMS()+20, func() { fired = true })
	p.CancelScheduledCallback()
	time.Sleep(40 * time.Millisecond)
	assert.False(t, fired)
}
