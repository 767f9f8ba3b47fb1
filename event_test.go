package evf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEventAllocFailure(t *testing.T) {
	rt, port := newTestRuntime(t)
	port.SetAllocFailure(true)
	ev, ok := rt.NewEvent(eventTypeA, nil)
	assert.False(t, ok)
	assert.Nil(t, ev)
}

func TestRegisterEventDestructorRejectsReservedType(t *testing.T) {
	rt, _ := newTestRuntime(t)
	err := rt.RegisterEventDestructor(EventTypeTimerFinished, func(*Event) {})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestRegisterEventDestructorRejectsOutOfRangeType(t *testing.T) {
	rt, _ := newTestRuntime(t)
	err := rt.RegisterEventDestructor(EventType(rt.cfg.maxUserEventTypes), func(*Event) {})
	assert.ErrorIs(t, err, ErrInvalidType)
}

func TestRegisterEventDestructorReplacesOnReRegistration(t *testing.T) {
	rt, _ := newTestRuntime(t)

	var calls []string
	require.NoError(t, rt.RegisterEventDestructor(eventTypeA, func(*Event) { calls = append(calls, "first") }))
	require.NoError(t, rt.RegisterEventDestructor(eventTypeA, func(*Event) { calls = append(calls, "second") }))

	ev := &Event{Type: eventTypeA}
	retain(ev)
	rt.release(ev)

	assert.Equal(t, []string{"second"}, calls)
}

func TestRetainReleaseBalance(t *testing.T) {
	rt, _ := newTestRuntime(t)
	ev, ok := rt.NewEvent(eventTypeA, nil)
	require.True(t, ok)

	retain(ev)
	retain(ev)
	assert.Equal(t, int32(2), ev.refCount)

	rt.release(ev)
	assert.Equal(t, int32(1), ev.refCount)
	rt.release(ev)
	assert.Equal(t, int32(0), ev.refCount)
}
