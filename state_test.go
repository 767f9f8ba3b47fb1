package evf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAtomicLifecycleTransitions(t *testing.T) {
	var s atomicLifecycle
	assert.Equal(t, lifecycleUninit, s.Load())
	assert.False(t, s.acceptsEvents())

	require := assert.New(t)
	require.True(s.CompareAndSwap(lifecycleUninit, lifecycleInitNotRunning))
	require.False(s.CompareAndSwap(lifecycleUninit, lifecycleInitNotRunning), "CAS must fail once the expected state no longer matches")
	require.True(s.acceptsEvents())

	s.Store(lifecycleRunning)
	require.True(s.acceptsEvents())

	s.Store(lifecycleShutdown)
	require.False(s.acceptsEvents())
}

func TestRuntimeLifecycleString(t *testing.T) {
	assert.Equal(t, "Uninit", lifecycleUninit.String())
	assert.Equal(t, "InitNotRunning", lifecycleInitNotRunning.String())
	assert.Equal(t, "Running", lifecycleRunning.String())
	assert.Equal(t, "Shutdown", lifecycleShutdown.String())
}
