package evf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolveOptionsDefaults(t *testing.T) {
	cfg := resolveOptions(nil)
	assert.Equal(t, DefaultMaxActiveObjects, cfg.maxActiveObjects)
	assert.Equal(t, DefaultMaxUserEventTypes, cfg.maxUserEventTypes)
	assert.Equal(t, DefaultActiveObjectNameLength, cfg.maxNameLength)
	assert.Equal(t, DefaultActiveObjectMaxSubscribers, cfg.maxSubscriptions)
	assert.Equal(t, DefaultPriorityMax, cfg.priorityMax)
	assert.False(t, cfg.assertionsEnabled)
	assert.NotNil(t, cfg.logger)
}

func TestResolveOptionsOverrides(t *testing.T) {
	cfg := resolveOptions([]Option{
		WithMaxActiveObjects(4),
		WithMaxUserEventTypes(8),
		WithActiveObjectNameLength(16),
		WithActiveObjectMaxSubscriptions(2),
		WithPriorityMax(4),
		WithAssertionsEnabled(true),
		nil,
	})
	assert.Equal(t, 4, cfg.maxActiveObjects)
	assert.Equal(t, 8, cfg.maxUserEventTypes)
	assert.Equal(t, 16, cfg.maxNameLength)
	assert.Equal(t, 2, cfg.maxSubscriptions)
	assert.Equal(t, 4, cfg.priorityMax)
	assert.True(t, cfg.assertionsEnabled)
}
