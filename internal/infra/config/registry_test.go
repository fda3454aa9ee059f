package config

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"notifyengine/internal/domain/notify"
)

func TestRegistry_SeededFromEnvAndMutable(t *testing.T) {
	r := NewRegistry(EnvConfig{
		MaxVisibleGroups: 8,
		MaxGroupSize:     5,
	})

	v, ok := r.GetInt(notify.ConfigKeyMaxVisibleGroups)
	assert.True(t, ok)
	assert.Equal(t, 8, v)

	r.SetInt(notify.ConfigKeyMaxGroupSize, 3)
	v, ok = r.GetInt(notify.ConfigKeyMaxGroupSize)
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = r.GetInt("unknown")
	assert.False(t, ok)
}
