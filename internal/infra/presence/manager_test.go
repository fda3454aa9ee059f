package presence

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_PingGoesOnlineThenIdlesOut(t *testing.T) {
	m := NewManager(30 * time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	assert.False(t, m.IsOnlineLocal())
	assert.Zero(t, m.WasOnlineLocal(), "never-online device has no last-seen timestamp")

	m.Ping()
	require.Eventually(t, m.IsOnlineLocal, time.Second, time.Millisecond)

	require.Eventually(t, func() bool { return !m.IsOnlineLocal() }, time.Second, time.Millisecond)
	assert.InDelta(t, float64(time.Now().Unix()), m.WasOnlineLocal(), 2, "last-seen timestamp should be recent")
}

func TestManager_NoteRemoteActivity(t *testing.T) {
	m := NewManager(time.Hour)
	assert.False(t, m.IsOnlineRemote())
	assert.Zero(t, m.WasOnlineRemote())

	m.NoteRemoteActivity(true)
	assert.True(t, m.IsOnlineRemote())
	assert.InDelta(t, float64(time.Now().Unix()), m.WasOnlineRemote(), 2)

	m.NoteRemoteActivity(false)
	assert.False(t, m.IsOnlineRemote())
	assert.InDelta(t, float64(time.Now().Unix()), m.WasOnlineRemote(), 2, "going offline still records a last-seen timestamp")
}

func TestManager_StopsCleanlyOnContextCancel(t *testing.T) {
	m := NewManager(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	go m.Run(ctx)
	cancel()

	select {
	case <-m.Done():
	case <-time.After(time.Second):
		t.Fatal("Run did not exit after context cancellation")
	}
}
