package timerwheel

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"notifyengine/internal/domain/notify"
)

type fakeClock struct {
	mu  sync.Mutex
	now float64
}

func (c *fakeClock) ServerTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func TestWheel_FiresOnceAtScheduledTime(t *testing.T) {
	clock := &fakeClock{now: 100}
	fired := make(chan notify.NotificationGroupId, 1)
	w := New(clock, func(groupID notify.NotificationGroupId) {
		fired <- groupID
	})

	w.Schedule(7, 100.02)

	select {
	case got := <-fired:
		assert.Equal(t, notify.NotificationGroupId(7), got)
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}
}

func TestWheel_RescheduleReplacesEarlierWakeup(t *testing.T) {
	clock := &fakeClock{now: 100}
	fired := make(chan notify.NotificationGroupId, 2)
	w := New(clock, func(groupID notify.NotificationGroupId) {
		fired <- groupID
	})

	w.Schedule(1, 100.5)
	w.Schedule(1, 100.02)

	select {
	case got := <-fired:
		require.Equal(t, notify.NotificationGroupId(1), got)
	case <-time.After(time.Second):
		t.Fatal("timer never fired")
	}

	select {
	case <-fired:
		t.Fatal("replaced wakeup must not fire twice")
	case <-time.After(100 * time.Millisecond):
	}
}

func TestWheel_CancelDisarmsWakeup(t *testing.T) {
	clock := &fakeClock{now: 100}
	fired := make(chan notify.NotificationGroupId, 1)
	w := New(clock, func(groupID notify.NotificationGroupId) {
		fired <- groupID
	})

	w.Schedule(2, 100.03)
	w.Cancel(2)

	select {
	case <-fired:
		t.Fatal("cancelled timer must not fire")
	case <-time.After(150 * time.Millisecond):
	}
}
