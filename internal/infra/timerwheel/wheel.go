// Package timerwheel implements notify.TimerWheel: one real time.Timer per
// group, replaced (not stacked) on every re-schedule, adapted from
// internal/concurrency/debounce.go's per-id timer-replace pattern — the
// direction differs (debounce always restarts to the latest event; the
// pendingScheduler that drives this wheel only ever brings a flush
// earlier), but the "one timer slot per id, Stop-then-replace" shape is
// the same.
package timerwheel

import (
	"sync"
	"time"

	"notifyengine/internal/domain/notify"
)

// Wheel converts the engine's float64 server-time deadlines into real
// wall-clock timers and invokes onFire when one elapses.
type Wheel struct {
	mu     sync.Mutex
	clock  notify.Clock
	onFire func(groupID notify.NotificationGroupId)
	timers map[notify.NotificationGroupId]*time.Timer
}

// New builds a Wheel. onFire is called from the timer's own goroutine, not
// under Wheel's lock, so it is free to call back into the engine (which
// takes its own lock in OnTimerFired).
func New(clock notify.Clock, onFire func(groupID notify.NotificationGroupId)) *Wheel {
	return &Wheel{
		clock:  clock,
		onFire: onFire,
		timers: make(map[notify.NotificationGroupId]*time.Timer),
	}
}

// Schedule arms groupID to fire at server time at, replacing any existing
// wakeup for the same group.
func (w *Wheel) Schedule(groupID notify.NotificationGroupId, at float64) {
	delay := time.Duration((at - w.clock.ServerTime()) * float64(time.Second))
	if delay < 0 {
		delay = 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	if existing, ok := w.timers[groupID]; ok {
		existing.Stop()
	}
	w.timers[groupID] = time.AfterFunc(delay, func() {
		w.fire(groupID)
	})
}

// Cancel disarms any pending wakeup for groupID. Safe to call when none is
// armed.
func (w *Wheel) Cancel(groupID notify.NotificationGroupId) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.timers[groupID]; ok {
		existing.Stop()
		delete(w.timers, groupID)
	}
}

func (w *Wheel) fire(groupID notify.NotificationGroupId) {
	w.mu.Lock()
	delete(w.timers, groupID)
	w.mu.Unlock()
	w.onFire(groupID)
}
