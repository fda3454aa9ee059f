// Package presence tracks device online/offline activity, feeding
// notify.Presence so the delay policy can tell online activity from idle
// absence on both the local device and any remote device signaled over
// the account (spec §4.3 steps 3a/3b).
package presence

import (
	"context"
	"sync"
	"time"
)

// Manager is an injectable, non-singleton activity tracker: call Ping
// whenever local user activity is observed (a keystroke, a read receipt,
// a foreground app switch), call NoteRemoteActivity whenever another of
// the account's devices reports activity, and Run drives the local
// online/offline transition off an idle timer, the same shape as the
// teacher's ping/timer status loop, but with no outbound API calls — this
// manager only ever answers the four read-only questions notify.Presence
// asks. The recency window that used to live here (a "just went idle"
// grace period) moved into notify's delay policy, which compares
// WasOnlineLocal/WasOnlineRemote against the cloud timeout itself (spec
// §4.3 step 3b), so this manager just reports raw timestamps.
type Manager struct {
	idleTimeout time.Duration

	pingCh chan struct{}
	doneCh chan struct{}

	mu               sync.RWMutex
	online           bool
	lastOnlineAt     time.Time
	remoteOnline     bool
	lastRemoteOnline time.Time
}

// NewManager builds a Manager with idleTimeout as the gap after which a
// lack of local pings flips the local state to offline.
func NewManager(idleTimeout time.Duration) *Manager {
	return &Manager{
		idleTimeout: idleTimeout,
		pingCh:      make(chan struct{}, 1),
		doneCh:      make(chan struct{}),
	}
}

// Ping records local activity. Bursts collapse to a single pending
// signal, same as the teacher's buffered ping channel.
func (m *Manager) Ping() {
	select {
	case m.pingCh <- struct{}{}:
	default:
	}
}

// NoteRemoteActivity records an activity/idle signal from another of the
// account's devices — e.g. a push-ack or presence update relayed from a
// session other than this process's own. Unlike the local side, there is
// no idle timer driving this: the caller reports transitions as it
// learns of them.
func (m *Manager) NoteRemoteActivity(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if online {
		m.remoteOnline = true
		m.lastRemoteOnline = time.Now()
		return
	}
	if m.remoteOnline {
		m.lastRemoteOnline = time.Now()
	}
	m.remoteOnline = false
}

// Run drives the idle timer until ctx is canceled. It must be started in
// its own goroutine; callers can wait on Done() for a clean exit.
func (m *Manager) Run(ctx context.Context) {
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer close(m.doneCh)

	for {
		select {
		case <-ctx.Done():
			m.setOnline(false)
			return
		case <-m.pingCh:
			m.setOnline(true)
			if !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(m.idleTimeout)
		case <-timer.C:
			m.setOnline(false)
		}
	}
}

// Done closes once Run has returned.
func (m *Manager) Done() <-chan struct{} { return m.doneCh }

func (m *Manager) setOnline(online bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if online {
		m.online = true
		m.lastOnlineAt = time.Now()
		return
	}
	if m.online {
		m.lastOnlineAt = time.Now()
	}
	m.online = false
}

// IsOnlineLocal reports whether this process's own device is currently
// considered active (notify.Presence).
func (m *Manager) IsOnlineLocal() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.online
}

// IsOnlineRemote reports whether another of the account's devices is
// currently considered active (notify.Presence).
func (m *Manager) IsOnlineRemote() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.remoteOnline
}

// WasOnlineLocal returns the unix timestamp this device was last known
// online, 0 if never. The delay policy (not this manager) decides how
// recent is recent enough (notify.Presence).
func (m *Manager) WasOnlineLocal() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.online {
		return float64(time.Now().Unix())
	}
	return unixOrZero(m.lastOnlineAt)
}

// WasOnlineRemote returns the unix timestamp another device was last
// known online, 0 if never (notify.Presence).
func (m *Manager) WasOnlineRemote() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.remoteOnline {
		return float64(time.Now().Unix())
	}
	return unixOrZero(m.lastRemoteOnline)
}

func unixOrZero(t time.Time) float64 {
	if t.IsZero() {
		return 0
	}
	return float64(t.Unix())
}
