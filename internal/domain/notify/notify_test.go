package notify

import "sync"

// fakeClock is a manually advanced Clock, standing in for
// internal/infra/clock.SystemClock in tests the way an injected
// collaborator is supposed to be swappable.
type fakeClock struct {
	mu  sync.Mutex
	now float64
}

func (c *fakeClock) ServerTime() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(seconds float64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += seconds
}

// fakePresence is a settable Presence double.
type fakePresence struct {
	online       bool
	onlineRemote bool
	was          float64
	wasRemote    float64
}

func (p *fakePresence) IsOnlineLocal() bool    { return p.online }
func (p *fakePresence) IsOnlineRemote() bool   { return p.onlineRemote }
func (p *fakePresence) WasOnlineLocal() float64  { return p.was }
func (p *fakePresence) WasOnlineRemote() float64 { return p.wasRemote }

// fakeAuthSession is a settable AuthSession double.
type fakeAuthSession struct {
	bot bool
}

func (a *fakeAuthSession) IsBot() bool { return a.bot }

// fakeTimerWheel records scheduled/canceled wakeups without ever firing
// them on its own; tests fire them explicitly by calling back into the
// Manager, the same way a real wheel would invoke OnTimerFired.
type fakeTimerWheel struct {
	mu        sync.Mutex
	scheduled map[NotificationGroupId]float64
}

func newFakeTimerWheel() *fakeTimerWheel {
	return &fakeTimerWheel{scheduled: make(map[NotificationGroupId]float64)}
}

func (w *fakeTimerWheel) Schedule(groupID NotificationGroupId, at float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.scheduled[groupID] = at
}

func (w *fakeTimerWheel) Cancel(groupID NotificationGroupId) {
	w.mu.Lock()
	defer w.mu.Unlock()
	delete(w.scheduled, groupID)
}

func (w *fakeTimerWheel) At(groupID NotificationGroupId) (float64, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	at, ok := w.scheduled[groupID]
	return at, ok
}

// fakeSink records every update delivered to it, in order.
type fakeSink struct {
	mu      sync.Mutex
	updates []Update
}

func (s *fakeSink) Deliver(u Update) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.updates = append(s.updates, u)
}

func (s *fakeSink) All() []Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Update, len(s.updates))
	copy(out, s.updates)
	return out
}

// memKV is an in-memory KV, standing in for internal/infra/kv.Store.
type memKV struct {
	mu     sync.Mutex
	values map[string]string
}

func newMemKV() *memKV { return &memKV{values: make(map[string]string)} }

func (k *memKV) Get(key string) (string, bool, error) {
	k.mu.Lock()
	defer k.mu.Unlock()
	v, ok := k.values[key]
	return v, ok, nil
}

func (k *memKV) Set(key, value string) error {
	k.mu.Lock()
	defer k.mu.Unlock()
	k.values[key] = value
	return nil
}

// staticConfig is a ConfigSource backed by a plain map, standing in for
// the shared configuration registry.
type staticConfig map[string]int

func (c staticConfig) GetInt(key string) (int, bool) {
	v, ok := c[key]
	return v, ok
}

func defaultTestConfig() staticConfig {
	return staticConfig{
		ConfigKeyMaxVisibleGroups:      3,
		ConfigKeyMaxGroupSize:          2,
		ConfigKeyOnlineCloudTimeoutMs:  60000,
		ConfigKeyNotificationCloudMs:   0,
		ConfigKeyNotificationDefaultMs: 0,
	}
}

func newTestManager(cfg staticConfig, presence *fakePresence) (*Manager, *fakeClock, *fakeTimerWheel, *fakeSink) {
	return newTestManagerWithAuth(cfg, presence, nil)
}

func newTestManagerWithAuth(cfg staticConfig, presence *fakePresence, auth *fakeAuthSession) (*Manager, *fakeClock, *fakeTimerWheel, *fakeSink) {
	clock := &fakeClock{now: 1000}
	wheel := newFakeTimerWheel()
	sink := &fakeSink{}
	if presence == nil {
		presence = &fakePresence{}
	}
	var authSession AuthSession
	if auth != nil {
		authSession = auth
	}
	m, err := NewManager(ManagerOptions{
		Clock:    clock,
		Presence: presence,
		Auth:     authSession,
		Timer:    wheel,
		Sink:     sink,
		KV:       newMemKV(),
		Config:   cfg,
	})
	if err != nil {
		panic(err)
	}
	return m, clock, wheel, sink
}

func userDialog(id int64) DialogId { return DialogId{Type: DialogTypeUser, ID: id} }
