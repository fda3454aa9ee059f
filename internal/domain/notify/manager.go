package notify

import (
	"sync"

	"go.uber.org/zap"
)

// NotificationInput is what a caller supplies to AddNotification; the
// engine allocates the id and stamps the arrival time itself.
type NotificationInput struct {
	Dialog           DialogId
	SettingsDialogID DialogId
	Silent           bool
	Type             NotificationType
}

// ManagerOptions wires every external collaborator spec §6 names. Clock,
// Timer, Sink and KV are required. A nil Auth is treated as a non-bot
// session, a nil Logger disables logging, a nil Presence makes the delay
// policy use the cloud delay, and a nil Config leaves every tunable at its
// default. Manager does not fall back to globals for any of them (spec §9's
// note against module-level singletons).
type ManagerOptions struct {
	Clock    Clock
	Presence Presence
	Auth     AuthSession
	Timer    TimerWheel
	Sink     UpdateSink
	KV       KV
	Config   ConfigSource
	Logger   *zap.Logger
}

// Manager is the facade tying the identifier allocators, config mirror,
// group store, pending scheduler, and flush/edit/remove engines together
// behind a single mutex. It is a cooperative single-threaded actor (spec
// §5): every exported method except RefreshConfig (which only takes the
// Config's own lock) takes the same lock and does its work synchronously;
// there is no internal goroutine fan-out to race against.
type Manager struct {
	mu sync.Mutex

	clock    Clock
	presence Presence
	auth     AuthSession
	sink     UpdateSink
	log      *zap.Logger

	cfg    *Config
	groups *GroupStore

	notifAlloc *Allocator
	groupAlloc *Allocator

	scheduler *pendingScheduler
	// pending holds, per group, the FIFO of notifications not yet folded
	// into that group by a flush. A flush always clears the entire FIFO
	// for its group in one batch (spec §4.5 step 7) — there is no
	// per-item readiness split here, only a per-group flush deadline
	// (see pendingScheduler).
	pending map[NotificationGroupId][]Notification
}

// NewManager constructs a Manager from its collaborators. The two
// durable counters are loaded from KV immediately; everything else starts
// empty (groups and pending state are never persisted, per spec §1's
// Non-goals).
func NewManager(opts ManagerOptions) (*Manager, error) {
	notifAlloc, err := NewAllocator(opts.KV, NotificationIDCounterKey)
	if err != nil {
		return nil, err
	}
	groupAlloc, err := NewAllocator(opts.KV, GroupIDCounterKey)
	if err != nil {
		return nil, err
	}

	m := &Manager{
		clock:      opts.Clock,
		presence:   opts.Presence,
		auth:       opts.Auth,
		sink:       opts.Sink,
		log:        opts.Logger,
		cfg:        NewConfig(opts.Config),
		groups:     NewGroupStore(),
		notifAlloc: notifAlloc,
		groupAlloc: groupAlloc,
		pending:    make(map[NotificationGroupId][]Notification),
	}
	m.scheduler = newPendingScheduler(opts.Timer)
	return m, nil
}

// RefreshConfig re-reads the five tunables from the shared registry. Safe
// to call at any time; never retroactively touches existing groups, see
// SPEC_FULL.md's config-change decision.
func (m *Manager) RefreshConfig(source ConfigSource) {
	m.cfg.Refresh(source)
}

// AddNotification allocates an id for n, computes its delay per the delay
// policy, and either flushes its group immediately (when the delay is zero:
// the notification type cannot be delayed, or the dialog is a secret chat)
// or schedules the earliest-wins flush timer. A
// bot session never receives push notifications (spec §4.4 step 1, §7):
// the call is a silent no-op, and no id is even allocated for it.
func (m *Manager) AddNotification(n NotificationInput) (NotificationId, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.auth != nil && m.auth.IsBot() {
		return 0, nil
	}

	rawID, err := m.notifAlloc.Next()
	if err != nil {
		return 0, err
	}
	id := NotificationId(rawID)
	now := m.clock.ServerTime()

	notif := Notification{
		ID:               id,
		Dialog:           n.Dialog,
		SettingsDialogID: n.SettingsDialogID,
		Silent:           n.Silent,
		Type:             n.Type,
		CreatedAt:        now,
	}

	group := m.groupForDialog(n.Dialog, n.SettingsDialogID, n.Silent)

	cfgSnap := m.cfg.Snapshot()
	delay := computeDelay(n.Dialog.Type, n.Type.CanBeDelayed(), m.presence, cfgSnap, now, now)
	flushAt := now + delay.Seconds()

	m.pending[group.ID] = append(m.pending[group.ID], notif)

	if m.log != nil {
		m.log.Debug("notification queued",
			zap.Int32("notification_id", int32(id)),
			zap.Int32("group_id", int32(group.ID)),
			zap.Stringer("dialog", n.Dialog),
			zap.Duration("delay", delay),
		)
	}

	if delay <= 0 {
		m.flushGroupLocked(group.ID)
	} else {
		m.scheduler.Request(group.ID, flushAt)
	}

	return id, nil
}

// groupForDialog returns the dialog's live group, creating one (with a
// freshly allocated id) if this is the dialog's first notification.
func (m *Manager) groupForDialog(dialog, settingsDialog DialogId, silent bool) *Group {
	if g, ok := m.groups.ByDialog(dialog); ok {
		return g
	}
	rawID, err := m.groupAlloc.Next()
	if err != nil {
		// Group ids are only ever exhausted by wrapping, never by failure
		// short of a KV write error; a write error here is unrecoverable
		// for this notification, same as a notifAlloc failure above would
		// have been, so it is promoted to a contract violation rather than
		// silently dropping the notification.
		panicOnViolation(false, "group id allocation failed: "+err.Error())
	}
	g := &Group{
		ID:               NotificationGroupId(rawID),
		Key:              GroupKey{Dialog: dialog},
		SettingsDialogID: settingsDialog,
		Silent:           silent,
	}
	m.groups.Upsert(g)
	return g
}

// OnTimerFired is the callback the TimerWheel collaborator invokes when a
// group's scheduled flush time arrives.
func (m *Manager) OnTimerFired(groupID NotificationGroupId) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.flushGroupLocked(groupID)
}
