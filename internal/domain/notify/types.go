package notify

// NotificationId identifies a single notification. It wraps at maxID; see
// Allocator.
type NotificationId int32

// NotificationGroupId identifies a group of notifications coalesced under
// one dialog. It wraps independently of NotificationId.
type NotificationGroupId int32

// NotificationType is a capability set rather than a closed sum type: the
// engine only ever needs to know whether a notification can be delayed and
// how to render it for an update payload, never its concrete kind. New
// notification kinds (message, reaction, poll result, ...) implement this
// interface without touching the engine.
type NotificationType interface {
	// CanBeDelayed reports whether the delay policy may batch this
	// notification with later ones, or whether it must flush immediately
	// (e.g. a call, which is meaningless once stale).
	CanBeDelayed() bool
	// Render produces the wire-level text for dialog, or ok=false if the
	// notification is unrenderable and must be silently dropped from the
	// emitted batch — it still counts toward the group's total_count
	// (spec §3/§4.6).
	Render(dialog DialogId) (content string, ok bool)
}

// MessageNotification is the common case: a new or edited message arrived
// in a dialog.
type MessageNotification struct {
	SenderName string
	Text       string
}

func (MessageNotification) CanBeDelayed() bool { return true }

func (n MessageNotification) Render(DialogId) (string, bool) {
	if n.SenderName == "" {
		return n.Text, true
	}
	return n.SenderName + ": " + n.Text, true
}

// CallNotification represents a missed/incoming call. Calls are
// time-sensitive: batching one behind a delay window would show it long
// after it stopped ringing, so it can never be delayed.
type CallNotification struct {
	Video bool
}

func (CallNotification) CanBeDelayed() bool { return false }

func (n CallNotification) Render(DialogId) (string, bool) {
	if n.Video {
		return "Incoming video call", true
	}
	return "Incoming call", true
}

// RenderedNotification is a notification id paired with its rendered
// content — the wire shape spec §6's updateNotificationGroup/
// updateNotification carry ({id, rendered}).
type RenderedNotification struct {
	ID      NotificationId
	Content string
}

// Notification is one unit of notifiable activity addressed to a dialog.
// The engine uses the same representation for a notification whether it
// is still queued for flush or already folded into a group: spec §3 names
// these as distinct types (PendingNotification vs. Notification), but
// once a per-item flush deadline is no longer tracked (see Manager.pending)
// the two carry identical fields, so one Go type suffices for both.
type Notification struct {
	ID NotificationId
	// Dialog is the conversation the notification is about.
	Dialog DialogId
	// SettingsDialogID is the dialog whose notification settings govern
	// silence/delay for this item. For plain dialogs it equals Dialog; for
	// a message inside a forum topic it is the parent supergroup, so topics
	// share one mute/delay decision with their forum (spec §4.5's
	// sub-batch partitioning key).
	SettingsDialogID DialogId
	// Silent means the item must not play a sound/vibrate when flushed,
	// independent of whether it is delayed.
	Silent bool
	Type   NotificationType
	// CreatedAt is server time in seconds (Clock.ServerTime()), used both
	// for ordering within a group and as the group's sort key.
	CreatedAt float64
}

// GroupKey identifies which Group a notification belongs to. Two
// notifications addressed to the same dialog always share a group; there
// is exactly one live Group per DialogId at a time.
type GroupKey struct {
	Dialog DialogId
}

// Group coalesces all not-yet-dismissed notifications for one dialog.
// Notifications are stored oldest-first; the visible suffix (the last
// Config.MaxGroupSize entries) is what flush emits, while TotalCount
// tracks how many items the group represents even when older ones have
// been trimmed from Notifications to bound memory (spec §4.6).
type Group struct {
	ID                   NotificationGroupId
	Key                  GroupKey
	Notifications        []Notification
	TotalCount           int
	LastNotificationDate float64
	// SettingsDialogID and Silent mirror the most recently flushed
	// pending item's values, used when re-emitting a group's state
	// outside of a flush (the remove path has no per-run settings pair
	// of its own to carry).
	SettingsDialogID DialogId
	Silent           bool
}

// VisibleNotifications returns the suffix of Notifications that is within
// the per-group visible window, newest last.
func (g *Group) VisibleNotifications(maxVisible int) []Notification {
	if maxVisible <= 0 || len(g.Notifications) == 0 {
		return nil
	}
	if len(g.Notifications) <= maxVisible {
		return g.Notifications
	}
	return g.Notifications[len(g.Notifications)-maxVisible:]
}
