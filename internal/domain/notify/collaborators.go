package notify

// Clock abstracts time so the engine never calls time.Now() directly
// (spec §9's note against module-level global state extends to hidden
// wall-clock reads, not just singletons). ServerTime is the time base
// every Notification.CreatedAt and delay computation is expressed in.
type Clock interface {
	// ServerTime returns the current time as seconds since the Unix epoch.
	ServerTime() float64
}

// Presence is the external presence oracle (spec §6's get_my_status() four-
// tuple): the delay policy's cloud-delay branch (spec §4.3 step 3) compares
// both this device's and this account's other-device activity, so both
// halves are first-class here rather than local-only. The "was online"
// fields are server timestamps (seconds since epoch), not booleans — the
// policy needs to compare them against a recency window
// (online_cloud_timeout_ms), not just test truthiness.
type Presence interface {
	// IsOnlineLocal reports whether this device is online right now.
	IsOnlineLocal() bool
	// IsOnlineRemote reports whether any other device on this account is
	// online right now.
	IsOnlineRemote() bool
	// WasOnlineLocal returns the server time this device was last online.
	WasOnlineLocal() float64
	// WasOnlineRemote returns the server time any other device on this
	// account was last online.
	WasOnlineRemote() float64
}

// AuthSession reports whether the current session belongs to a bot. Every
// mutating Manager operation is a silent no-op under a bot session (spec
// §4.4 step 1, §7's "disabled session" taxonomy): bots never receive push
// notifications.
type AuthSession interface {
	IsBot() bool
}

// TimerWheel is the externally owned timer collaborator the scheduler
// drives: exactly one pending wakeup per group, identified by
// NotificationGroupId, with later calls replacing earlier ones for the
// same id (spec §4.4).
type TimerWheel interface {
	// Schedule arms (or re-arms) a wakeup for groupID at the given server
	// time. The wheel is expected to call the callback it was constructed
	// with, not to return one here — see Manager.OnTimerFired.
	Schedule(groupID NotificationGroupId, at float64)
	// Cancel disarms any pending wakeup for groupID. Safe to call when
	// none is armed.
	Cancel(groupID NotificationGroupId)
}

// UpdateSink is where the engine emits diff-style updates (spec §6).
// Delivery is fire-and-forget: the engine never retries a failed Deliver
// call, per the Non-goals.
type UpdateSink interface {
	Deliver(update Update)
}
