package notify

import (
	"math"
	"time"
)

// minNotificationDelayMs is MIN_NOTIFICATION_DELAY_MS (spec §4.3 step 5):
// the floor applied to the presence-based delay, even after subtracting
// time already elapsed since the notification was queued. The spec names
// the constant but never fixes its value; 50ms is chosen here as a value
// well under any flush tick granularity. The floor is not applied to
// undelayable types or secret chats: computeDelay returns 0 for those,
// and AddNotification flushes a zero delay immediately.
const minNotificationDelayMs = 50

// computeDelay implements the delay policy (spec §4.3): a pure function of
// dialog kind, whether the notification type admits delaying at all,
// presence, and how much time has already passed since the notification
// was queued — no state of its own, so it is trivially table-tested.
//
// pendingDate is the server time the notification was queued (Notification.
// CreatedAt); now is the current server time.
func computeDelay(dialogType DialogType, canBeDelayed bool, presence Presence, cfg Config, pendingDate, now float64) time.Duration {
	// Step 1: undelayable notifications (calls) and secret chats always
	// flush with zero delay — a secret chat never gets a configurable
	// delay of its own, it simply never waits.
	if !canBeDelayed || dialogType == DialogTypeSecretChat {
		return 0
	}

	// Step 3: pick the cloud vs. default delay based on device presence.
	base := cloudDelayBaseMs(presence, cfg, now)

	// Step 4: credit time already elapsed since the notification arrived.
	passedMs := math.Max(0, (now-pendingDate-1)*1000)

	// Step 5: never report less than the floor.
	remaining := math.Max(float64(base)-passedMs, minNotificationDelayMs)
	return time.Duration(remaining) * time.Millisecond
}

// cloudDelayBaseMs implements spec §4.3 step 3: if this device, or another
// device on the account, is online now — or another device was online more
// recently than both this device and the cloud timeout window — the
// notification can use the shorter default delay, since some device is
// already able to receive it directly. Otherwise it must wait for the
// longer cloud-push delay.
func cloudDelayBaseMs(presence Presence, cfg Config, now float64) int {
	if presence == nil {
		return cfg.NotificationCloudDelayMs
	}

	if presence.IsOnlineLocal() || presence.IsOnlineRemote() {
		return cfg.NotificationDefaultDelayMs
	}

	cloudTimeoutBoundary := now - float64(cfg.OnlineCloudTimeoutMs)/1000
	recencyFloor := math.Max(presence.WasOnlineLocal(), cloudTimeoutBoundary)
	if presence.WasOnlineRemote() > recencyFloor {
		return cfg.NotificationDefaultDelayMs
	}
	return cfg.NotificationCloudDelayMs
}
