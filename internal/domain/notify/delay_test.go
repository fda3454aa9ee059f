package notify

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestComputeDelay(t *testing.T) {
	cfg := Config{
		NotificationDefaultDelayMs: 1000,
		NotificationCloudDelayMs:   5000,
		OnlineCloudTimeoutMs:       60000,
	}
	const now = 100000.0

	cases := []struct {
		name         string
		dialogType   DialogType
		canBeDelayed bool
		presence     Presence
		want         time.Duration
	}{
		{"undelayable type flushes immediately regardless of presence",
			DialogTypeUser, false, &fakePresence{online: true}, 0},
		{"secret chat always flushes immediately, even while online",
			DialogTypeSecretChat, true, &fakePresence{online: true}, 0},
		{"online local device uses the default delay",
			DialogTypeUser, true, &fakePresence{online: true}, time.Second},
		{"online remote device uses the default delay",
			DialogTypeUser, true, &fakePresence{onlineRemote: true}, time.Second},
		{"remote device online more recently than local and the cloud timeout window uses the default delay",
			DialogTypeUser, true, &fakePresence{was: now - 100, wasRemote: now - 10}, time.Second},
		{"remote device last seen before the cloud timeout window uses the cloud delay",
			DialogTypeUser, true, &fakePresence{was: now - 200, wasRemote: now - 100}, 5 * time.Second},
		{"no device ever online uses the cloud delay",
			DialogTypeUser, true, &fakePresence{}, 5 * time.Second},
		{"nil presence treated as cloud delay",
			DialogTypeUser, true, nil, 5 * time.Second},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := computeDelay(tc.dialogType, tc.canBeDelayed, tc.presence, cfg, now, now)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestComputeDelay_CreditsTimeAlreadyElapsed(t *testing.T) {
	cfg := Config{
		NotificationDefaultDelayMs: 1000,
		NotificationCloudDelayMs:   5000,
	}

	got := computeDelay(DialogTypeUser, true, &fakePresence{online: true}, cfg, 1000, 1001.95)
	assert.Equal(t, time.Duration(minNotificationDelayMs)*time.Millisecond, got)
}
