package notify

import "sync"

// Config keys for the five tunables the engine mirrors from the shared
// configuration registry (spec §4.2/§6). Bounds are enforced in
// Config.Refresh.
const (
	ConfigKeyMaxVisibleGroups      = "notify.max_group_count"
	ConfigKeyMaxGroupSize          = "notify.max_group_size"
	ConfigKeyOnlineCloudTimeoutMs  = "notify.online_cloud_timeout_ms"
	ConfigKeyNotificationCloudMs   = "notify.notification_cloud_delay_ms"
	ConfigKeyNotificationDefaultMs = "notify.notification_default_delay_ms"
)

// extraGroupSize is EXTRA_GROUP_SIZE from spec §4.2: the slack kept beyond
// keep_size before a group's notification history is batch-trimmed (spec
// §4.5 step 8).
const extraGroupSize = 10

// Defaults applied when the shared registry has no value for a key yet, or
// when a value fails validation — mirrors config.go's parseIntDefault
// philosophy of never failing startup over a single bad tunable.
const (
	defaultMaxVisibleGroups         = 8
	defaultMaxGroupSize             = 5
	defaultOnlineCloudTimeoutMs     = 60000
	defaultNotificationCloudDelayMs = 2000
	defaultNotificationDefaultMs    = 1000
)

// ConfigSource is the external "shared configuration registry" collaborator
// (spec §6): an injected key-value reader the mirror polls/refreshes from,
// never a package-level global.
type ConfigSource interface {
	GetInt(key string) (value int, ok bool)
}

// Config is the engine's local, validated mirror of the five tunables.
// KeepSize is derived per spec §4.2: max_size + max(EXTRA_GROUP_SIZE/2,
// min(max_size, EXTRA_GROUP_SIZE)) — the number of notifications a flush
// batch-trims a group back down to once its history exceeds
// KeepSize+EXTRA_GROUP_SIZE (spec §4.5 step 8, invariant I4).
type Config struct {
	mu sync.RWMutex

	MaxVisibleGroups int
	MaxGroupSize     int
	// OnlineCloudTimeoutMs bounds how recently a device must have been seen
	// online for it to still count as "recently online" in the cloud-delay
	// branch (spec §4.3 step 3).
	OnlineCloudTimeoutMs int
	// NotificationCloudDelayMs is the delay applied when no device is
	// known to be online (the "send via cloud push" case).
	NotificationCloudDelayMs int
	// NotificationDefaultDelayMs is the delay applied when at least one
	// device is locally/recently online.
	NotificationDefaultDelayMs int
	KeepSize                   int
}

// NewConfig builds a Config already populated from source, applying
// defaults and bounds per field.
func NewConfig(source ConfigSource) *Config {
	c := &Config{}
	c.Refresh(source)
	return c
}

// Refresh re-reads every tunable from source. Per the config-change
// decision in SPEC_FULL.md, this never touches existing groups or pending
// state — it only changes what the next flush computes.
func (c *Config) Refresh(source ConfigSource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.MaxVisibleGroups = boundedInt(source, ConfigKeyMaxVisibleGroups, defaultMaxVisibleGroups, 1, 1<<20)
	c.MaxGroupSize = boundedInt(source, ConfigKeyMaxGroupSize, defaultMaxGroupSize, 1, 1<<20)
	c.OnlineCloudTimeoutMs = boundedInt(source, ConfigKeyOnlineCloudTimeoutMs, defaultOnlineCloudTimeoutMs, 0, 1<<30)
	c.NotificationCloudDelayMs = boundedInt(source, ConfigKeyNotificationCloudMs, defaultNotificationCloudDelayMs, 0, 1<<30)
	c.NotificationDefaultDelayMs = boundedInt(source, ConfigKeyNotificationDefaultMs, defaultNotificationDefaultMs, 0, 1<<30)
	c.KeepSize = c.MaxGroupSize + max(extraGroupSize/2, min(c.MaxGroupSize, extraGroupSize))
}

// Snapshot returns a copy safe to read without holding the Config's lock.
func (c *Config) Snapshot() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Config{
		MaxVisibleGroups:           c.MaxVisibleGroups,
		MaxGroupSize:               c.MaxGroupSize,
		OnlineCloudTimeoutMs:       c.OnlineCloudTimeoutMs,
		NotificationCloudDelayMs:   c.NotificationCloudDelayMs,
		NotificationDefaultDelayMs: c.NotificationDefaultDelayMs,
		KeepSize:                   c.KeepSize,
	}
}

func boundedInt(source ConfigSource, key string, def, min, max int) int {
	if source == nil {
		return def
	}
	v, ok := source.GetInt(key)
	if !ok || v < min || v > max {
		return def
	}
	return v
}
