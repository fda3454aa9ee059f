// Package config collects and serves this engine's process bootstrap
// configuration. It reads environment variables from .env (via
// godotenv), normalizes and validates them, and exposes the notification
// tunables through a Registry that implements notify.ConfigSource so the
// Manager can be reloaded at runtime without restarting the process.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// EnvConfig holds the settings read from the environment at startup:
// where the engine keeps its durable KV file, how verbosely it logs, and
// the initial values of the tunables notify.Config mirrors.
type EnvConfig struct {
	LogLevel string
	KVFile   string
	DataDir  string

	MaxVisibleGroups           int
	MaxGroupSize               int
	OnlineCloudTimeoutMs       int
	NotificationCloudDelayMs   int
	NotificationDefaultDelayMs int

	PresenceIdleTimeoutMs int

	UpdateSinkRPS   int
	UpdateSinkBurst int

	Interactive bool
	BotSession  bool
}

const (
	defaultLogLevel                 = "info"
	defaultKVFile                   = "data/notify.bbolt"
	defaultDataDir                  = "data"
	defaultMaxVisibleGroups         = 8
	defaultMaxGroupSize             = 5
	defaultOnlineCloudTimeoutMs     = 60000
	defaultNotificationCloudDelayMs = 2000
	defaultNotificationDefaultMs    = 1000
	defaultPresenceIdleMs           = 60000
	defaultUpdateSinkRPS            = 20
	defaultUpdateSinkBurst          = 20
)

// Config holds the loaded environment configuration.
//
// Thread-safety: Warnings takes an RLock; Env reads without one, since
// nothing in EnvConfig itself is mutated after Load, so in practice the
// lock only guards the warnings slice against concurrent Warnings() calls
// during startup.
type Config struct {
	Env      EnvConfig
	warnings []string
	mu       sync.RWMutex
}

var (
	cfgInstance *Config
	cfgDone     bool
)

// Load is the entry point for initializing this process's configuration.
// Calling it twice returns an error, to avoid configuration races at
// startup.
func Load(envPath string) error {
	if cfgDone {
		return errors.New("config already loaded")
	}
	if cfgInstance == nil {
		cfgInstance = &Config{}
	}
	cfgInstance.mu.Lock()
	defer cfgInstance.mu.Unlock()
	newCfg, err := loadConfig(envPath)
	cfgInstance = newCfg
	cfgDone = true
	return err
}

// loadConfig does the actual load/validation without touching global
// state, so tests can build a throwaway Config and inspect it directly.
func loadConfig(envPath string) (*Config, error) {
	if err := godotenv.Load(envPath); err != nil {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	var warnings []string

	logLevel := sanitizeLogLevel(os.Getenv("LOG_LEVEL"), &warnings)
	kvFile := sanitizeFile("KV_FILE", os.Getenv("KV_FILE"), defaultKVFile, &warnings)
	dataDir := sanitizeFile("DATA_DIR", os.Getenv("DATA_DIR"), defaultDataDir, &warnings)

	maxVisibleGroups := parseIntDefault("MAX_VISIBLE_GROUPS", defaultMaxVisibleGroups, greaterThanZero, &warnings)
	maxGroupSize := parseIntDefault("MAX_GROUP_SIZE", defaultMaxGroupSize, greaterThanZero, &warnings)
	onlineCloudTimeoutMs := parseIntDefault("ONLINE_CLOUD_TIMEOUT_MS", defaultOnlineCloudTimeoutMs, nonNegative, &warnings)
	notificationCloudDelayMs := parseIntDefault("NOTIFICATION_CLOUD_DELAY_MS", defaultNotificationCloudDelayMs, nonNegative, &warnings)
	notificationDefaultMs := parseIntDefault("NOTIFICATION_DEFAULT_DELAY_MS", defaultNotificationDefaultMs, nonNegative, &warnings)

	presenceIdleMs := parseIntDefault("PRESENCE_IDLE_TIMEOUT_MS", defaultPresenceIdleMs, greaterThanZero, &warnings)

	updateSinkRPS := parseIntDefault("UPDATE_SINK_RPS", defaultUpdateSinkRPS, greaterThanZero, &warnings)
	updateSinkBurst := parseIntDefault("UPDATE_SINK_BURST", defaultUpdateSinkBurst, greaterThanZero, &warnings)

	interactive := strings.EqualFold(strings.TrimSpace(os.Getenv("INTERACTIVE")), "true")
	botSession := strings.EqualFold(strings.TrimSpace(os.Getenv("BOT_SESSION")), "true")

	env := EnvConfig{
		LogLevel:                   logLevel,
		KVFile:                     kvFile,
		DataDir:                    dataDir,
		MaxVisibleGroups:           maxVisibleGroups,
		MaxGroupSize:               maxGroupSize,
		OnlineCloudTimeoutMs:       onlineCloudTimeoutMs,
		NotificationCloudDelayMs:   notificationCloudDelayMs,
		NotificationDefaultDelayMs: notificationDefaultMs,
		PresenceIdleTimeoutMs:      presenceIdleMs,
		UpdateSinkRPS:              updateSinkRPS,
		UpdateSinkBurst:            updateSinkBurst,
		Interactive:                interactive,
		BotSession:                 botSession,
	}

	return &Config{Env: env, warnings: warnings}, nil
}

// Warnings returns the warnings accumulated while reading the
// environment (e.g. whenever a default was substituted). Returns a copy.
func Warnings() []string {
	cfgInstance.mu.RLock()
	defer cfgInstance.mu.RUnlock()
	result := make([]string, len(cfgInstance.warnings))
	copy(result, cfgInstance.warnings)
	return result
}

// Env returns the EnvConfig from the global singleton.
func Env() EnvConfig {
	return cfgInstance.Env
}

func parseIntDefault(name string, defaultVal int, validator func(int) bool, warnings *[]string) int {
	value := strings.TrimSpace(os.Getenv(name))
	if value == "" {
		appendWarningf(warnings, "env %s is not set; using default %d", name, defaultVal)
		return defaultVal
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		appendWarningf(warnings, "env %s value %q is not a valid integer; using default %d", name, value, defaultVal)
		return defaultVal
	}
	if validator != nil && !validator(v) {
		appendWarningf(warnings, "env %s value %d does not satisfy constraints; using default %d", name, v, defaultVal)
		return defaultVal
	}
	return v
}

func appendWarningf(warnings *[]string, format string, args ...any) {
	if warnings == nil {
		return
	}
	*warnings = append(*warnings, fmt.Sprintf(format, args...))
}

func greaterThanZero(v int) bool { return v > 0 }
func nonNegative(v int) bool     { return v >= 0 }

func sanitizeLogLevel(level string, warnings *[]string) string {
	lvl := strings.ToLower(strings.TrimSpace(level))
	if lvl == "" {
		appendWarningf(warnings, "env LOG_LEVEL is not set; using default %q", defaultLogLevel)
		return defaultLogLevel
	}
	switch lvl {
	case "debug", "info", "warn", "error":
		return lvl
	default:
		appendWarningf(warnings, "env LOG_LEVEL value %q is invalid; using default %q", level, defaultLogLevel)
		return defaultLogLevel
	}
}

func sanitizeFile(name, value, fallback string, warnings *[]string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		appendWarningf(warnings, "env %s is not set; using default %q", name, fallback)
		return fallback
	}
	return v
}
