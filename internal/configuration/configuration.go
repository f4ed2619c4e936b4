// Package configuration implements the application configuration, read from
// an optional env-style file.
package configuration

import (
	"fmt"
	"log/slog"
	"strings"
)

// Configuration keys.
const (
	KeyLogLevel        = "FSSIM_LOG_LEVEL"
	KeySyncWrites      = "FSSIM_SYNC_WRITES"
	KeyVerifyTransfers = "FSSIM_VERIFY_TRANSFERS"
	KeySummary         = "FSSIM_SUMMARY"
)

// DefaultConfigFile is read when no other configuration file is given.
const DefaultConfigFile = "/etc/fssim.env"

type genericConfigProvider interface {
	ReadOptional(path string) (map[string]string, bool, error)
}

// Handler is the principal implementation for reading configurations.
type Handler struct {
	configProvider genericConfigProvider
}

// NewHandler returns a pointer to a new configuration [Handler].
func NewHandler(configProvider genericConfigProvider) *Handler {
	return &Handler{
		configProvider: configProvider,
	}
}

// Load reads the configuration file at path on top of the defaults. A
// missing file yields the defaults, values that cannot be parsed keep their
// default with a warning.
func (c *Handler) Load(path string) (*AppConfiguration, error) {
	config := NewAppConfiguration()

	envMap, exists, err := c.configProvider.ReadOptional(path)
	if err != nil {
		return nil, fmt.Errorf("(config) failed to read %s: %w", path, err)
	}
	if !exists {
		slog.Debug("No configuration file, using defaults", "path", path)

		return config, nil
	}

	config.apply(envMap)

	return config, nil
}

// MapKeyToString returns the value of key, or "" if it is not set.
func MapKeyToString(envMap map[string]string, key string) string {
	if value, exists := envMap[key]; exists {
		return strings.TrimSpace(value)
	}

	return ""
}

// MapKeyToBool returns the value of a yes/no key. The second return value is
// false if the key is not set or holds neither.
func MapKeyToBool(envMap map[string]string, key string) (bool, bool) {
	switch strings.ToLower(MapKeyToString(envMap, key)) {
	case "yes", "true", "1":
		return true, true
	case "no", "false", "0":
		return false, true
	default:
		return false, false
	}
}

// ParseLevel converts a level name (debug, info, warn, error) to a
// [slog.Level].
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level

	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return level, fmt.Errorf("(config) %w: %q", ErrInvalidValue, s)
	}

	return level, nil
}
