package configuration

import (
	"log/slog"
)

// AppConfiguration is the principal structure holding the application configuration.
type AppConfiguration struct {
	// LogLevel is the minimum level of log records written.
	LogLevel slog.Level

	// SyncWrites forwards every superblock write to stable storage.
	SyncWrites bool

	// VerifyTransfers reads back relocated extents and compares checksums.
	VerifyTransfers bool

	// Summary logs a summary after a batch of commands.
	Summary bool
}

// NewAppConfiguration returns a pointer to a new [AppConfiguration] holding
// the defaults.
func NewAppConfiguration() *AppConfiguration {
	return &AppConfiguration{
		LogLevel:        slog.LevelWarn,
		SyncWrites:      false,
		VerifyTransfers: true,
		Summary:         false,
	}
}

func (a *AppConfiguration) apply(envMap map[string]string) {
	if s := MapKeyToString(envMap, KeyLogLevel); s != "" {
		if level, err := ParseLevel(s); err == nil {
			a.LogLevel = level
		} else {
			slog.Warn("Invalid configuration value (using default)", "key", KeyLogLevel, "err", err)
		}
	}

	bools := []struct {
		key    string
		target *bool
	}{
		{KeySyncWrites, &a.SyncWrites},
		{KeyVerifyTransfers, &a.VerifyTransfers},
		{KeySummary, &a.Summary},
	}

	for _, b := range bools {
		if MapKeyToString(envMap, b.key) == "" {
			continue
		}
		if v, ok := MapKeyToBool(envMap, b.key); ok {
			*b.target = v
		} else {
			slog.Warn("Invalid configuration value (using default)", "key", b.key, "value", envMap[b.key])
		}
	}
}
