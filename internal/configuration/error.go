package configuration

import "errors"

var (
	// ErrInvalidValue is returned for configuration values that cannot be
	// parsed.
	ErrInvalidValue = errors.New("invalid configuration value")
)
