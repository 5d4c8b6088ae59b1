package models

import (
	"errors"
	"fmt"
)

// ErrClassifierUnavailable means no model is loaded or reachable. The
// synthesized record is still valid; only the prediction is missing.
var ErrClassifierUnavailable = errors.New("classifier unavailable")

// ConfigurationError reports an invalid setting detected at startup
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration %s: %s", e.Field, e.Reason)
}

// NewConfigError builds a ConfigurationError with a formatted reason
func NewConfigError(field, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// IsConfigurationError reports whether err carries a ConfigurationError
func IsConfigurationError(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
