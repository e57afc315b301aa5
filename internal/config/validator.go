package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Iron-Ham/trackstore/internal/logging"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "tracking.lock_retries")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Upper bounds that keep a stuck lock from stalling a caller for minutes.
const (
	maxLockRetries      = 1000
	maxLockRetryDelayMs = 10000
)

// ValidLogLevels returns the log levels accepted in config files, which
// are the logger's levels in lower case.
func ValidLogLevels() []string {
	levels := logging.ValidLevels()
	for i, l := range levels {
		levels[i] = strings.ToLower(l)
	}
	return levels
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	// Validate Tracking config
	errors = append(errors, c.validateTracking()...)

	// Validate Logging config
	errors = append(errors, c.validateLogging()...)

	return errors
}

// validateTracking validates the TrackingConfig
func (c *Config) validateTracking() []ValidationError {
	var errors []ValidationError

	if c.Tracking.LockRetries < 0 {
		errors = append(errors, ValidationError{
			Field:   "tracking.lock_retries",
			Value:   c.Tracking.LockRetries,
			Message: "must be non-negative",
		})
	} else if c.Tracking.LockRetries > maxLockRetries {
		errors = append(errors, ValidationError{
			Field:   "tracking.lock_retries",
			Value:   c.Tracking.LockRetries,
			Message: fmt.Sprintf("exceeds maximum of %d", maxLockRetries),
		})
	}

	if c.Tracking.LockRetryDelayMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "tracking.lock_retry_delay_ms",
			Value:   c.Tracking.LockRetryDelayMs,
			Message: "must be non-negative",
		})
	} else if c.Tracking.LockRetryDelayMs > maxLockRetryDelayMs {
		errors = append(errors, ValidationError{
			Field:   "tracking.lock_retry_delay_ms",
			Value:   c.Tracking.LockRetryDelayMs,
			Message: fmt.Sprintf("exceeds maximum of %dms", maxLockRetryDelayMs),
		})
	}

	return errors
}

// validateLogging validates the LoggingConfig
func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	// Validate log level
	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), c.Logging.Level) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}

	return errors
}
