package core

import (
	"errors"
	"fmt"
)

// ErrEmptyPool is returned when no usable exercises remain after filtering.
var ErrEmptyPool = errors.New("no exercises selected")

// ErrInvalidConfig matches any *InvalidConfigError via errors.Is.
var ErrInvalidConfig = errors.New("invalid run config")

// InvalidConfigError reports the first run parameter that failed validation.
type InvalidConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid run config: %s %s", e.Field, e.Reason)
}

func (e *InvalidConfigError) Is(target error) bool {
	return target == ErrInvalidConfig
}

func invalid(field, reason string) error {
	return &InvalidConfigError{Field: field, Reason: reason}
}

// IsClientError reports whether err was caused by the caller's input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrEmptyPool) || errors.Is(err, ErrInvalidConfig)
}
