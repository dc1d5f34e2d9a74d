package recurrence

import (
	"errors"
	"fmt"
)

// ErrInvalidRecurrenceConfig is returned for malformed recurrence rules.
var ErrInvalidRecurrenceConfig = errors.New("invalid recurrence config")

// InvalidRecurrenceConfigError names the field that failed validation.
type InvalidRecurrenceConfigError struct {
	Field  string
	Reason string
}

func (e *InvalidRecurrenceConfigError) Error() string {
	return fmt.Sprintf("invalid recurrence config: %s %s", e.Field, e.Reason)
}

func (e *InvalidRecurrenceConfigError) Unwrap() error {
	return ErrInvalidRecurrenceConfig
}

func invalid(field, reason string) error {
	return &InvalidRecurrenceConfigError{Field: field, Reason: reason}
}
