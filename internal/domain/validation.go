package domain

import (
	"errors"
	"strings"
)

// ValidationError is a single business-rule violation.
type ValidationError struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// ValidationErrors accumulates every violation found by an operation so
// callers see all problems at once instead of fixing them one at a time.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, len(v))
	for i, e := range v {
		msgs[i] = e.Message
	}
	return strings.Join(msgs, "; ")
}

// Add appends a violation. Field may be empty for rule-level errors.
func (v *ValidationErrors) Add(field, message string) {
	*v = append(*v, ValidationError{Field: field, Message: message})
}

// ErrOrNil returns the accumulated errors, or nil if none were added.
func (v ValidationErrors) ErrOrNil() error {
	if len(v) == 0 {
		return nil
	}
	return v
}

// IsValidation reports whether err carries business-rule violations, as
// opposed to infrastructure or programming-defect errors.
func IsValidation(err error) bool {
	var v ValidationErrors
	return errors.As(err, &v)
}

// AsValidation extracts the violation list from err, if present.
func AsValidation(err error) (ValidationErrors, bool) {
	var v ValidationErrors
	if errors.As(err, &v) {
		return v, true
	}
	return nil, false
}
