// internal/validation/errors.go
package validation

import (
	"errors"
	"fmt"
	"strings"
)

// ErrValidation matches every ValidationError through errors.Is.
var ErrValidation = errors.New("validation error")

// ValidationError is the hard-failure channel: it prevents an invalid value from being built
// or an invalid aggregate from being persisted.
type ValidationError struct {
	Violations Violations
}

func NewValidationError(vs Violations) *ValidationError {
	return &ValidationError{Violations: vs}
}

// FromNotification snapshots the current content of n.
func FromNotification(n *Notification) *ValidationError {
	return &ValidationError{Violations: n.Violations()}
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", v.Field, v.Message))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
