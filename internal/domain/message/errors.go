package message

import (
	"fmt"
	"strings"
)

// FieldError describes a single schema violation on a named field.
// Nested fields use dotted paths (e.g. "parameters.timeout_seconds",
// "steps[0].retry_count").
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e FieldError) String() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// ValidationError carries the complete list of violations found while
// validating a message. Validation never stops at the first problem; the
// caller needs the full picture to fix the content in one pass.
type ValidationError struct {
	Violations []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "validation failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(parts, "; "))
}

// Has reports whether a violation was recorded for the given field path.
func (e *ValidationError) Has(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// newValidationError returns nil when no violations were collected.
func newValidationError(violations []FieldError) error {
	if len(violations) == 0 {
		return nil
	}
	return &ValidationError{Violations: violations}
}
