// Package validate collects field rule violations into typed errors.
package validate

import (
	"strconv"
	"strings"
	"unicode/utf8"

	pkgerrors "github.com/shelflife/shelflife-backend/pkg/errors"
)

// FieldError names one failed rule.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Errors accumulates violations in the order rules are checked.
type Errors []FieldError

// Add records a violation.
func (e *Errors) Add(field, message string) {
	*e = append(*e, FieldError{Field: field, Message: message})
}

// Length checks min <= rune count <= max. A min of 1 reports "is required".
func (e *Errors) Length(field, value string, min, max int) {
	n := utf8.RuneCountInString(value)
	switch {
	case n == 0 && min > 0:
		e.Add(field, "is required")
	case n < min:
		e.Add(field, "is too short")
	case max > 0 && n > max:
		e.Add(field, "is too long")
	}
}

// Required checks that a trimmed value is present.
func (e *Errors) Required(field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "is required")
	}
}

// IntRange checks min <= value <= max.
func (e *Errors) IntRange(field string, value, min, max int) {
	if value < min || value > max {
		e.Add(field, "must be between "+strconv.Itoa(min)+" and "+strconv.Itoa(max))
	}
}

// FloatRange checks min <= value <= max.
func (e *Errors) FloatRange(field string, value, min, max float64) {
	if value < min || value > max {
		e.Add(field, "is out of range")
	}
}

// Merge appends other's violations.
func (e *Errors) Merge(other Errors) {
	*e = append(*e, other...)
}

// Err folds the violations into a VALIDATION_ERROR whose message names the
// first violation and whose details list them all. Nil when empty.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	first := e[0]
	return pkgerrors.New(pkgerrors.CodeValidation, first.Field+" "+first.Message).WithDetails([]FieldError(e))
}

// TrimOptional trims v and maps blank values to nil.
func TrimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*v)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
