package contracts

import (
	"errors"
	"fmt"
)

// InputError reports bad market data: malformed records, non-increasing dates,
// OHLC bound violations, overlong names, or a too-short intersection.
type InputError struct {
	Source  string // file path or "alignment"
	Line    int    // 1-based, 0 when not line specific
	Message string
}

func (e *InputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("input error: %s line %d: %s", e.Source, e.Line, e.Message)
	}
	if e.Source != "" {
		return fmt.Sprintf("input error: %s: %s", e.Source, e.Message)
	}
	return "input error: " + e.Message
}

// PreconditionError reports unusable study parameters
type PreconditionError struct {
	Field   string
	Message string
}

func (e *PreconditionError) Error() string {
	return fmt.Sprintf("precondition failed: %s: %s", e.Field, e.Message)
}

// InvariantViolation signals a defect, never a data problem
type InvariantViolation struct {
	Message string
}

func (e *InvariantViolation) Error() string {
	return "internal invariant violated: " + e.Message
}

// NewInputError builds an *InputError
func NewInputError(source string, line int, format string, args ...interface{}) error {
	return &InputError{Source: source, Line: line, Message: fmt.Sprintf(format, args...)}
}

// NewPreconditionError builds a *PreconditionError
func NewPreconditionError(field, format string, args ...interface{}) error {
	return &PreconditionError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// Violation builds an *InvariantViolation
func Violation(format string, args ...interface{}) error {
	return &InvariantViolation{Message: fmt.Sprintf(format, args...)}
}

// IsInputError reports whether err wraps an *InputError
func IsInputError(err error) bool {
	var target *InputError
	return errors.As(err, &target)
}

// IsPreconditionError reports whether err wraps a *PreconditionError
func IsPreconditionError(err error) bool {
	var target *PreconditionError
	return errors.As(err, &target)
}

// IsInvariantViolation reports whether err wraps an *InvariantViolation
func IsInvariantViolation(err error) bool {
	var target *InvariantViolation
	return errors.As(err, &target)
}
