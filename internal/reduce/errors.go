package reduce

import (
	"errors"
	"fmt"

	"github.com/estuary/flow-sub005/internal/doc"
)

// Error represents a failure detected while reducing two documents.
//
// Reduction errors include:
//   - Wrong types: a strategy was applied to values it cannot combine
//   - Numeric overflow: a sum left the representable numeric range
//   - Tape misalignment: annotations do not cover the right-hand document
//
// Error includes structured fields for diagnostics. Reduction aborts at the
// first error, leaving the left-hand document unchanged.
type Error struct {
	// Code identifies the error category.
	Code ErrorCode

	// Message is a human-readable description.
	Message string

	// Pointer is the JSON pointer of the document location being reduced.
	Pointer string

	// LHS and RHS hold the rendered operand values, when available.
	LHS string
	RHS string
}

// ErrorCode categorizes reduction errors.
type ErrorCode string

const (
	// ErrCodeAppendWrongType indicates 'append' was applied to non-arrays.
	ErrCodeAppendWrongType ErrorCode = "APPEND_WRONG_TYPE"

	// ErrCodeSumWrongType indicates 'sum' was applied to non-numbers.
	ErrCodeSumWrongType ErrorCode = "SUM_WRONG_TYPE"

	// ErrCodeSumNumericOverflow indicates a sum left the representable range.
	ErrCodeSumNumericOverflow ErrorCode = "SUM_NUMERIC_OVERFLOW"

	// ErrCodeMergeWrongType indicates 'merge' was applied to values that are
	// not both objects or both arrays.
	ErrCodeMergeWrongType ErrorCode = "MERGE_WRONG_TYPE"

	// ErrCodeSetWrongType indicates a 'set' instance was not an object of
	// 'add', 'intersect', and 'remove' properties with consistent types.
	ErrCodeSetWrongType ErrorCode = "SET_WRONG_TYPE"

	// ErrCodeTapeMisaligned indicates the annotation tape did not exactly
	// cover the right-hand document. This is an internal invariant failure.
	ErrCodeTapeMisaligned ErrorCode = "TAPE_MISALIGNED"
)

// Error implements the error interface.
func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Pointer != "" {
		msg += fmt.Sprintf(" (at %q)", e.Pointer)
	}
	if e.LHS != "" || e.RHS != "" {
		msg += fmt.Sprintf(" having values LHS: %s, RHS: %s", e.LHS, e.RHS)
	}
	return msg
}

// IsWrongTypeError returns true if the error reports a strategy applied to
// values of the wrong type. Uses errors.As to handle wrapped errors.
func IsWrongTypeError(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		switch re.Code {
		case ErrCodeAppendWrongType, ErrCodeSumWrongType,
			ErrCodeMergeWrongType, ErrCodeSetWrongType:
			return true
		}
	}
	return false
}

// IsOverflowError returns true if the error is a numeric overflow.
// Uses errors.As to handle wrapped errors.
func IsOverflowError(err error) bool {
	var re *Error
	if errors.As(err, &re) {
		return re.Code == ErrCodeSumNumericOverflow
	}
	return false
}

var messages = map[ErrorCode]string{
	ErrCodeAppendWrongType:    "'append' strategy expects arrays",
	ErrCodeSumWrongType:       "'sum' strategy expects numbers",
	ErrCodeSumNumericOverflow: "'sum' resulted in numeric overflow",
	ErrCodeMergeWrongType:     "'merge' strategy expects objects or arrays",
	ErrCodeSetWrongType:       "'set' strategy expects objects having only 'add', 'remove', and 'intersect' properties with consistent object or array types",
}

// newError creates an Error for code at the given location.
func newError(code ErrorCode, loc *doc.Location) *Error {
	return &Error{
		Code:    code,
		Message: messages[code],
		Pointer: loc.Pointer(),
	}
}

// newErrorWithValues creates an Error carrying rendered operands.
// A nil lhs renders as the empty string, meaning no left-hand value existed.
func newErrorWithValues(code ErrorCode, loc *doc.Location, lhs, rhs doc.Node) *Error {
	err := newError(code, loc)
	if lhs != nil {
		err.LHS = renderValue(lhs)
	}
	if rhs != nil {
		err.RHS = renderValue(rhs)
	}
	return err
}

func renderValue(n doc.Node) string {
	b, err := doc.MarshalJSON(n)
	if err != nil {
		return fmt.Sprintf("<unrenderable: %v>", err)
	}
	return string(b)
}
