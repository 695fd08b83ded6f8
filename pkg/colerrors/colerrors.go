// Package colerrors provides structured error handling for the column
// engine. Every fallible operation reports one of a closed set of codes;
// errors carry optional key-value details and the call stack at the point of
// creation.
//
// The engine never retries and never throws: helpers return on the first
// error, and mutating operations leave their column in the pre-call state
// when they fail.
package colerrors

import (
	"errors"
	"runtime"

	"github.com/astropipe/colcore/pkg/strpool"
)

// Code is the discrete failure category of an engine error.
type Code string

const (
	// CodeNullInput reports a required column or buffer argument was absent.
	CodeNullInput Code = "null_input"
	// CodeIllegalInput reports a structurally invalid argument, such as a
	// negative length or a malformed dimension array.
	CodeIllegalInput Code = "illegal_input"
	// CodeAccessOutOfRange reports an index or start offset outside
	// [0, length), including any access on a zero-length column.
	CodeAccessOutOfRange Code = "access_out_of_range"
	// CodeTypeMismatch reports an operation requiring an exact kind that the
	// column does not have.
	CodeTypeMismatch Code = "type_mismatch"
	// CodeInvalidType reports an operation categorically unsupported for the
	// column's kind, such as arithmetic on strings.
	CodeInvalidType Code = "invalid_type"
	// CodeIncompatibleInput reports operand columns differing in length or
	// depth where equality is required.
	CodeIncompatibleInput Code = "incompatible_input"
	// CodeDivisionByZero reports scalar division by a literal zero.
	CodeDivisionByZero Code = "division_by_zero"
	// CodeDataNotFound reports a reduction attempted with zero valid elements.
	CodeDataNotFound Code = "data_not_found"
	// CodeUnsupportedMode reports an operation unsupported in the column's
	// current mode, such as resizing a wrapped buffer.
	CodeUnsupportedMode Code = "unsupported_mode"
	// CodeUnspecified is the fallback for combinations not otherwise
	// enumerated.
	CodeUnspecified Code = "unspecified"
)

// Error is a structured engine error with context.
type Error struct {
	Code    Code
	Message string
	Cause   error
	Details map[string]interface{}
	Stack   []StackFrame
}

// StackFrame records one frame of the call stack captured at error creation.
type StackFrame struct {
	Function string
	File     string
	Line     int
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return strpool.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return strpool.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error for errors.Is / errors.As chains.
func (e *Error) Unwrap() error {
	return e.Cause
}

// WithDetail attaches a key-value detail; it returns e for chaining.
func (e *Error) WithDetail(key string, value interface{}) *Error {
	if e.Details == nil {
		e.Details = make(map[string]interface{})
	}
	e.Details[key] = value
	return e
}

// New creates an error with the given code and message.
func New(code Code, message string) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Stack:   captureStack(2),
	}
}

// Newf creates an error with a formatted message.
func Newf(code Code, format string, args ...interface{}) *Error {
	return &Error{
		Code:    code,
		Message: strpool.Sprintf(format, args...),
		Stack:   captureStack(2),
	}
}

// Wrap wraps an existing error under a new code and message. The original
// stack is preserved when err is already an engine error.
func Wrap(err error, code Code, message string) *Error {
	if err == nil {
		return nil
	}
	var existing *Error
	if errors.As(err, &existing) {
		return &Error{
			Code:    code,
			Message: message,
			Cause:   err,
			Stack:   existing.Stack,
		}
	}
	return &Error{
		Code:    code,
		Message: message,
		Cause:   err,
		Stack:   captureStack(2),
	}
}

// CodeOf extracts the code of an engine error, or CodeUnspecified when err
// is nil or foreign.
func CodeOf(err error) Code {
	var e *Error
	if !errors.As(err, &e) {
		return CodeUnspecified
	}
	return e.Code
}

// HasCode reports whether err is an engine error carrying the given code.
func HasCode(err error, code Code) bool {
	var e *Error
	if !errors.As(err, &e) {
		return false
	}
	return e.Code == code
}

// captureStack captures the current call stack, skipping the given number of
// frames.
func captureStack(skip int) []StackFrame {
	const maxFrames = 32
	frames := make([]StackFrame, 0, maxFrames)

	for i := skip; i < maxFrames+skip; i++ {
		pc, file, line, ok := runtime.Caller(i)
		if !ok {
			break
		}
		fn := runtime.FuncForPC(pc)
		if fn == nil {
			continue
		}
		frames = append(frames, StackFrame{
			Function: fn.Name(),
			File:     file,
			Line:     line,
		})
	}
	return frames
}
