package game

import (
	"errors"
	"fmt"
)

// Code is a machine-readable rejection kind reported at the command boundary.
type Code string

const (
	CodeInvalidPlacement     Code = "INVALID_PLACEMENT"
	CodeInsufficientMovement Code = "INSUFFICIENT_MOVEMENT"
	CodeCapacityExceeded     Code = "CAPACITY_EXCEEDED"
	CodeEmptyFormation       Code = "EMPTY_FORMATION"
	CodeInvalidTarget        Code = "INVALID_TARGET"
	CodeIllegalPhaseAction   Code = "ILLEGAL_PHASE_ACTION"
	CodeInvalidSaveFormat    Code = "INVALID_SAVE_FORMAT"
)

// Error is a typed rejection. Two errors match under errors.Is when their codes match.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// Sentinels for errors.Is checks.
var (
	ErrInvalidPlacement     = &Error{Code: CodeInvalidPlacement}
	ErrInsufficientMovement = &Error{Code: CodeInsufficientMovement}
	ErrCapacityExceeded     = &Error{Code: CodeCapacityExceeded}
	ErrEmptyFormation       = &Error{Code: CodeEmptyFormation}
	ErrInvalidTarget        = &Error{Code: CodeInvalidTarget}
	ErrIllegalPhaseAction   = &Error{Code: CodeIllegalPhaseAction}
	ErrInvalidSaveFormat    = &Error{Code: CodeInvalidSaveFormat}
)

// Errorf builds a rejection with a formatted reason.
func Errorf(code Code, format string, args ...any) error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap builds a rejection carrying an underlying cause.
func Wrap(code Code, cause error, message string) error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the rejection kind, or "" when err is not a rejection.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsCode(err error, code Code) bool {
	return CodeOf(err) == code
}
