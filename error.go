package probdoc

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	EINTERNAL = "internal"

	// ELOAD means a page never reached the expected state.
	ELOAD = "load"
	// EPARSE means a page loaded but held no usable content.
	EPARSE = "parse"
	// EUPSTREAM means the completion endpoint failed or answered garbage.
	EUPSTREAM = "upstream"
	// EOUTPUT means a generated document is missing required sections.
	EOUTPUT = "invalid_output"
	// EOPTIONS means translate was requested without a language pair.
	EOPTIONS = "missing_options"
	// EIO means a filesystem operation failed.
	EIO = "io"
	// ESTATE means the operation is not valid in the session's current state.
	ESTATE = "state"
)

// Error represents an application-specific error.
type Error struct {
	// Machine-readable error code.
	Code string

	// Human-readable error message.
	Message string

	// Underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("probdoc error: code=%s message=%s", e.Code, e.Message)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf is a helper function to return an Error with a given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// WrapError is like Errorf but keeps err as the cause. The cause's text is
// appended to the message.
func WrapError(code string, err error, format string, args ...any) *Error {
	msg := fmt.Sprintf(format, args...)
	if err != nil {
		msg += ": " + err.Error()
	}
	return &Error{Code: code, Message: msg, Err: err}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors return the error text.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
