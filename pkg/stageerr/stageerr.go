// Package stageerr provides typed error values shared across pipeline stages.
// Components convert internal failures into coded errors at their boundaries
// so the stage runner can decide retry vs. dead-letter vs. fatal-shutdown
// without string matching.
package stageerr

import (
	"errors"
	"fmt"
)

// Code classifies an error for routing decisions and structured logs.
type Code string

const (
	// CodeConfig marks malformed or unresolvable configuration. Fatal at
	// startup; the process must not serve with an invalid configuration.
	CodeConfig Code = "config"

	// CodeValidation marks bad input local to one call or message: empty
	// classification text, unknown detector subset, malformed inbound schema.
	CodeValidation Code = "validation"

	// CodeDetector marks an individual detector's internal failure. Isolated
	// per detector; never aborts the surrounding classification.
	CodeDetector Code = "detector"

	// CodeTransport marks publish/consume failures against the message bus.
	CodeTransport Code = "transport"

	// CodeStore marks idempotency-store unavailability.
	CodeStore Code = "store"

	// CodeInternal marks unexpected failures with no better classification.
	CodeInternal Code = "internal"
)

// Error is a coded error carrying an optional wrapped cause.
type Error struct {
	code Code
	msg  string
	err  error
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Code returns the error's classification code.
func (e *Error) Code() Code { return e.code }

// New creates a coded error.
func New(code Code, msg string) error {
	return &Error{code: code, msg: msg}
}

// Newf creates a coded error with a formatted message.
func Newf(code Code, format string, args ...any) error {
	return &Error{code: code, msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches a code and message to an existing error, preserving the
// cause for errors.Is/As.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return nil
	}
	return &Error{code: code, msg: msg, err: err}
}

// CodeOf extracts the code from an error chain. Unclassified errors report
// CodeInternal.
func CodeOf(err error) Code {
	var se *Error
	if errors.As(err, &se) {
		return se.code
	}
	return CodeInternal
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var se *Error
		if !errors.As(err, &se) {
			return false
		}
		if se.code == code {
			return true
		}
		err = se.err
	}
	return false
}
