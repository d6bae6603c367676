package sacamantecas

import (
	"errors"
	"fmt"
)

// Application error codes.
const (
	ECONFIG    = "config"     // profile configuration unusable
	ENOPROFILE = "no_profile" // no profile matches the URI
	ERETRIEVAL = "retrieval"  // transport or protocol failure
	EDECODE    = "decode"     // body cannot be decoded to text
	EINVALID   = "invalid"    // validation failed
	ENOTFOUND  = "not_found"  // entity does not exist
	EINTERNAL  = "internal"   // internal error
)

// Error represents an application error. Errors carry a machine-readable
// code and a human-readable message.
type Error struct {
	// Code is one of the application error codes above.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("sacamantecas error: code=%s message=%s", e.Code, e.Message)
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
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf returns an Error with the given code and formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}
