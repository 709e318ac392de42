// Package apperr defines the error taxonomy shared by the sidecar data layer.
//
// Every failure that crosses the package boundary is an *Error carrying a
// Code. Callers branch on the code with Is or CodeOf; the rendered message is
// what the command shell shows to the user.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Code categorizes an Error.
type Code string

const (
	// CodeDatabase covers store open, prepare, execute and query failures.
	// The store's own message is passed through verbatim.
	CodeDatabase Code = "DATABASE"

	// CodeEncryption covers a missing key, a malformed envelope, a failed
	// authentication tag and plaintext that is not valid text.
	CodeEncryption Code = "ENCRYPTION"

	// CodeKeyring covers OS credential store access failures.
	CodeKeyring Code = "KEYRING"

	// CodeInvalidState means an operation ran before its required
	// initialization, or the environment is unusable (e.g. no data directory).
	CodeInvalidState Code = "INVALID_STATE"

	// CodeNotFound is reserved for lookups with no match. An absent vault
	// entry is a normal result, not this error.
	CodeNotFound Code = "NOT_FOUND"

	// CodeSerialization means a structured payload could not be decoded.
	CodeSerialization Code = "SERIALIZATION"
)

var prefixes = map[Code]string{
	CodeDatabase:      "Database error",
	CodeEncryption:    "Encryption error",
	CodeKeyring:       "Keyring error",
	CodeInvalidState:  "Invalid state",
	CodeNotFound:      "Not found",
	CodeSerialization: "Serialization error",
}

// Error is a tagged, human-readable failure.
type Error struct {
	// Code identifies the error category.
	Code Code

	// Message is the human-readable description.
	Message string

	// Err is the underlying cause, if any.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	prefix, ok := prefixes[e.Code]
	if !ok {
		prefix = string(e.Code)
	}
	return fmt.Sprintf("%s: %s", prefix, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// MarshalJSON renders the error as its single display string.
func (e *Error) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Error())
}

// New creates an Error with no underlying cause.
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap tags err with code. The message is err's own text, unchanged.
// Returns nil if err is nil.
func Wrap(code Code, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: err.Error(), Err: err}
}

// CodeOf returns the code of the first *Error in err's chain, or "" if none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// Is reports whether err carries the given code.
// Uses errors.As to handle wrapped errors.
func Is(err error, code Code) bool {
	return err != nil && CodeOf(err) == code
}
