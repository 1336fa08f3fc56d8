package domain

import (
	"errors"
	"fmt"
)

// ValidationError is a field-level input failure. It never reaches the transcript.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("field %q: %s", e.Field, e.Reason)
}

// TransportError covers timeouts, network failures and non-2xx replies.
// Message holds the text the server sent along with the failure, if any.
type TransportError struct {
	Op      string
	Status  int
	Message string
	Err     error
}

func (e *TransportError) Error() string {
	msg := "transport failure"
	if e.Status != 0 {
		msg = fmt.Sprintf("status %d", e.Status)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ProtocolError is a reply whose shape does not match the contract.
type ProtocolError struct {
	Op     string
	Reason string
	Err    error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: malformed response: %s: %v", e.Op, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: malformed response: %s", e.Op, e.Reason)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// UserMessage returns the server provided message carried by err, if any.
func UserMessage(err error) string {
	var te *TransportError
	if errors.As(err, &te) {
		return te.Message
	}
	return ""
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
