// Package domainerrors provides coded errors shared by services and transports.
//
// Services return *Error values so callers can branch on Code without matching
// strings. Stores return sentinel errors (pkg/platform/sentinel) which services
// translate into coded errors at the boundary.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies an error for programmatic handling.
type Code string

const (
	// CodeValidation is a field length, range or variant violation. Recoverable by
	// correcting input; never accompanied by a state change.
	CodeValidation Code = "validation_error"
	// CodeUnauthorized means the signer does not match the stored identity field.
	CodeUnauthorized Code = "unauthorized"
	// CodeUnauthenticated means no verifiable signer was presented.
	CodeUnauthenticated Code = "unauthenticated"
	// CodeNotFound means a referenced address holds no record.
	CodeNotFound Code = "not_found"
	// CodeAddressInUse is an attempted create at an occupied address.
	CodeAddressInUse Code = "address_in_use"
	// CodeInvalidState means a referenced record exists but cannot take part in
	// the requested operation (for example an inactive framework).
	CodeInvalidState Code = "invalid_state"
	CodeBadRequest   Code = "bad_request"
	CodeInternal     Code = "internal_error"
)

// Reason is a stable identifier naming the violated rule.
type Reason string

const (
	ReasonFieldTooLong      Reason = "FieldTooLong"
	ReasonTooManyCriteria   Reason = "TooManyCriteria"
	ReasonScoreOutOfRange   Reason = "ScoreOutOfRange"
	ReasonInvalidVariant    Reason = "InvalidVariant"
	ReasonExpiryInPast      Reason = "ExpiryInPast"
	ReasonFrameworkNotFound Reason = "FrameworkNotFound"
	ReasonAssetNotFound     Reason = "AssetNotFound"
	ReasonFrameworkInactive Reason = "FrameworkInactive"
	ReasonAssetInactive     Reason = "AssetInactive"
	ReasonAddressInUse      Reason = "AddressAlreadyInUse"
	ReasonUnauthorized      Reason = "Unauthorized"
	ReasonRequired          Reason = "Required"
	ReasonOrderNotFound     Reason = "OrderNotFound"
	ReasonInvalidTransition Reason = "InvalidTransition"
)

// Error is the coded error type. Field and Reason are set for validation errors
// and for the not-found/invalid-state variants raised by instructions.
type Error struct {
	Code    Code
	Message string
	Field   string
	Reason  Reason
	Cause   error
}

func (e *Error) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// New builds a coded error.
func New(code Code, msg string) error {
	return &Error{Code: code, Message: msg}
}

// Wrap attaches a code and message to an underlying error.
func Wrap(err error, code Code, msg string) error {
	if err == nil {
		return New(code, msg)
	}
	return &Error{Code: code, Message: msg, Cause: err}
}

// NewValidation builds a validation error naming the offending field.
func NewValidation(field string, reason Reason, msg string) error {
	return &Error{Code: CodeValidation, Field: field, Reason: reason, Message: msg}
}

// WithReason builds a coded error carrying a stable reason.
func WithReason(code Code, reason Reason, msg string) error {
	return &Error{Code: code, Reason: reason, Message: msg}
}

// As extracts the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var de *Error
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

// HasCode reports whether err carries the given code.
func HasCode(err error, code Code) bool {
	de, ok := As(err)
	return ok && de.Code == code
}

// ReasonOf returns the reason of a coded error, or "" if none.
func ReasonOf(err error) Reason {
	if de, ok := As(err); ok {
		return de.Reason
	}
	return ""
}
