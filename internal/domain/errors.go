package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors used across all layers.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrValidation    = errors.New("validation error")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrConflict      = errors.New("conflict")
	ErrStateInvalid  = errors.New("invalid state")
	ErrTooManyIDs    = errors.New("too many ids")
	ErrRateLimited   = errors.New("rate limited")
)

// FieldError describes a validation error for a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError contains a list of field-level validation errors.
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return fmt.Sprintf("validation: %s: %s", e.Errors[0].Field, e.Errors[0].Message)
	}
	return fmt.Sprintf("validation: %d errors", len(e.Errors))
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Message returns the first field message, which is what clients display.
func (e *ValidationError) Message() string {
	if len(e.Errors) == 0 {
		return ErrValidation.Error()
	}
	return e.Errors[0].Message
}

// NewValidationError creates a ValidationError for a single field.
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Errors: []FieldError{{Field: field, Message: message}},
	}
}

// RuleError is a denial produced by a workflow rule. Kind is one of the
// sentinel errors above; Reason names the violated precondition and is
// shown to clients verbatim.
type RuleError struct {
	Kind   error
	Reason string
}

func (e *RuleError) Error() string { return e.Reason }

func (e *RuleError) Unwrap() error { return e.Kind }

// NewRuleError creates a RuleError of the given kind.
func NewRuleError(kind error, reason string) *RuleError {
	return &RuleError{Kind: kind, Reason: reason}
}

// TooManyIDsError reports an id list longer than the allowed maximum.
type TooManyIDsError struct {
	Max int
}

func (e *TooManyIDsError) Error() string {
	return fmt.Sprintf("Too many IDs in request (max %d)", e.Max)
}

func (e *TooManyIDsError) Unwrap() error { return ErrTooManyIDs }

// ErrorClass is the coarse failure category exposed to collaborators.
type ErrorClass string

const (
	ClassNotFound     ErrorClass = "not-found"
	ClassValidation   ErrorClass = "validation"
	ClassForbidden    ErrorClass = "forbidden"
	ClassConflict     ErrorClass = "conflict"
	ClassStateInvalid ErrorClass = "state-invalid"
	ClassTooManyIDs   ErrorClass = "too-many-ids"
	ClassUnauthorized ErrorClass = "unauthorized"
	ClassRateLimited  ErrorClass = "rate-limited"
	ClassInternal     ErrorClass = "internal"
)

// ClassOf maps an error chain to its ErrorClass. Unknown errors are internal.
func ClassOf(err error) ErrorClass {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrTooManyIDs):
		return ClassTooManyIDs
	case errors.Is(err, ErrValidation):
		return ClassValidation
	case errors.Is(err, ErrNotFound):
		return ClassNotFound
	case errors.Is(err, ErrUnauthorized):
		return ClassUnauthorized
	case errors.Is(err, ErrForbidden):
		return ClassForbidden
	case errors.Is(err, ErrConflict), errors.Is(err, ErrAlreadyExists):
		return ClassConflict
	case errors.Is(err, ErrStateInvalid):
		return ClassStateInvalid
	case errors.Is(err, ErrRateLimited):
		return ClassRateLimited
	}
	return ClassInternal
}

// PublicMessage returns the client-facing message for err. Internal errors
// never leak their detail.
func PublicMessage(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Message()
	}
	var re *RuleError
	if errors.As(err, &re) {
		return re.Reason
	}
	var tm *TooManyIDsError
	if errors.As(err, &tm) {
		return tm.Error()
	}
	switch ClassOf(err) {
	case ClassNotFound:
		return "Not found"
	case ClassUnauthorized:
		return "Unauthorized"
	case ClassForbidden:
		return "Forbidden"
	case ClassConflict:
		return "Conflict"
	case ClassRateLimited:
		return "Too many requests, try again later"
	case ClassInternal:
		return "internal server error"
	}
	return err.Error()
}
