package services

import "errors"

// ErrorCode classifies service failures for transport-layer mapping.
type ErrorCode string

const (
	ErrorValidation   ErrorCode = "validation"
	ErrorDuplicate    ErrorCode = "duplicate"
	ErrorNotFound     ErrorCode = "not_found"
	ErrorUnauthorized ErrorCode = "unauthorized"
	ErrorForbidden    ErrorCode = "forbidden"
	// ErrorUnavailable covers storage and collaborator I/O failures. A failed
	// query is never masked as "zero results".
	ErrorUnavailable ErrorCode = "unavailable"
)

// ServiceError is the single error taxonomy crossing the service boundary.
type ServiceError struct {
	Code    ErrorCode
	Message string
	// Field names the offending question id on range validation errors.
	Field string
	cause error
}

func (e *ServiceError) Error() string { return e.Message }

func (e *ServiceError) Unwrap() error { return e.cause }

func NewValidationError(msg string) error {
	return &ServiceError{Code: ErrorValidation, Message: msg}
}

func NewFieldValidationError(msg, field string) error {
	return &ServiceError{Code: ErrorValidation, Message: msg, Field: field}
}

func NewDuplicateError(msg string) error {
	return &ServiceError{Code: ErrorDuplicate, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &ServiceError{Code: ErrorNotFound, Message: msg}
}

func NewUnauthorizedError(msg string) error {
	return &ServiceError{Code: ErrorUnauthorized, Message: msg}
}

func NewForbiddenError(msg string) error {
	return &ServiceError{Code: ErrorForbidden, Message: msg}
}

// NewDataAccessError wraps a storage failure so callers see one taxonomy
// while logs keep the underlying cause.
func NewDataAccessError(err error) error {
	return &ServiceError{Code: ErrorUnavailable, Message: "data access failure", cause: err}
}

func AsServiceError(err error) (*ServiceError, bool) {
	var se *ServiceError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}

// IsCode reports whether err is a ServiceError with the given code.
func IsCode(err error, code ErrorCode) bool {
	se, ok := AsServiceError(err)
	return ok && se.Code == code
}
