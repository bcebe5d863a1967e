package services

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/edupath/content-service/internal/validator"
)

// ErrorCode identifies the failure class carried by a ServiceError.
type ErrorCode string

const (
	CodeValidation   ErrorCode = "VALIDATION_ERROR"
	CodeBadRequest   ErrorCode = "BAD_REQUEST"
	CodeUnauthorized ErrorCode = "UNAUTHORIZED"
	CodeForbidden    ErrorCode = "FORBIDDEN"
	CodeNotFound     ErrorCode = "NOT_FOUND"
	CodeConflict     ErrorCode = "CONFLICT"
	CodeInternal     ErrorCode = "INTERNAL_ERROR"
)

// ServiceError is the typed error every service method returns on failure.
// Handlers translate it into the HTTP envelope exactly once.
type ServiceError struct {
	Code    ErrorCode   `json:"code"`
	Status  int         `json:"-"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`

	cause error
}

func (e *ServiceError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *ServiceError) Unwrap() error {
	return e.cause
}

// NewValidationError carries the full list of field violations.
func NewValidationError(errs validator.ValidationErrors) *ServiceError {
	return &ServiceError{
		Code:    CodeValidation,
		Status:  http.StatusBadRequest,
		Message: errs.Error(),
		Details: errs,
	}
}

func NewBadRequestError(message string) *ServiceError {
	return &ServiceError{
		Code:    CodeBadRequest,
		Status:  http.StatusBadRequest,
		Message: message,
	}
}

// NewPermissionError describes a forbidden action on a resource.
func NewPermissionError(userID string, resourceID uint, resource, action, reason string) *ServiceError {
	return &ServiceError{
		Code:    CodeForbidden,
		Status:  http.StatusForbidden,
		Message: fmt.Sprintf("cannot %s %s: %s", action, resource, reason),
		Details: map[string]interface{}{
			"user_id":     userID,
			"resource_id": resourceID,
			"resource":    resource,
			"action":      action,
		},
	}
}

func NewNotFoundError(resource string, id uint) *ServiceError {
	return &ServiceError{
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s %d not found", resource, id),
	}
}

func NewConflictError(message string) *ServiceError {
	return &ServiceError{
		Code:    CodeConflict,
		Status:  http.StatusConflict,
		Message: message,
	}
}

// NewInternalError wraps the cause for logs; the cause is never exposed to
// clients.
func NewInternalError(message string, cause error) *ServiceError {
	return &ServiceError{
		Code:    CodeInternal,
		Status:  http.StatusInternalServerError,
		Message: message,
		cause:   cause,
	}
}

// ErrUserNotFound covers lookups keyed by a Casdoor user id rather than a
// numeric record id.
var ErrUserNotFound = NewNotFoundErrorNamed("user")

// NewNotFoundErrorNamed builds a not-found error without a numeric id.
func NewNotFoundErrorNamed(resource string) *ServiceError {
	return &ServiceError{
		Code:    CodeNotFound,
		Status:  http.StatusNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// AsServiceError extracts a *ServiceError from an error chain.
func AsServiceError(err error) (*ServiceError, bool) {
	var svcErr *ServiceError
	if errors.As(err, &svcErr) {
		return svcErr, true
	}
	return nil, false
}
