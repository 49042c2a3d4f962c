package util

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"

	"github.com/aws/smithy-go"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Error codes realized by this service.
const (
	CodeNoChanges          = "NO_CHANGES"
	CodeUnauthenticated    = "UNAUTHENTICATED"
	CodePermissionDenied   = "PERMISSION_DENIED"
	CodeNetworkError       = "NETWORK_ERROR"
	CodeConfigurationError = "CONFIGURATION_ERROR"
	CodeValidationFailed   = "VALIDATION_FAILED"
	CodeNotFound           = "NOT_FOUND"
	CodeUnknown            = "UNKNOWN"
)

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Details    map[string]any
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int, details map[string]any) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status, Details: details}
}

// NewNoChanges signals a user-facing no-op: nothing to save.
func NewNoChanges() error {
	return NewDomainError(CodeNoChanges, "no changes to save", http.StatusUnprocessableEntity, nil)
}

// NewUnauthenticated signals a missing or unresolved caller identity.
func NewUnauthenticated(message string) error {
	return NewDomainError(CodeUnauthenticated, message, http.StatusUnauthorized, nil)
}

// NewPermissionDenied signals the store or storage rejected the operation
// under its access-control rules.
func NewPermissionDenied(message string) error {
	return NewDomainError(CodePermissionDenied, message, http.StatusForbidden, nil)
}

// NewNetworkError signals a transport-level failure reaching a backend.
func NewNetworkError(err error) error {
	return &DomainError{
		Code:       CodeNetworkError,
		Message:    "could not reach the backing store",
		HTTPStatus: http.StatusBadGateway,
		Err:        err,
	}
}

// NewConfigurationError signals broken reference data, e.g. a missing
// pipeline entry stage.
func NewConfigurationError(message string) error {
	return NewDomainError(CodeConfigurationError, message, http.StatusInternalServerError, nil)
}

// NewValidationError flags a malformed request.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

// NewNotFound reports a missing resource.
func NewNotFound(resource string, details map[string]any) error {
	if details == nil {
		details = map[string]any{}
	}
	return &DomainError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details:    details,
	}
}

// NewUnknown wraps an unclassified failure.
func NewUnknown(err error) error {
	return &DomainError{
		Code:       CodeUnknown,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// IsNotFound reports whether the error carries a NOT_FOUND code.
func IsNotFound(err error) bool {
	var domainErr *DomainError
	return errors.As(err, &domainErr) && domainErr.Code == CodeNotFound
}

// Classify converts arbitrary errors from the store and storage backends
// into the service taxonomy. Already-classified errors pass through.
func Classify(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return NewNotFound("resource", nil).(*DomainError)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		// 28000 invalid_authorization_specification, 42501 insufficient_privilege
		if pgErr.Code == "28000" || pgErr.Code == "42501" {
			return &DomainError{
				Code:       CodePermissionDenied,
				Message:    "the store rejected the operation",
				HTTPStatus: http.StatusForbidden,
				Err:        err,
			}
		}
		// 23503 foreign_key_violation: the referenced row vanished
		// between the caller's existence check and the write.
		if pgErr.Code == "23503" {
			return &DomainError{
				Code:       CodeNotFound,
				Message:    "referenced resource not found",
				HTTPStatus: http.StatusNotFound,
				Details:    map[string]any{"constraint": pgErr.ConstraintName},
				Err:        err,
			}
		}
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) && apiErr.ErrorCode() == "AccessDenied" {
		return &DomainError{
			Code:       CodePermissionDenied,
			Message:    "storage rejected the operation",
			HTTPStatus: http.StatusForbidden,
			Err:        err,
		}
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return NewNetworkError(err).(*DomainError)
	}
	return NewUnknown(err).(*DomainError)
}
