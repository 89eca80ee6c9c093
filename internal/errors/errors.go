package errors

import (
	"fmt"
	"net/http"

	"github.com/cockroachdb/errors"
)

// Common error types that can be used across the application
var (
	ErrNotFound         = new(ErrCodeNotFound, "resource not found")
	ErrAlreadyExists    = new(ErrCodeAlreadyExists, "resource already exists")
	ErrValidation       = new(ErrCodeValidation, "validation error")
	ErrUnauthenticated  = new(ErrCodeUnauthenticated, "unauthenticated")
	ErrPermissionDenied = new(ErrCodePermissionDenied, "permission denied")
	ErrSignatureInvalid = new(ErrCodeSignatureInvalid, "signature verification failed")
	ErrRateLimited      = new(ErrCodeRateLimited, "too many requests")
	ErrHTTPClient       = new(ErrCodeHTTPClient, "http client error")
	ErrDatabase         = new(ErrCodeDatabase, "database error")
	ErrInternal         = new(ErrCodeInternal, "internal error")
	ErrSystem           = new(ErrCodeSystemError, "system error")
	// maps errors to http status codes
	statusCodeMap = map[error]int{
		ErrHTTPClient:       http.StatusInternalServerError,
		ErrDatabase:         http.StatusInternalServerError,
		ErrInternal:         http.StatusInternalServerError,
		ErrNotFound:         http.StatusNotFound,
		ErrAlreadyExists:    http.StatusConflict,
		ErrValidation:       http.StatusBadRequest,
		ErrSignatureInvalid: http.StatusBadRequest,
		ErrUnauthenticated:  http.StatusUnauthorized,
		ErrPermissionDenied: http.StatusForbidden,
		ErrRateLimited:      http.StatusTooManyRequests,
		ErrSystem:           http.StatusInternalServerError,
	}
	// maps errors to the status names understood by callable clients
	callableStatusMap = map[error]string{
		ErrNotFound:         "NOT_FOUND",
		ErrAlreadyExists:    "ALREADY_EXISTS",
		ErrValidation:       "INVALID_ARGUMENT",
		ErrUnauthenticated:  "UNAUTHENTICATED",
		ErrPermissionDenied: "PERMISSION_DENIED",
		ErrRateLimited:      "RESOURCE_EXHAUSTED",
	}
)

const (
	ErrCodeHTTPClient       = "http_client_error"
	ErrCodeSystemError      = "system_error"
	ErrCodeNotFound         = "not_found"
	ErrCodeAlreadyExists    = "already_exists"
	ErrCodeValidation       = "validation_error"
	ErrCodeUnauthenticated  = "unauthenticated"
	ErrCodePermissionDenied = "permission_denied"
	ErrCodeSignatureInvalid = "signature_invalid"
	ErrCodeRateLimited      = "rate_limited"
	ErrCodeDatabase         = "database_error"
	ErrCodeInternal         = "internal_error"
)

// InternalError represents a domain error
type InternalError struct {
	Code    string // Machine-readable error code
	Message string // Human-readable error message
	Op      string // Logical operation name
	Err     error  // Underlying error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return e.DisplayError()
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Err.Error())
}

func (e *InternalError) DisplayError() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// Is implements error matching for wrapped errors
func (e *InternalError) Is(target error) bool {
	if target == nil {
		return false
	}

	t, ok := target.(*InternalError)
	if !ok {
		return errors.Is(e.Err, target)
	}

	return e.Code == t.Code
}

// New creates a new InternalError
func new(code string, message string) *InternalError {
	return &InternalError{
		Code:    code,
		Message: message,
	}
}

func As(err error, target any) bool {
	return errors.As(err, target)
}

func Is(err, reference error) bool {
	return errors.Is(err, reference)
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsAlreadyExists checks if an error is an already exists error
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsValidation checks if an error is a validation error
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation)
}

// IsUnauthenticated checks if an error is an unauthenticated error
func IsUnauthenticated(err error) bool {
	return errors.Is(err, ErrUnauthenticated)
}

// IsSignatureInvalid checks if an error is a webhook signature failure
func IsSignatureInvalid(err error) bool {
	return errors.Is(err, ErrSignatureInvalid)
}

// IsDatabase checks if an error is a storage failure
func IsDatabase(err error) bool {
	return errors.Is(err, ErrDatabase)
}

// IsCallerVisible reports whether err belongs to one of the kinds a callable
// client may see as-is. Everything else is reported as internal.
func IsCallerVisible(err error) bool {
	for e := range callableStatusMap {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}

func HTTPStatusFromErr(err error) int {
	for e, status := range statusCodeMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return http.StatusInternalServerError
}

// CallableStatusFromErr returns the callable protocol status for err
func CallableStatusFromErr(err error) string {
	if err == nil {
		return "OK"
	}
	for e, status := range callableStatusMap {
		if errors.Is(err, e) {
			return status
		}
	}
	return "INTERNAL"
}
