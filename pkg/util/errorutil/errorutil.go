package errorutil

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes returned by the lifecycle engine. Each engine operation
// fails with exactly one of these; callers branch on the code, never on
// the message text.
const (
	CodeNotFound        = "NOT_FOUND"
	CodeTerminalRequest = "TERMINAL_REQUEST"
	CodeAlreadyTerminal = "ALREADY_TERMINAL"
	CodeAlreadyOwned    = "ALREADY_OWNED_BY_SELF"
	CodeNotAssigned     = "NOT_ASSIGNED"
	CodeForbidden       = "FORBIDDEN"
	CodeStorageFailure  = "STORAGE_FAILURE"

	CodeValidationFailed = "VALIDATION_FAILED"
	CodeUnauthorized     = "UNAUTHORIZED"
	CodeConflict         = "CONFLICT"
	CodeInternalError    = "INTERNAL_ERROR"
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

// NewNotFound reports an unknown resource id.
func NewNotFound(resource string, details map[string]any) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, details)
}

// NewTerminalRequest reports a mutation attempted on a closed request.
func NewTerminalRequest(requestID string) error {
	return NewDomainError(CodeTerminalRequest, "request is closed and admits no further transitions",
		http.StatusConflict, map[string]any{"request_id": requestID})
}

// NewAlreadyTerminal reports a resolve or cancel on an already-closed request.
func NewAlreadyTerminal(requestID string) error {
	return NewDomainError(CodeAlreadyTerminal, "request is already resolved or cancelled",
		http.StatusConflict, map[string]any{"request_id": requestID})
}

// NewAlreadyOwnedBySelf reports a redundant ownership claim.
func NewAlreadyOwnedBySelf(requestID string) error {
	return NewDomainError(CodeAlreadyOwned, "request is already assigned to this officer",
		http.StatusConflict, map[string]any{"request_id": requestID})
}

// NewNotAssigned reports a resolve attempted on an unowned request.
func NewNotAssigned(requestID string) error {
	return NewDomainError(CodeNotAssigned, "request is not assigned to any officer",
		http.StatusConflict, map[string]any{"request_id": requestID})
}

// NewForbidden reports a caller lacking the authorization an operation requires.
func NewForbidden(message string) error {
	return NewDomainError(CodeForbidden, message, http.StatusForbidden, nil)
}

// NewStorageFailure wraps an underlying store or transaction error. The
// only kind that carries a cause for diagnostics.
func NewStorageFailure(err error) error {
	return &DomainError{
		Code:       CodeStorageFailure,
		Message:    "storage operation failed",
		HTTPStatus: http.StatusServiceUnavailable,
		Err:        err,
	}
}

// NewValidationError reports a malformed input.
func NewValidationError(message string, details map[string]any) error {
	return NewDomainError(CodeValidationFailed, message, http.StatusBadRequest, details)
}

// NewUnauthorized reports a missing or invalid credential.
func NewUnauthorized(message string) error {
	return NewDomainError(CodeUnauthorized, message, http.StatusUnauthorized, nil)
}

// NewConflict reports a state conflict outside the lifecycle taxonomy.
func NewConflict(message string, details map[string]any) error {
	return NewDomainError(CodeConflict, message, http.StatusConflict, details)
}

// NewInternalError wraps unexpected failures.
func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// CodeOf extracts the domain error code, or empty for foreign errors.
func CodeOf(err error) string {
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return ""
}

// HasCode reports whether err carries the given domain code.
func HasCode(err error, code string) bool {
	return CodeOf(err) == code
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	return &DomainError{
		Code:       CodeInternalError,
		Message:    "internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}
