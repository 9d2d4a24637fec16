// Package errors defines the error types of the reporting service and how
// they map onto HTTP responses.
package errors

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
)

// ErrorType classifies an AppError
type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeInternal     ErrorType = "INTERNAL"
	ErrorTypeUnavailable  ErrorType = "UNAVAILABLE"
	ErrorTypeDatabase     ErrorType = "DATABASE"
)

var typeStatus = map[ErrorType]int{
	ErrorTypeValidation:   http.StatusBadRequest,
	ErrorTypeNotFound:     http.StatusNotFound,
	ErrorTypeConflict:     http.StatusConflict,
	ErrorTypeUnauthorized: http.StatusUnauthorized,
	ErrorTypeForbidden:    http.StatusForbidden,
	ErrorTypeInternal:     http.StatusInternalServerError,
	ErrorTypeUnavailable:  http.StatusServiceUnavailable,
	ErrorTypeDatabase:     http.StatusInternalServerError,
}

// AppError is an error raised by the service itself, as opposed to a
// DomainError, which names a broken business rule.
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	Code       string                 `json:"code,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	StackTrace string                 `json:"-"`
	HTTPStatus int                    `json:"-"`
}

func newAppError(t ErrorType, message string, cause error) *AppError {
	return &AppError{
		Type:       t,
		Message:    message,
		Cause:      cause,
		HTTPStatus: typeStatus[t],
		StackTrace: captureStackTrace(),
	}
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// WithCode sets a machine readable code
func (e *AppError) WithCode(code string) *AppError {
	e.Code = code
	return e
}

// WithDetails attaches response details
func (e *AppError) WithDetails(details map[string]interface{}) *AppError {
	e.Details = details
	return e
}

// WithCause records the underlying error
func (e *AppError) WithCause(err error) *AppError {
	e.Cause = err
	return e
}

func captureStackTrace() string {
	var pcs [32]uintptr
	// skip Callers, captureStackTrace and newAppError
	n := runtime.Callers(4, pcs[:])
	frames := runtime.CallersFrames(pcs[:n])

	var sb strings.Builder
	for {
		frame, more := frames.Next()
		fmt.Fprintf(&sb, "%s:%d %s\n", frame.File, frame.Line, frame.Function)
		if !more {
			break
		}
	}
	return sb.String()
}

// NewValidationError reports bad input, such as a malformed answer entry
func NewValidationError(message string) *AppError {
	return newAppError(ErrorTypeValidation, message, nil)
}

// NewNotFoundError reports a missing resource
func NewNotFoundError(resource string) *AppError {
	return newAppError(ErrorTypeNotFound, resource+" not found", nil)
}

// NewConflictError reports a write that lost against concurrent state
func NewConflictError(message string) *AppError {
	return newAppError(ErrorTypeConflict, message, nil)
}

// NewUnauthorizedError reports a missing or invalid caller
func NewUnauthorizedError(message string) *AppError {
	if message == "" {
		message = "unauthorized"
	}
	return newAppError(ErrorTypeUnauthorized, message, nil)
}

// NewForbiddenError reports a caller without access to a state or action
func NewForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return newAppError(ErrorTypeForbidden, message, nil)
}

// NewInternalError reports a failure the caller cannot fix
func NewInternalError(message string) *AppError {
	return newAppError(ErrorTypeInternal, message, nil)
}

// NewUnavailableError reports a dependency that is refusing work, e.g. an
// open circuit breaker
func NewUnavailableError(service string) *AppError {
	return newAppError(ErrorTypeUnavailable, fmt.Sprintf("service '%s' is unavailable", service), nil)
}

// NewDatabaseError wraps a failed DynamoDB operation
func NewDatabaseError(operation string, err error) *AppError {
	return newAppError(ErrorTypeDatabase, fmt.Sprintf("database operation '%s' failed", operation), err)
}

// GetAppError extracts the first AppError in err's chain
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsAppError reports whether err's chain holds an AppError
func IsAppError(err error) bool {
	return GetAppError(err) != nil
}

// IsType reports whether err's chain holds an AppError of type t
func IsType(err error, t ErrorType) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Type == t
}

// IsNotFound matches both not found AppErrors and DomainErrors
func IsNotFound(err error) bool {
	if domErr := GetDomainError(err); domErr != nil {
		return domErr.Type == DomainNotFoundError
	}
	return IsType(err, ErrorTypeNotFound)
}

// IsConflict matches both conflict AppErrors and DomainErrors
func IsConflict(err error) bool {
	if domErr := GetDomainError(err); domErr != nil {
		return domErr.Type == DomainConflictError
	}
	return IsType(err, ErrorTypeConflict)
}

// IsValidation matches validation AppErrors, field ValidationErrors and
// validation DomainErrors
func IsValidation(err error) bool {
	if GetValidationErrors(err) != nil {
		return true
	}
	if domErr := GetDomainError(err); domErr != nil {
		return domErr.Type == DomainValidationError
	}
	return IsType(err, ErrorTypeValidation)
}

func IsInternal(err error) bool { return IsType(err, ErrorTypeInternal) }

// Wrap prefixes an AppError's message, or turns any other error into an
// internal one.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	if appErr := GetAppError(err); appErr != nil {
		appErr.Message = message + ": " + appErr.Message
		return appErr
	}
	return NewInternalError(message).WithCause(err)
}
