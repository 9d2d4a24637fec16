package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// DomainErrorType is the category of a broken business rule
type DomainErrorType string

const (
	DomainValidationError     DomainErrorType = "VALIDATION_ERROR"
	DomainBusinessRuleError   DomainErrorType = "BUSINESS_RULE_ERROR"
	DomainNotFoundError       DomainErrorType = "NOT_FOUND"
	DomainConflictError       DomainErrorType = "CONFLICT"
	DomainInfrastructureError DomainErrorType = "INFRASTRUCTURE_ERROR"
	DomainAuthorizationError  DomainErrorType = "AUTHORIZATION_ERROR"
	DomainRateLimitError      DomainErrorType = "RATE_LIMIT_ERROR"
)

var domainStatus = map[DomainErrorType]int{
	DomainValidationError:     http.StatusBadRequest,
	DomainBusinessRuleError:   http.StatusUnprocessableEntity,
	DomainNotFoundError:       http.StatusNotFound,
	DomainConflictError:       http.StatusConflict,
	DomainAuthorizationError:  http.StatusForbidden,
	DomainRateLimitError:      http.StatusTooManyRequests,
	DomainInfrastructureError: http.StatusInternalServerError,
}

// DomainError names a business rule the request broke. The predefined
// values below are sentinels; compare them with errors.Is.
type DomainError struct {
	Type       DomainErrorType        `json:"type"`
	Code       string                 `json:"code"`
	Message    string                 `json:"message"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Cause      error                  `json:"-"`
	Retryable  bool                   `json:"retryable"`
	StatusCode int                    `json:"status_code"`
}

// NewDomainError creates a domain error with the status of its type
func NewDomainError(errorType DomainErrorType, code string, message string) *DomainError {
	status, ok := domainStatus[errorType]
	if !ok {
		status = http.StatusInternalServerError
	}
	return &DomainError{
		Type:       errorType,
		Code:       code,
		Message:    message,
		Details:    make(map[string]interface{}),
		StatusCode: status,
	}
}

func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s:%s] %s", e.Type, e.Code, e.Message)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// WithCause records the underlying error
func (e *DomainError) WithCause(cause error) *DomainError {
	e.Cause = cause
	return e
}

// WithDetail sets one response detail
func (e *DomainError) WithDetail(key string, value interface{}) *DomainError {
	e.Details[key] = value
	return e
}

// WithRetryable marks errors a client may retry unchanged
func (e *DomainError) WithRetryable(retryable bool) *DomainError {
	e.Retryable = retryable
	return e
}

// Is matches on type and code, so copies of a sentinel compare equal
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && e.Type == t.Type && e.Code == t.Code
}

func (e *DomainError) Unwrap() error {
	return e.Cause
}

// GetDomainError extracts a DomainError from an error chain
func GetDomainError(err error) *DomainError {
	var domErr *DomainError
	if errors.As(err, &domErr) {
		return domErr
	}
	return nil
}

// GetValidationErrors extracts aggregated validation errors from an error chain
func GetValidationErrors(err error) *ValidationErrors {
	var verrs *ValidationErrors
	if errors.As(err, &verrs) {
		return verrs
	}
	return nil
}

// Common domain errors - these are pre-defined errors that can be reused

var (
	// Form errors
	ErrFormNotFound = NewDomainError(
		DomainNotFoundError,
		"FORM_NOT_FOUND",
		"The requested state form does not exist",
	)

	ErrFormTemplateNotFound = NewDomainError(
		DomainNotFoundError,
		"FORM_TEMPLATE_NOT_FOUND",
		"No form template exists for the requested year",
	)

	ErrFormCertified = NewDomainError(
		DomainBusinessRuleError,
		"FORM_CERTIFIED",
		"Answers of a certified form cannot be changed",
	)

	// Answer errors
	ErrAnswerNotFound = NewDomainError(
		DomainNotFoundError,
		"ANSWER_NOT_FOUND",
		"The requested answer does not exist",
	)

	ErrGridShapeMismatch = NewDomainError(
		DomainValidationError,
		"GRID_SHAPE_MISMATCH",
		"Grid values do not match the stored grid dimensions",
	)

	ErrAnswerReadOnly = NewDomainError(
		DomainBusinessRuleError,
		"ANSWER_READ_ONLY",
		"This question is display-only and cannot be saved",
	)

	// User errors
	ErrUserNotFound = NewDomainError(
		DomainNotFoundError,
		"USER_NOT_FOUND",
		"The requested user does not exist",
	)

	ErrUserAlreadyExists = NewDomainError(
		DomainConflictError,
		"USER_ALREADY_EXISTS",
		"A user with this username already exists",
	)

	ErrUserNotAuthorized = NewDomainError(
		DomainAuthorizationError,
		"USER_NOT_AUTHORIZED",
		"User is not authorized to perform this action",
	)

	// Confirmation errors
	ErrConfirmationNotFound = NewDomainError(
		DomainNotFoundError,
		"CONFIRMATION_NOT_FOUND",
		"The confirmation does not exist or has expired",
	)

	// Transaction errors
	ErrConcurrentModification = NewDomainError(
		DomainConflictError,
		"CONCURRENT_MODIFICATION",
		"The resource was modified by another process",
	).WithRetryable(true)

	// Rate limiting errors
	ErrRateLimitExceeded = NewDomainError(
		DomainRateLimitError,
		"RATE_LIMIT_EXCEEDED",
		"Too many requests, please try again later",
	).WithRetryable(true)

	// Infrastructure errors
	ErrDatabaseConnection = NewDomainError(
		DomainInfrastructureError,
		"DATABASE_CONNECTION_ERROR",
		"Failed to connect to database",
	).WithRetryable(true)

	ErrEventPublishFailed = NewDomainError(
		DomainInfrastructureError,
		"EVENT_PUBLISH_FAILED",
		"Failed to publish domain event",
	).WithRetryable(true)
)

// ValidationErrors collects every field failure of one request so the
// client sees them together.
type ValidationErrors struct {
	Errors []*DomainError `json:"errors"`
}

func NewValidationErrors() *ValidationErrors {
	return &ValidationErrors{Errors: []*DomainError{}}
}

// Add records a failure of field
func (v *ValidationErrors) Add(field string, message string) {
	v.Errors = append(v.Errors, NewDomainError(DomainValidationError, "FIELD_VALIDATION_ERROR", message).
		WithDetail("field", field))
}

// AddError records a failure that is not tied to one field
func (v *ValidationErrors) AddError(err *DomainError) {
	v.Errors = append(v.Errors, err)
}

func (v *ValidationErrors) HasErrors() bool {
	return len(v.Errors) > 0
}

func (v *ValidationErrors) Error() string {
	if len(v.Errors) == 0 {
		return ""
	}
	messages := make([]string, 0, len(v.Errors))
	for _, err := range v.Errors {
		messages = append(messages, err.Message)
	}
	return "Validation failed: " + strings.Join(messages, "; ")
}

// ToMap groups the messages by field; failures without one go under "general"
func (v *ValidationErrors) ToMap() map[string][]string {
	result := make(map[string][]string, len(v.Errors))
	for _, err := range v.Errors {
		field, ok := err.Details["field"].(string)
		if !ok {
			field = "general"
		}
		result[field] = append(result[field], err.Message)
	}
	return result
}
