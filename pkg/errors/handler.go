package errors

import (
	"encoding/json"
	"fmt"
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// ErrorResponse is the body of every error the API returns
type ErrorResponse struct {
	Error     bool                   `json:"error"`
	Type      string                 `json:"type"`
	Message   string                 `json:"message"`
	Code      string                 `json:"code,omitempty"`
	Details   map[string]interface{} `json:"details,omitempty"`
	Retryable bool                   `json:"retryable,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
}

// ErrorHandler turns errors into JSON responses and logs them
type ErrorHandler struct {
	logger *zap.Logger
	debug  bool
}

// NewErrorHandler creates an error handler. In debug mode internal error
// messages and stack traces reach the client.
func NewErrorHandler(logger *zap.Logger, debug bool) *ErrorHandler {
	return &ErrorHandler{logger: logger, debug: debug}
}

// Handle writes the response for err
func (h *ErrorHandler) Handle(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	status, resp, cause := h.describe(err)
	resp.Error = true
	resp.RequestID = requestID(r)

	fields := []zap.Field{
		zap.String("error_type", resp.Type),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", resp.RequestID),
	}
	if resp.Code != "" {
		fields = append(fields, zap.String("error_code", resp.Code))
	}
	if cause != nil {
		fields = append(fields, zap.Error(cause))
	}

	level := zapcore.WarnLevel
	if status >= http.StatusInternalServerError {
		level = zapcore.ErrorLevel
	}
	if ce := h.logger.Check(level, resp.Message); ce != nil {
		ce.Write(fields...)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.logger.Error("Failed to encode error response", zap.Error(err))
	}
}

// describe maps err to a status and response body, plus the error worth logging
func (h *ErrorHandler) describe(err error) (int, ErrorResponse, error) {
	if appErr := GetAppError(err); appErr != nil {
		status := appErr.HTTPStatus
		if status == 0 {
			status = http.StatusInternalServerError
		}
		resp := ErrorResponse{
			Type:    string(appErr.Type),
			Message: appErr.Message,
			Code:    appErr.Code,
			Details: appErr.Details,
		}
		if h.debug && appErr.StackTrace != "" {
			details := map[string]interface{}{"stack_trace": appErr.StackTrace}
			for k, v := range appErr.Details {
				details[k] = v
			}
			resp.Details = details
		}
		return status, resp, appErr.Cause
	}

	if verrs := GetValidationErrors(err); verrs != nil {
		return http.StatusBadRequest, ErrorResponse{
			Type:    string(ErrorTypeValidation),
			Message: verrs.Error(),
			Code:    "VALIDATION_FAILED",
			Details: map[string]interface{}{"fields": verrs.ToMap()},
		}, nil
	}

	if domErr := GetDomainError(err); domErr != nil {
		resp := ErrorResponse{
			Type:      string(domErr.Type),
			Message:   domErr.Message,
			Code:      domErr.Code,
			Retryable: domErr.Retryable,
		}
		if len(domErr.Details) > 0 {
			resp.Details = domErr.Details
		}
		return domErr.StatusCode, resp, domErr.Cause
	}

	resp := ErrorResponse{
		Type:    string(ErrorTypeInternal),
		Message: "An internal error occurred",
	}
	if h.debug {
		resp.Message = err.Error()
	}
	return http.StatusInternalServerError, resp, err
}

// Middleware turns handler panics into 500 responses
func (h *ErrorHandler) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				h.Handle(w, r, NewInternalError(fmt.Sprintf("panic: %v", rec)))
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func requestID(r *http.Request) string {
	if id := r.Header.Get("X-Request-ID"); id != "" {
		return id
	}
	return chimiddleware.GetReqID(r.Context())
}
