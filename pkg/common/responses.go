// Package common holds the HTTP envelope, pagination and request context
// helpers shared by the REST handlers.
package common

import (
	"encoding/json"
	"net/http"
)

// Error codes of the envelope's error object
const (
	CodeValidation      = "VALIDATION_ERROR"
	CodeUnauthorized    = "UNAUTHORIZED"
	CodeForbidden       = "FORBIDDEN"
	CodeTooManyRequests = "TOO_MANY_REQUESTS"
	CodeInternal        = "INTERNAL_ERROR"
)

// APIResponse is the envelope of every v2 response
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorInfo  `json:"error,omitempty"`
	Meta    *MetaInfo   `json:"meta,omitempty"`
}

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MetaInfo struct {
	RequestID  string          `json:"request_id,omitempty"`
	Pagination *PaginationInfo `json:"pagination,omitempty"`
}

// RespondJSON writes data in the envelope; success follows the status
func RespondJSON(w http.ResponseWriter, status int, data interface{}) {
	write(w, status, APIResponse{Success: isSuccess(status), Data: data})
}

// RespondWithMeta writes data and its metadata in the envelope
func RespondWithMeta(w http.ResponseWriter, status int, data interface{}, meta *MetaInfo) {
	write(w, status, APIResponse{Success: isSuccess(status), Data: data, Meta: meta})
}

// RespondError writes an enveloped error
func RespondError(w http.ResponseWriter, status int, code, message string) {
	write(w, status, APIResponse{Error: &ErrorInfo{Code: code, Message: message}})
}

func write(w http.ResponseWriter, status int, body APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// ExtractRequestID returns the caller's request id, then the API Gateway
// trace id, then the id the request context middleware assigned.
func ExtractRequestID(r *http.Request) string {
	for _, h := range []string{"X-Request-ID", "X-Amzn-Trace-Id"} {
		if id := r.Header.Get(h); id != "" {
			return id
		}
	}
	id, _ := GetRequestID(r.Context())
	return id
}

// ParseJSONBody decodes a JSON body of at most maxBytes into v. Unknown
// fields are rejected.
func ParseJSONBody(r *http.Request, v interface{}, maxBytes int64) error {
	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBytes))
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}
