package chi

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/vendora-cloud/semsearch/internal/version"
)

// API error codes.
const (
	codeValidationError    = "VALIDATION_ERROR"
	codeInvalidJSON        = "INVALID_JSON"
	codeConfigurationError = "CONFIGURATION_ERROR"
	codeSearchFailed       = "SEARCH_FAILED"
	codeInternalError      = "INTERNAL_ERROR"
)

// envelope is the uniform response wrapper: exactly one of Data and Error
// is set.
type envelope struct {
	Success  bool        `json:"success"`
	Data     any         `json:"data,omitempty"`
	Error    *apiError   `json:"error,omitempty"`
	Metadata metadataDTO `json:"metadata"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Field   string `json:"field,omitempty"`
}

type metadataDTO struct {
	RequestID        string    `json:"requestId"`
	Timestamp        time.Time `json:"timestamp"`
	ProcessingTimeMS int64     `json:"processingTime"`
	Version          string    `json:"version"`
}

type requestIDKey struct{}

// RequestID assigns every request a UUID, exposed via X-Request-ID and the
// response envelope.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set("X-Request-ID", id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDFromContext returns the request ID, generating one for requests
// that bypassed the middleware.
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}

func newMetadata(r *http.Request, start time.Time) metadataDTO {
	return metadataDTO{
		RequestID:        RequestIDFromContext(r.Context()),
		Timestamp:        time.Now().UTC(),
		ProcessingTimeMS: time.Since(start).Milliseconds(),
		Version:          version.Version,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeSuccess(w http.ResponseWriter, r *http.Request, start time.Time, status int, data any) {
	writeJSON(w, status, envelope{
		Success:  true,
		Data:     data,
		Metadata: newMetadata(r, start),
	})
}

func writeError(
	w http.ResponseWriter, r *http.Request, start time.Time,
	status int, code, message, field string,
) {
	writeJSON(w, status, envelope{
		Success:  false,
		Error:    &apiError{Code: code, Message: message, Field: field},
		Metadata: newMetadata(r, start),
	})
}
