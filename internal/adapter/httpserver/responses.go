// Package httpserver contains HTTP handlers and middleware.
//
// It serves the practice and interview endpoints, interview sessions,
// progress, and health probes. Product endpoints keep their flat
// {"error": "..."} bodies; everything else uses the error envelope.
package httpserver

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/fairyhunter13/prepio-api/internal/domain"
)

type errorEnvelope struct {
	Error apiError `json:"error"`
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeMessage writes the flat {"error": msg} body of the product endpoints.
func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// errorStatuses maps domain sentinels to a status and envelope code. The
// first match wins; anything else is a 500 INTERNAL.
var errorStatuses = []struct {
	err    error
	status int
	code   string
}{
	{domain.ErrInvalidArgument, http.StatusBadRequest, "INVALID_ARGUMENT"},
	{domain.ErrNotFound, http.StatusNotFound, "NOT_FOUND"},
	{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
	{domain.ErrRateLimited, http.StatusTooManyRequests, "RATE_LIMITED"},
	{domain.ErrUpstreamTimeout, http.StatusServiceUnavailable, "UPSTREAM_TIMEOUT"},
	{domain.ErrUpstreamRateLimit, http.StatusServiceUnavailable, "UPSTREAM_RATE_LIMIT"},
	{domain.ErrSchemaInvalid, http.StatusServiceUnavailable, "SCHEMA_INVALID"},
	{domain.ErrAIUnavailable, http.StatusInternalServerError, "AI_UNAVAILABLE"},
}

func writeError(w http.ResponseWriter, _ *http.Request, err error, details any) {
	status, code := http.StatusInternalServerError, "INTERNAL"
	for _, e := range errorStatuses {
		if errors.Is(err, e.err) {
			status, code = e.status, e.code
			break
		}
	}
	writeJSON(w, status, errorEnvelope{Error: apiError{Code: code, Message: err.Error(), Details: details}})
}
