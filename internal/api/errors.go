package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
)

const maxRequestBodySize = 1 << 20 // 1MB

// Error types carried in the "type" field of error responses.
const (
	errInvalidRequest = "invalid_request_error"
	errAuthentication = "authentication_error"
	errPermission     = "permission_error"
	errNotFound       = "not_found"
	errConflict       = "conflict"
	errAPI            = "api_error"
)

type errorBody struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// httpError writes {"error":{"message","type"}}. Server-side failures are
// also logged since the client only sees a generic type.
func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if code >= http.StatusInternalServerError {
		slog.Error("request failed", "status", code, "type", errType, "message", msg)
	}
	writeJSON(w, code, map[string]errorBody{"error": {Message: msg, Type: errType}})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

// decodeBody reads a size-limited JSON body into v. On failure it writes a
// 400 response and returns false.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		httpError(w, http.StatusBadRequest, errInvalidRequest, "invalid request body: %v", err)
		return false
	}
	return true
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v < 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}
