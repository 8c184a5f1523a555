package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/davidbz/workshopai/internal/observability"
)

// Request body limits.
const (
	maxCompletionBody = 1 << 20
	maxEmailBody      = 4 << 20
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON encodes body with the given status.
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		// Already written status, can't change it, just log.
		observability.FromContext(ctx).Warn("failed to encode response", observability.Error(err))
	}
}

// writeError writes {"error": message}.
func writeError(ctx context.Context, w http.ResponseWriter, status int, message string) {
	writeJSON(ctx, w, status, errorResponse{Error: message})
}

// decodeBody decodes at most limit bytes of JSON into dst. On failure it
// writes the error response and returns false: 413 for an oversized body,
// 400 otherwise.
func decodeBody(w http.ResponseWriter, r *http.Request, limit int64, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, limit)

	err := json.NewDecoder(r.Body).Decode(dst)
	if err == nil {
		return true
	}

	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		writeError(r.Context(), w, http.StatusRequestEntityTooLarge,
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
		return false
	}

	writeError(r.Context(), w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
	return false
}
