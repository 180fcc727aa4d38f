// Package api implements the JSON API handlers: cart quoting, product
// page estimates, and the admin pricing settings endpoints.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/puentecommerce/puente/internal/domain"
)

// errorResponse is the JSON error envelope returned by every endpoint.
type errorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// respondError maps a domain error to an HTTP status and writes the
// error envelope. Internal details are logged, never sent to the client.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	if domain.IsValidationError(err) {
		respondJSON(w, http.StatusBadRequest, errorResponse{
			Error:  "validation failed",
			Fields: domain.GetValidationFields(err),
		})
		return
	}

	status := http.StatusInternalServerError
	switch domain.ErrorCode(err) {
	case domain.EINVALID:
		status = http.StatusBadRequest
	case domain.ENOTFOUND:
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		logger.Error("request failed", "error", err)
	}

	respondJSON(w, status, errorResponse{Error: domain.ErrorMessage(err)})
}
