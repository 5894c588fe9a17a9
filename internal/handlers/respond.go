package handlers

import (
	"encoding/json"
	"net/http"
)

// maxBodyBytes bounds request bodies read by the JSON handlers.
const maxBodyBytes = 4 << 20

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(v)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message, details string) {
	_ = writeJSON(w, statusCode, ErrorResponse{Error: message, Details: details})
}
