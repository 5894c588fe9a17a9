package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"notesync/internal/contextutil"
	"notesync/internal/insight"
)

// InsightsHandler handles HTTP requests for cross-document insights.
type InsightsHandler struct {
	insights insight.Service
}

// NewInsightsHandler creates a new InsightsHandler.
func NewInsightsHandler(insights insight.Service) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// InsightsRequest represents the HTTP request payload for insights.
//
// swagger:model InsightsRequest
type InsightsRequest struct {
	UserID  string `json:"userId"`
	AppID   string `json:"appId"`
	Title   string `json:"title,omitempty"`
	Content string `json:"content"`
}

// ServeHTTP handles HTTP requests for insights.
//
// swagger:route POST /api/v1/insights findConnections
//
// # Find related documents and generate insights
//
// Embeds the posted content, retrieves the user's most similar records and asks the
// generative model what connects them. Each user may call this once per interval.
//
// responses:
//
//	'200':
//	  description: Related documents and generated insights
//	'400':
//	  description: Missing userId, appId or content
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'429':
//	  description: Rate limited, see the Retry-After header
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'500':
//	  description: Embedding, vector search or generation failed
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *InsightsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "")
		return
	}

	var req InsightsRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body", "")
		return
	}

	resp, err := h.insights.FindConnections(ctx, insight.Request{
		UserID:   req.UserID,
		TenantID: req.AppID,
		Title:    req.Title,
		Content:  req.Content,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, resp); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

// handleServiceError maps insight errors to HTTP status codes.
func (h *InsightsHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	var validationErr *insight.ValidationError
	if errors.As(err, &validationErr) {
		writeError(w, http.StatusBadRequest, validationErr.Error(), "")
		return
	}

	var rateErr *insight.RateLimitError
	if errors.As(err, &rateErr) {
		w.Header().Set("Retry-After", strconv.Itoa(rateErr.RetryAfterSeconds()))
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded. Please wait before requesting insights again.", "")
		return
	}

	logger.ErrorContext(ctx, "insight request failed", "error", err)
	writeError(w, http.StatusInternalServerError, "Failed to generate insights", err.Error())
}
