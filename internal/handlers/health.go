package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"notesync/internal/contextutil"
	"notesync/internal/storage"
)

// CollectionChecker reports whether a vector store collection exists.
type CollectionChecker interface {
	CollectionExists(ctx context.Context, collection string) (bool, error)
}

// Pinger checks database connectivity. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// StatusCounter counts records per embedding status.
type StatusCounter interface {
	CountByStatus(ctx context.Context) (map[storage.EmbeddingStatus]int, error)
}

// BacklogCounter reports how many change events wait for the feed worker.
type BacklogCounter interface {
	Pending(ctx context.Context) (int, error)
}

// HealthDeps holds the dependencies checked by HealthHandler.
type HealthDeps struct {
	Vectors        CollectionChecker
	CollectionName string
	DB             Pinger
	Records        StatusCounter
	Changes        BacklogCounter
}

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	deps               HealthDeps
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(deps HealthDeps) *HealthHandler {
	return &HealthHandler{
		deps:               deps,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// Number of records per embedding status
	Embeddings map[string]int `json:"embeddings,omitempty"`

	// Change events not yet handled by the feed worker
	PendingChanges *int `json:"pendingChanges,omitempty"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// Returns the health of the vector store and database, and embedding status counts.
//
// responses:
//
//	'200':
//	  description: System is healthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: System is unhealthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    make(map[string]string),
	}

	if h.checkVectorStore(checkCtx, logger) {
		response.Checks["vector_store"] = "ok"
	} else {
		response.Checks["vector_store"] = "error"
		response.Issues = append(response.Issues, "vector_store_unavailable")
	}

	if err := h.deps.DB.PingContext(checkCtx); err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		response.Checks["database"] = "error"
		response.Issues = append(response.Issues, "database_unavailable")
	} else {
		response.Checks["database"] = "ok"
		h.addCounts(checkCtx, logger, &response)
	}

	httpStatus := http.StatusOK
	if len(response.Issues) > 0 {
		response.Status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	if err := writeJSON(w, httpStatus, response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}

// checkVectorStore checks if the vector store is accessible.
func (h *HealthHandler) checkVectorStore(ctx context.Context, logger *slog.Logger) bool {
	exists, err := h.deps.Vectors.CollectionExists(ctx, h.deps.CollectionName)
	if err != nil {
		logger.WarnContext(ctx, "vector store health check failed", "error", err)
		return false
	}
	if !exists {
		logger.WarnContext(ctx, "vector store collection does not exist", "collection", h.deps.CollectionName)
		return false
	}
	return true
}

// addCounts fills in the informational counters. Failures are logged, not reported as issues.
func (h *HealthHandler) addCounts(ctx context.Context, logger *slog.Logger, resp *HealthResponse) {
	if h.deps.Records != nil {
		counts, err := h.deps.Records.CountByStatus(ctx)
		if err != nil {
			logger.WarnContext(ctx, "failed to count records", "error", err)
		} else {
			resp.Embeddings = make(map[string]int, len(counts))
			for status, n := range counts {
				resp.Embeddings[string(status)] = n
			}
		}
	}

	if h.deps.Changes != nil {
		pending, err := h.deps.Changes.Pending(ctx)
		if err != nil {
			logger.WarnContext(ctx, "failed to count pending changes", "error", err)
		} else {
			resp.PendingChanges = &pending
		}
	}
}
