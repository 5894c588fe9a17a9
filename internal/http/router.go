package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"notesync/internal/embedsync"
	"notesync/internal/handlers"
	"notesync/internal/insight"
	"notesync/internal/storage"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Insights insight.Service
	Records  storage.RecordStore
	Engine   embedsync.Engine
	Health   handlers.HealthDeps
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)
	r.Use(RequestLogger)
	r.Use(CORS)

	insightsHandler := handlers.NewInsightsHandler(deps.Insights)
	recordsHandler := handlers.NewRecordsHandler(deps.Records, deps.Engine)
	healthHandler := handlers.NewHealthHandler(deps.Health)

	r.Route("/api", func(r chi.Router) {
		r.Method(http.MethodGet, "/health", healthHandler)

		r.Route("/v1", func(r chi.Router) {
			r.Method(http.MethodPost, "/insights", insightsHandler)

			r.Route("/records/{tenantID}/{userID}/{recordID}", func(r chi.Router) {
				r.Put("/", recordsHandler.Put)
				r.Get("/", recordsHandler.Get)
				r.Delete("/", recordsHandler.Delete)
				r.Post("/reprocess", recordsHandler.Reprocess)
			})
		})
	})

	return r
}
