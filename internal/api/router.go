package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

func NewRouter(h *Handlers) http.Handler {
	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(logRequests(h.logger))
	r.Use(middleware.Recoverer)
	r.Use(cors)

	// Health
	r.Get("/healthz", h.healthz)

	// ===== Sorting =====
	r.Post("/api/submit_pairs", h.submitPairs)

	// ===== Stored DAGs (database only) =====
	if h.storageEnabled() {
		r.Get("/dags/{dag_id}/order", h.dagOrder)
		r.Get("/admin/check/global-cycles", h.checkGlobalCycles)
	}

	return r
}
