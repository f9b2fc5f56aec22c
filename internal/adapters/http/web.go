package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"sportsday/internal/adapters/http/middleware"
	"sportsday/internal/adapters/http/perf"
	regStore "sportsday/internal/adapters/storage/registration"
	"sportsday/internal/application/orchestrators"
)

// Deps holds everything the HTTP surface needs.
type Deps struct {
	Store       regStore.Store
	Notifier    orchestrators.Notifier // optional
	Collector   *perf.Collector        // optional
	FrontendURL string
	SlowRequest time.Duration // 0 selects middleware.DefaultSlowRequest
}

// server binds handlers to their dependencies.
type server struct {
	deps     Deps
	observer orchestrators.Observer
}

// NewMux wires HTTP handlers for the registration API.
// Middleware order (outer to inner): request ID, panic recovery, CORS,
// security headers, timing.
func NewMux(deps Deps) http.Handler {
	s := &server{deps: deps}
	if deps.Collector != nil {
		s.observer = deps.Collector
	}

	r := chi.NewRouter()
	r.Use(
		chimw.RequestID,
		chimw.Recoverer,
		middleware.CORS(deps.FrontendURL),
		middleware.SecurityHeaders,
		middleware.Timing(deps.Collector, deps.SlowRequest),
	)

	r.Post("/api/registrations", s.handleCreateRegistration)
	r.Get("/api/registrations", s.handleListRegistrations)
	r.Get("/api/registrations/export", s.handleExportRegistrations)
	r.Get("/api/registrations/{id}", s.handleGetRegistration)

	if deps.Collector != nil {
		r.Method(http.MethodGet, "/metrics", deps.Collector.Handler())
	}

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{Message: "Not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Message: "Method not allowed"})
	})

	return r
}
