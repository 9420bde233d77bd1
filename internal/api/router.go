package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	mw "github.com/kiranshivaraju/todoapi/internal/api/middleware"
	"github.com/kiranshivaraju/todoapi/internal/api/response"
	"github.com/kiranshivaraju/todoapi/internal/metrics"
	"github.com/kiranshivaraju/todoapi/internal/ratelimit"
)

// Dependencies holds all handler and middleware dependencies for the router.
type Dependencies struct {
	Auth      *mw.Auth
	RateLimit *mw.RateLimit
	Metrics   *metrics.Metrics

	StatusHandler http.HandlerFunc
	DocsHandler   http.HandlerFunc

	ListTasks  http.HandlerFunc
	CreateTask http.HandlerFunc
	GetTask    http.HandlerFunc
	UpdateTask http.HandlerFunc
	DeleteTask http.HandlerFunc

	CreateCompany http.HandlerFunc
	ListCompanies http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(mw.Logger)
	r.Use(mw.Instrument(deps.Metrics))
	r.Use(mw.Recovery)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusNotFound, "NOT_FOUND", "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		response.Error(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", deps.Metrics.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		// Public
		r.Get("/status", orNotImplemented(deps.StatusHandler))
		r.Get("/docs", orNotImplemented(deps.DocsHandler))

		// Tenant routes: authenticate first, then charge the class for the
		// operation kind.
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.Authenticate)

			read := deps.RateLimit.Limit(ratelimit.Standard)
			write := deps.RateLimit.Limit(ratelimit.Write)

			r.With(read).Get("/tasks", orNotImplemented(deps.ListTasks))
			r.With(write).Post("/tasks", orNotImplemented(deps.CreateTask))
			r.With(read).Get("/tasks/{taskID}", orNotImplemented(deps.GetTask))
			r.With(write).Put("/tasks/{taskID}", orNotImplemented(deps.UpdateTask))
			r.With(write).Delete("/tasks/{taskID}", orNotImplemented(deps.DeleteTask))
		})

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(deps.Auth.RequireAdmin)
			r.Use(deps.RateLimit.Limit(ratelimit.Admin))

			r.Post("/companies", orNotImplemented(deps.CreateCompany))
			r.Get("/companies", orNotImplemented(deps.ListCompanies))
		})
	})

	return r
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not yet implemented", nil)
	}
}
