package api

import (
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/datacanvas/datacanvas/internal/metrics"
	"github.com/datacanvas/datacanvas/internal/middleware"
)

// maxRequestBodySize bounds console API request bodies (1 MiB).
const maxRequestBodySize = 1 << 20

// NewRouter creates the console API router
func (h *Handler) NewRouter() chi.Router {
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.Middleware)
	r.Use(middleware.MaxBodySize(maxRequestBodySize))
	r.Use(middleware.HTTPLogging(h.logger, nil))

	// Public endpoints (no auth)
	r.Get("/health", h.HandleHealth)
	r.Get("/ready", h.HandleReady)
	r.Get("/public/dashboard/{token}", h.HandlePublicDashboard)

	// Data plane (access key auth, not session auth)
	r.Post("/ingest", h.HandleIngest)

	// Console API (session auth)
	r.Group(func(r chi.Router) {
		r.Use(h.SessionAuthMiddleware)

		// Whoami endpoint - available to any authenticated session
		r.Get("/whoami", h.HandleWhoami)

		// Log level management
		r.Post("/loglevel", h.HandleSetLogLevel)

		// Projects
		r.Get("/projects", h.HandleListProjects)
		r.Post("/projects", h.HandleCreateProject)

		// Devices
		r.Get("/device", h.HandleListDevices)
		r.Post("/device", h.HandleCreateDevice)

		// Access keys
		r.Get("/access-keys", h.HandleListAccessKeys)
		r.Post("/access-keys", h.HandleCreateAccessKey)
		r.Get("/access-keys/{id}", h.HandleGetAccessKey)
		r.Put("/access-keys/{id}", h.HandleUpdateAccessKey)
		r.Delete("/access-keys/{id}", h.HandleDeleteAccessKey)
		r.Post("/access-keys/{id}/renew", h.HandleRenewAccessKey)

		// Dashboard shares
		r.Get("/share", h.HandleListShares)
		r.Post("/share", h.HandleCreateShare)
		r.Put("/share", h.HandleUpdateShare)
		r.Delete("/share/{id}", h.HandleDeleteShare)
	})

	return r
}
