package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
)

// healthCheckTimeout bounds each dependency check made by /health.
const healthCheckTimeout = 2 * time.Second

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.metricsMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Handle("/metrics", s.metrics.Handler())

		r.Get("/units", s.handleListUnits)
		r.Get("/prefixes", s.handleListPrefixes)

		r.Route("/systems", func(r chi.Router) {
			r.Get("/", s.handleListSystems)
			r.Put("/active", s.handleSwitchSystem)
			r.Get("/{name}", s.handleGetSystem)
		})

		r.Post("/parse", s.handleParse)
		r.Post("/convert", s.handleConvert)

		r.Route("/custom-units", func(r chi.Router) {
			r.Get("/", s.handleListCustomUnits)
			r.Post("/", s.handleDefineCustomUnit)
			r.Delete("/{name}", s.handleDeleteCustomUnit)
		})

		r.Post("/registry/reload", s.handleReload)
		r.Get("/audit", s.handleListAudit)
	})

	return r
}

// handleHealth reports the registry state and every configured dependency.
// Any failing check turns the response into 503 "degraded".
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status, code := "ok", http.StatusOK
	checks := make(map[string]string, len(s.checks)+1)

	if reg := s.catalog.Store().Load(); reg == nil {
		checks["registry"] = "not published"
		status, code = "degraded", http.StatusServiceUnavailable
	} else {
		checks["registry"] = "ok"
	}

	for name, checker := range s.checks {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		err := checker.HealthCheck(ctx)
		cancel()
		if err != nil {
			checks[name] = err.Error()
			status, code = "degraded", http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	writeJSON(w, code, map[string]any{
		"status":         status,
		"version":        s.version,
		"uptime_seconds": int64(time.Since(s.startTime).Seconds()),
		"checks":         checks,
	})
}
