package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/turtacn/VisionGate/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/VisionGate/internal/interfaces/http/handlers"
	"github.com/turtacn/VisionGate/internal/interfaces/http/middleware"
)

// RouterConfig aggregates the handlers and middleware of the HTTP surface.
// Nil handlers leave their routes unregistered.
type RouterConfig struct {
	// Handlers
	PredictHandler    *handlers.PredictHandler
	HealthHandler     *handlers.HealthHandler
	ManagementHandler *handlers.ManagementHandler
	InfoHandler       *handlers.InfoHandler

	// Middleware
	CORS         *middleware.CORSConfig
	Logging      *middleware.LoggingConfig
	HTTPObserver middleware.HTTPObserver
	Logger       logging.Logger

	// PrometheusHandler is mounted at PrometheusPath when both are set.
	PrometheusHandler http.Handler
	PrometheusPath    string
}

// NewRouter constructs the gateway route tree.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.HTTPObserver != nil {
		r.Use(middleware.HTTPMetrics(cfg.HTTPObserver))
	}
	if cfg.Logging != nil {
		r.Use(middleware.RequestLogging(cfg.Logger, *cfg.Logging))
	}
	r.Use(chimw.Recoverer)
	if cfg.CORS != nil && len(cfg.CORS.AllowedOrigins) > 0 {
		r.Use(middleware.CORS(*cfg.CORS))
	}

	if h := cfg.HealthHandler; h != nil {
		r.Get("/healthz", h.Liveness)
		r.Get("/readyz", h.Readiness)
		r.Get("/health-status", h.HealthStatus)
	}

	if cfg.PredictHandler != nil {
		r.Post("/predict", cfg.PredictHandler.Predict)
	}

	if h := cfg.InfoHandler; h != nil {
		r.Get("/group-info", h.GroupInfo)
		r.Get("/metrics", h.Metrics)
	}

	if cfg.PrometheusHandler != nil && cfg.PrometheusPath != "" {
		r.Handle(cfg.PrometheusPath, cfg.PrometheusHandler)
	}

	registerManagementRoutes(r, cfg.ManagementHandler)

	return r
}

// registerManagementRoutes mounts the model administration endpoints under
// /management/models. set-default is a GET for compatibility with existing
// callers.
func registerManagementRoutes(r chi.Router, h *handlers.ManagementHandler) {
	if h == nil {
		return
	}
	r.Route("/management/models", func(mr chi.Router) {
		mr.Get("/", h.ListModels)
		mr.Route("/{id}", func(item chi.Router) {
			item.Get("/describe", h.Describe)
			item.Get("/set-default", h.SetDefault)
		})
	})
}

//Personal.AI order the ending
