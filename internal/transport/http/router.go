package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"storepulse/internal/config"
	apierrors "storepulse/internal/errors"
	"storepulse/internal/jobs"
	"storepulse/internal/metrics"
	custommw "storepulse/internal/middleware"
	"storepulse/internal/report"
	"storepulse/internal/websocket"
)

// requestMetrics counts finished requests by method, route pattern and status.
func requestMetrics(m *metrics.Metrics) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			path := r.URL.Path
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				if pattern := rctx.RoutePattern(); pattern != "" {
					path = pattern
				}
			}
			m.HTTPRequestsTotal.WithLabelValues(
				r.Method, path, strconv.Itoa(ww.Status())).Inc()
		})
	}
}

// RouterDeps carries the collaborators of the HTTP surface
type RouterDeps struct {
	Config     *config.Config
	Logger     *slog.Logger
	Calculator *report.Calculator
	Queue      *jobs.Queue
	Hub        *websocket.Hub
	Metrics    *metrics.Metrics
	Version    string
}

// NewRouter assembles the full middleware chain and route tree
func NewRouter(deps RouterDeps) http.Handler {
	cfg := deps.Config
	logger := deps.Logger

	r := chi.NewRouter()

	r.Use(custommw.RequestID)
	r.Use(custommw.RealIP)
	r.Use(custommw.StructuredLogger(logger))
	r.Use(custommw.Recoverer(logger))
	r.Use(custommw.SecurityHeaders)
	r.Use(custommw.Compress(5))
	if deps.Metrics != nil {
		r.Use(requestMetrics(deps.Metrics))
	}

	if cfg.Security.EnableCORS {
		r.Use(custommw.CORS(custommw.CORSConfig{
			AllowedOrigins: cfg.Security.AllowedOrigins,
			Logger:         logger,
		}))
	}
	if cfg.Security.RateLimit.Enabled {
		limiter := custommw.NewRateLimiter(cfg.Security.RateLimit.RPS, cfg.Security.RateLimit.Burst, logger)
		r.Use(limiter.Handler)
	}

	errorHandler := apierrors.NewErrorHandler(logger, false)
	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	defaults := cfg.Calculation.Settings()
	reportHandler := NewReportHandler(deps.Calculator, defaults, deps.Metrics, logger)
	jobsHandler := NewJobsHandler(deps.Queue, defaults, logger)
	healthHandler := NewHealthHandler(deps.Version)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(custommw.Timeout(cfg.Server.RequestTimeout, logger))
		reportHandler.RegisterRoutes(r)
		jobsHandler.RegisterRoutes(r)
	})

	if deps.Hub != nil {
		wsHandler := NewWSHandler(deps.Hub, cfg.WebSocket, logger)
		r.Get("/ws", wsHandler.Serve)
	}

	r.Get("/healthz", healthHandler.Healthz)
	if deps.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", deps.Metrics.Handler())
	}

	return r
}
