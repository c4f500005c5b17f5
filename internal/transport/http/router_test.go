package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storepulse/internal/config"
	"storepulse/internal/jobs"
	"storepulse/internal/metrics"
	"storepulse/internal/report"
	"storepulse/internal/websocket"
)

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:           8080,
			RequestTimeout: 30 * time.Second,
		},
		Security: config.SecurityConfig{
			EnableCORS:     false,
			AllowedOrigins: []string{"http://localhost:8080"},
			RateLimit:      config.RateLimitConfig{Enabled: false},
		},
		Calculation: config.CalculationConfig{
			MaxConcurrency:        4,
			TargetGrossProfitRate: 0.25,
			WarningThreshold:      0.23,
			FlowerCostRate:        0.80,
			DirectProduceCostRate: 0.85,
			DefaultMarkupRate:     0.26,
			DefaultBudget:         6450000,
		},
	}
}

func fullRouter(t *testing.T, cfg *config.Config) http.Handler {
	t.Helper()
	logger := testLogger()

	hub := websocket.NewHub(logger)
	hub.Start()
	t.Cleanup(hub.Stop)

	queue := jobs.NewQueue(1, jobs.NewMemoryStore(time.Hour), logger,
		jobs.WithBroadcaster(hub))
	ctx, cancel := context.WithCancel(context.Background())
	queue.Start(ctx)
	t.Cleanup(func() {
		cancel()
		queue.Stop(time.Second)
	})

	return NewRouter(RouterDeps{
		Config:     cfg,
		Logger:     logger,
		Calculator: report.NewCalculator(logger),
		Queue:      queue,
		Hub:        hub,
		Metrics:    metrics.New(),
		Version:    "test",
	})
}

func TestRouterHealthz(t *testing.T) {
	router := fullRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
	assert.Contains(t, w.Body.String(), `"version":"test"`)
}

func TestRouterMetricsScrape(t *testing.T) {
	router := fullRouter(t, testConfig())

	// Exercise a calculation so the counters move.
	w := postJSON(t, router, "/api/v1/calculate", map[string]interface{}{
		"data":          testImportedData(),
		"days_in_month": 28,
	})
	require.Equal(t, http.StatusOK, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	mw := httptest.NewRecorder()
	router.ServeHTTP(mw, req)

	require.Equal(t, http.StatusOK, mw.Code)
	body := mw.Body.String()
	assert.Contains(t, body, "storepulse_calculations_total")
	assert.Contains(t, body, "storepulse_stores_calculated_total")
	assert.Contains(t, body, "storepulse_http_requests_total")
}

func TestRouterNotFound(t *testing.T) {
	router := fullRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/no/such/path", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
}

func TestRouterMethodNotAllowed(t *testing.T) {
	router := fullRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodDelete, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRouterRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.Security.RateLimit = config.RateLimitConfig{Enabled: true, RPS: 1, Burst: 1}
	router := fullRouter(t, cfg)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	require.Equal(t, http.StatusOK, first.Code)

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.Equal(t, "60", second.Header().Get("Retry-After"))
}

func TestRouterCORSHeaders(t *testing.T) {
	cfg := testConfig()
	cfg.Security.EnableCORS = true
	router := fullRouter(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "http://localhost:8080")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:8080", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestRouterSecurityHeaders(t *testing.T) {
	router := fullRouter(t, testConfig())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
}

func TestRouterRequestID(t *testing.T) {
	router := fullRouter(t, testConfig())

	t.Run("honors an incoming id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set("X-Request-ID", "req-123")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	})

	t.Run("generates one when missing", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})
}
