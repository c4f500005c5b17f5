package app

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storepulse/internal/config"
)

func TestNewWiresAllComponents(t *testing.T) {
	// Use an isolated config file path so a stray config.yaml in the working
	// directory cannot leak into the test.
	t.Setenv("SP_CONFIG_FILE", "/nonexistent/config.yaml")

	application, err := New()
	require.NoError(t, err)

	assert.NotNil(t, application.Config)
	assert.NotNil(t, application.Logger)
	assert.NotNil(t, application.Metrics)
	assert.NotNil(t, application.Hub)
	assert.NotNil(t, application.Queue)
	assert.NotNil(t, application.Server)
	assert.Equal(t, ":8080", application.Server.Addr)
}

func TestNewRespectsEnvOverrides(t *testing.T) {
	t.Setenv("SP_CONFIG_FILE", "/nonexistent/config.yaml")
	t.Setenv("SP_SERVER_PORT", "9999")

	application, err := New()
	require.NoError(t, err)
	assert.Equal(t, ":9999", application.Server.Addr)
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	t.Setenv("SP_CONFIG_FILE", "/nonexistent/config.yaml")
	t.Setenv("SP_LOGGING_LEVEL", "loud")

	_, err := New()
	assert.Error(t, err)
}

func TestServedRoutes(t *testing.T) {
	t.Setenv("SP_CONFIG_FILE", "/nonexistent/config.yaml")

	application, err := New()
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	application.queueCancel = cancel
	application.Hub.Start()
	application.Queue.Start(ctx)
	t.Cleanup(func() {
		cancel()
		application.Queue.Stop(time.Second)
		application.Hub.Stop()
	})

	srv := httptest.NewServer(application.Server.Handler)
	t.Cleanup(srv.Close)

	resp, err := srv.Client().Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, 200, resp.StatusCode)

	metricsResp, err := srv.Client().Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metricsResp.Body.Close()
	assert.Equal(t, 200, metricsResp.StatusCode)
}

func TestNewLoggerLevels(t *testing.T) {
	cases := []struct {
		level string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
	}
	for _, tc := range cases {
		logger := newLogger(config.LoggingConfig{Level: tc.level, Format: "text"})
		assert.True(t, logger.Enabled(context.Background(), tc.want), tc.level)
		if tc.want > slog.LevelDebug {
			assert.False(t, logger.Enabled(context.Background(), tc.want-1), tc.level)
		}
	}
}
