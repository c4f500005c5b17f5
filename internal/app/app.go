package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"storepulse/internal/config"
	"storepulse/internal/jobs"
	"storepulse/internal/metrics"
	"storepulse/internal/report"
	transport "storepulse/internal/transport/http"
	ws "storepulse/internal/websocket"
)

// Version is overridden at build time via -ldflags.
var Version = "dev"

// Application wires the engine, job queue, hub and HTTP server together.
type Application struct {
	Config  *config.Config
	Logger  *slog.Logger
	Metrics *metrics.Metrics
	Hub     *ws.Hub
	Queue   *jobs.Queue
	Server  *http.Server

	queueCancel context.CancelFunc
}

// New creates a fully wired application from configuration.
func New() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := newLogger(cfg.Logging)

	m := metrics.New()

	hub := ws.NewHub(logger, ws.WithClientGauge(m.WebSocketClients))

	store := jobs.NewMemoryStore(cfg.Jobs.ResultTTL)
	queue := jobs.NewQueue(cfg.Jobs.Workers, store, logger,
		jobs.WithQueueSize(cfg.Jobs.QueueSize),
		jobs.WithMaxConcurrency(cfg.Calculation.MaxConcurrency),
		jobs.WithBroadcaster(hub),
		jobs.WithMetrics(m),
	)

	calculator := report.NewCalculator(logger,
		report.WithMaxConcurrency(cfg.Calculation.MaxConcurrency))

	router := transport.NewRouter(transport.RouterDeps{
		Config:     cfg,
		Logger:     logger,
		Calculator: calculator,
		Queue:      queue,
		Hub:        hub,
		Metrics:    m,
		Version:    Version,
	})

	server := &http.Server{
		Addr:           cfg.GetListenAddr(),
		Handler:        router,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxHeaderBytes: cfg.Server.MaxHeaderBytes,
	}

	return &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: m,
		Hub:     hub,
		Queue:   queue,
		Server:  server,
	}, nil
}

// newLogger builds the process-wide slog logger from the logging config.
func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// Start launches the hub, job queue and HTTP server. The server runs in a
// goroutine; a listen failure cancels the supplied context.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "application starting",
		slog.String("version", Version),
		slog.String("addr", a.Server.Addr),
		slog.Int("workers", a.Config.Jobs.Workers))

	a.Hub.Start()

	queueCtx, queueCancel := context.WithCancel(context.Background())
	a.queueCancel = queueCancel
	a.Queue.Start(queueCtx)

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "application started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop drains in-flight requests and workers before exiting.
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.queueCancel != nil {
		a.queueCancel()
	}
	if err := a.Queue.Stop(30 * time.Second); err != nil {
		a.Logger.ErrorContext(ctx, "failed to stop job queue gracefully",
			slog.String("error", err.Error()))
	}

	a.Hub.Stop()

	a.Logger.InfoContext(ctx, "application shutdown complete")
	return nil
}

// Run runs the application until interrupted.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "received signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
