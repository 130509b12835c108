package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"adpulse/internal/config"
	"adpulse/internal/dataprocessing"
	"adpulse/internal/infrastructure"
	customMiddleware "adpulse/internal/middleware"
	"adpulse/internal/services"
	handlers "adpulse/internal/transport/http"
)

// VERSION is the service version reported by /api/version
const VERSION = "1.0.0"

// Application represents the main application container
type Application struct {
	Config   *config.Config
	Router   *chi.Mux
	Server   *http.Server
	Logger   *slog.Logger
	Registry *prometheus.Registry

	AnalysisService *services.AnalysisService
	HealthService   *services.HealthService
}

// NewApplication creates a new application instance with dependency injection
func NewApplication(configPath string) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger := infrastructure.InitializeLogger(cfg.Logging)
	logger.Info("application starting",
		slog.String("version", VERSION),
		slog.Int("port", cfg.Server.Port))

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := services.NewMetrics(registry)

	pipeline := dataprocessing.NewPipeline(logger, cfg.PipelineSettings())

	a := &Application{
		Config:          cfg,
		Logger:          logger,
		Registry:        registry,
		AnalysisService: services.NewAnalysisService(pipeline, metrics, logger),
		HealthService:   services.NewHealthService(VERSION, logger),
	}

	a.setupRouter()
	a.createServer()
	return a, nil
}

// setupRouter configures the middleware chain and API routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.Compress(5))

	if a.Config.Server.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Server.RateLimit.RPS,
			a.Config.Server.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		healthHandler := handlers.NewHealthHandler(a.HealthService, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/live", healthHandler.LivenessCheck)
		r.Get("/version", healthHandler.Version)

		r.Route("/v1", func(r chi.Router) {
			r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))
			r.Get("/health", healthHandler.HealthCheck)
			analyzeHandler := handlers.NewAnalyzeHandler(a.AnalysisService, a.Logger)
			r.Mount("/analyze", analyzeHandler.Routes())
		})
	})

	r.Method(http.MethodGet, "/metrics", handlers.MetricsHandler(a.Registry))

	a.Router = r
}

// createServer builds the HTTP server from configuration
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start runs the HTTP server. It returns when the listener fails; a clean
// shutdown via Stop does not count as a failure.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "server listening",
		slog.String("addr", a.Server.Addr))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Run starts the server and blocks until an interrupt signal arrives or
// the listener fails, then shuts down gracefully.
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	a.Logger.InfoContext(ctx, "application stopped")
	return nil
}
