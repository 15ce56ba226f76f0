// Package app provides application initialization and lifecycle management.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/mapgpt/mapgpt-go/internal/api"
	"github.com/mapgpt/mapgpt-go/internal/buildinfo"
	"github.com/mapgpt/mapgpt-go/internal/config"
	"github.com/mapgpt/mapgpt-go/internal/ctxutil"
	"github.com/mapgpt/mapgpt-go/internal/logger"
	"github.com/mapgpt/mapgpt-go/internal/metrics"
	"github.com/mapgpt/mapgpt-go/internal/sentry"
	"github.com/mapgpt/mapgpt-go/internal/web"
	"github.com/mapgpt/mapgpt-go/internal/webhook"
)

// WebhookPath is the LINE webhook callback route.
const WebhookPath = "/webhook"

// Application manages the application lifecycle and dependencies.
type Application struct {
	cfg            *config.Config
	logger         *logger.Logger
	metrics        *metrics.Metrics
	registry       *prometheus.Registry
	pipeline       *Pipeline
	webhookHandler *webhook.Handler // nil unless LINE is enabled
	router         *gin.Engine
	server         *http.Server
}

// NewLogger builds the process logger from cfg and installs it as the slog default.
func NewLogger(cfg *config.Config) *logger.Logger {
	opts := logger.Options{}
	if cfg.BetterStack.Enabled {
		opts.BetterStackToken = cfg.BetterStack.Token
		opts.BetterStackEndpoint = cfg.BetterStack.Endpoint
	}
	log := logger.NewWithOptions(cfg.LogLevel, os.Stdout, opts).WithField("service", "mapgpt")
	if host, err := os.Hostname(); err == nil && host != "" {
		log = log.WithField("instance_id", host)
	}

	// Package-level slog.*Context calls pick up request IDs through ContextHandler.
	slog.SetDefault(log.Logger)
	return log
}

// Initialize creates and initializes a new application with all dependencies.
func Initialize(ctx context.Context, cfg *config.Config) (*Application, error) {
	log := NewLogger(cfg)
	log.WithField("version", buildinfo.String()).Info("Initializing application...")
	if cfg.BetterStack.Enabled {
		log.WithField("endpoint", cfg.BetterStack.Endpoint).Info("Better Stack logging enabled")
	}

	if cfg.Sentry.Enabled {
		if err := sentry.Initialize(sentry.Config{
			DSN:         cfg.Sentry.DSN,
			Environment: cfg.Sentry.Environment,
			Release:     buildinfo.Version,
			SampleRate:  cfg.Sentry.SampleRate,
		}); err != nil {
			return nil, err
		}
		log.Info("Sentry error reporting enabled")
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewBuildInfoCollector(),
	)
	m := metrics.New(registry)

	pipeline, err := BuildPipeline(ctx, cfg, m, log)
	if err != nil {
		return nil, fmt.Errorf("pipeline: %w", err)
	}
	log.WithFields(map[string]any{
		"knowledge_source": pipeline.Source,
		"topics":           pipeline.Base.Topics.Len(),
		"provider":         pipeline.Completer.Provider().String(),
		"web_search":       cfg.Search.WebEnabled,
	}).Info("Chat pipeline ready")

	app := &Application{
		cfg:      cfg,
		logger:   log,
		metrics:  m,
		registry: registry,
		pipeline: pipeline,
	}

	if cfg.Line.Enabled {
		app.webhookHandler, err = webhook.NewHandler(webhook.HandlerConfig{
			ChannelSecret: cfg.Line.ChannelSecret,
			ChannelToken:  cfg.Line.ChannelToken,
			Answerer:      pipeline.Service,
			Metrics:       m,
			Logger:        log,
			Timeout:       cfg.RequestTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("webhook: %w", err)
		}
		log.Info("LINE webhook enabled")
	}

	gin.SetMode(gin.ReleaseMode)
	app.router = app.setupRouter()
	app.server = &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.router,
		ReadHeaderTimeout: config.HTTPRead,
		ReadTimeout:       config.HTTPRead,
		WriteTimeout:      config.WriteTimeout(cfg.RequestTimeout),
		IdleTimeout:       config.HTTPIdle,
	}

	log.Info("Initialization complete")
	return app, nil
}

// Handler returns the HTTP handler serving every route.
func (a *Application) Handler() http.Handler {
	return a.router
}

func (a *Application) setupRouter() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	if sentry.IsEnabled() {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(requestIDMiddleware())
	router.Use(securityHeadersMiddleware())
	router.Use(loggingMiddleware(a.logger))

	router.GET("/healthz", a.livenessCheck)
	router.HEAD("/healthz", a.livenessCheck)
	router.GET("/ready", a.readinessCheck)
	router.HEAD("/ready", a.readinessCheck)
	router.GET("/metrics",
		metricsAuthMiddleware(a.cfg.MetricsUsername, a.cfg.MetricsPassword),
		gin.WrapH(promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{})))

	chatAPI := router.Group("",
		corsMiddleware(a.cfg.CORSOrigins),
		channelMiddleware(ctxutil.ChannelWeb),
		timeoutMiddleware(a.cfg.RequestTimeout),
	)
	// Preflight requests never reach a handler; cors answers them.
	chatAPI.OPTIONS(api.ChatPath, func(c *gin.Context) { c.Status(http.StatusNoContent) })
	api.NewHandler(a.pipeline.Service, api.Options{
		ExposeDetails: !a.cfg.IsProduction(),
		Metrics:       a.metrics,
		Logger:        a.logger,
	}).Register(chatAPI)

	if a.webhookHandler != nil {
		router.POST(WebhookPath, a.webhookHandler.Handle)
	}

	web.Register(router)
	return router
}

func (a *Application) livenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "alive",
	})
}

func (a *Application) getFeatures() map[string]bool {
	return map[string]bool{
		"web_search":  a.cfg.Search.WebEnabled,
		"system_role": a.cfg.LLM.SystemRole,
		"line":        a.webhookHandler != nil,
		"sentry":      sentry.IsEnabled(),
	}
}

// readinessCheck reports ready once the knowledge base is loaded and the
// configured completion provider has a key.
func (a *Application) readinessCheck(c *gin.Context) {
	if a.pipeline == nil || a.pipeline.Base == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "knowledge base not loaded",
		})
		return
	}
	if a.cfg.LLM.APIKey() == "" {
		a.logger.WithField("env", a.cfg.LLM.APIKeyEnv()).Debug("Readiness check failed: completion key missing")
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": a.cfg.LLM.APIKeyEnv() + " is not set",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status": "ready",
		"knowledge": gin.H{
			"source": a.pipeline.Source,
			"topics": a.pipeline.Base.Topics.Len(),
		},
		"provider": a.pipeline.Completer.Provider().String(),
		"features": a.getFeatures(),
	})
}

// Run serves HTTP until ctx is canceled, then shuts down gracefully.
//
// Shutdown order:
//  1. Stop accepting new HTTP requests and drain in-flight ones
//  2. Wait for LINE events already acknowledged to finish answering
//  3. Flush Sentry and remote logs
func (a *Application) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		a.logger.WithField("port", a.cfg.Port).Info("Starting HTTP server")
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		a.logger.Info("Shutdown requested")
		//nolint:contextcheck // Shutdown must outlive the canceled run context.
		return a.shutdown()
	})

	return g.Wait()
}

func (a *Application) shutdown() error {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()

	a.logger.Info("Stopping HTTP server...")
	var errs []error
	if err := a.server.Shutdown(shutdownCtx); err != nil {
		a.logger.WithError(err).Error("HTTP server shutdown error")
		errs = append(errs, err)
	}

	if a.webhookHandler != nil {
		a.logger.Info("Waiting for webhook events to complete...")
		if err := a.webhookHandler.Shutdown(shutdownCtx); err != nil {
			a.logger.WithError(err).Warn("Webhook handler shutdown timeout")
		}
	}

	if sentry.IsEnabled() && !sentry.Flush(2*time.Second) {
		a.logger.Warn("Sentry flush timed out")
	}

	a.logger.Info("Shutdown complete")

	flushCtx, flushCancel := context.WithTimeout(context.Background(), config.LogFlush)
	defer flushCancel()
	if err := a.logger.Shutdown(flushCtx); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "logger shutdown: %v\n", err)
	}

	return errors.Join(errs...)
}
