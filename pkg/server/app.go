// Package server owns the application lifecycle: initial pipeline pass, HTTP
// serving and graceful shutdown.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	domrepo "TrendBand/internal/domain/repository"
	"TrendBand/internal/usecase"
	"TrendBand/pkg/cache"
	pkgch "TrendBand/pkg/clickhouse"
	"TrendBand/pkg/config"
	xhttp "TrendBand/pkg/http"
	applogger "TrendBand/pkg/logger"
)

// App encapsulates the entire application lifecycle.
type App struct {
	cfg        *config.Config
	l          *applogger.Logger
	pipeline   *usecase.Pipeline
	handler    xhttp.Handler
	results    cache.BytesCache
	publisher  domrepo.SignalPublisher
	chClient   *pkgch.Client
	httpServer *xhttp.Server
}

// New creates a new App instance with all dependencies.
func New(
	cfg *config.Config,
	l *applogger.Logger,
	pipeline *usecase.Pipeline,
	handler xhttp.Handler,
	results cache.BytesCache,
	publisher domrepo.SignalPublisher,
	chClient *pkgch.Client,
) *App {
	return &App{
		cfg:       cfg,
		l:         l,
		pipeline:  pipeline,
		handler:   handler,
		results:   results,
		publisher: publisher,
		chClient:  chClient,
	}
}

// Run executes the initial pass, starts the HTTP server and blocks until
// interrupted. A failed initial pass is fatal: the service refuses to start
// with nothing to serve.
func (a *App) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ds, err := a.pipeline.Run(ctx, false)
	if err != nil {
		return fmt.Errorf("initial pass: %w", err)
	}
	a.l.Info("initial pass complete",
		applogger.Int("instruments", len(ds.Instruments())),
		applogger.Int("points", len(ds.Points)),
		applogger.String("checksum", ds.Checksum),
	)
	for instrument, reason := range ds.Warnings {
		a.l.Warn("instrument skipped",
			applogger.String("instrument", instrument),
			applogger.String("reason", reason),
		)
	}

	metricsPath := ""
	if a.cfg.Metrics.Enabled {
		metricsPath = a.cfg.Metrics.Path
		if metricsPath == "" {
			metricsPath = "/metrics"
		}
	}
	a.httpServer = xhttp.NewServer(a.handler,
		xhttp.WithPort(a.cfg.Server.Port),
		xhttp.WithTimeouts(a.cfg.Server.ReadTimeout, a.cfg.Server.WriteTimeout, a.cfg.Server.ShutdownTimeout),
		xhttp.WithMetricsPath(metricsPath),
	)
	if err := a.httpServer.Start(); err != nil {
		return fmt.Errorf("http start: %w", err)
	}
	a.l.Info("http server started", applogger.Int("port", a.cfg.Server.Port))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	a.l.Info("shutdown signal received")
	return a.shutdown(ctx)
}

// shutdown gracefully stops the server and closes infrastructure clients.
func (a *App) shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := a.httpServer.Stop(shutdownCtx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.l.Warn("publisher close error", applogger.Error(err))
		}
	}
	if a.results != nil {
		if err := a.results.Close(); err != nil {
			a.l.Warn("cache close error", applogger.Error(err))
		}
	}
	if a.chClient != nil {
		if err := a.chClient.Close(); err != nil {
			a.l.Warn("clickhouse close error", applogger.Error(err))
		}
	}

	a.l.Info("stopped")
	return nil
}
