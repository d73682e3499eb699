// Package app initializes and holds long-lived application services,
// acting as a dependency injection container for the CLI commands.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/boardwatch/doski-crawler/internal/config"
	"github.com/boardwatch/doski-crawler/internal/logging"
	"github.com/boardwatch/doski-crawler/internal/metrics"
	"github.com/boardwatch/doski-crawler/internal/notify"
	"github.com/boardwatch/doski-crawler/internal/storage"
)

// App holds the shared, long-lived services: logger, listing store,
// notification hub, and the optional metrics endpoint. It is built once
// at startup and handed to the commands that need it.
type App struct {
	cfg        config.Config
	logger     *zap.Logger
	store      storage.Store
	hub        *notify.Hub
	metricsSrv *http.Server
}

// New initializes all services from the configuration. It fails fast
// when a configured service cannot be reached.
func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := logging.New(cfg.Logging.Development)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	logger.Info("Initializing application services")

	var store storage.Store
	if cfg.DB.Enabled {
		logger.Info("Connecting to PostgreSQL")
		store, err = storage.NewPostgresStore(ctx, storage.PostgresConfig{DSN: cfg.DB.DSN})
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
	} else {
		logger.Info("Using in-memory listing store; listings will not survive restarts")
		store = storage.NewMemoryStore()
	}

	sinks := []notify.Sink{notify.NewLogSink(logger)}
	if cfg.Telegram.Enabled {
		tg, err := notify.NewTelegramSink(cfg.Telegram.Token, cfg.Telegram.ChatID, logger)
		if err != nil {
			store.Close()
			return nil, fmt.Errorf("init telegram sink: %w", err)
		}
		sinks = append(sinks, tg)
	}
	hub := notify.NewHub(notify.Config{Logger: logger}, sinks...)

	a := &App{cfg: cfg, logger: logger, store: store, hub: hub}
	if cfg.Metrics.Enabled {
		a.metricsSrv = startMetricsServer(cfg.Metrics.Addr, logger)
	}
	return a, nil
}

// Config returns the loaded configuration.
func (a *App) Config() config.Config { return a.cfg }

// Logger returns the shared zap logger instance.
func (a *App) Logger() *zap.Logger { return a.logger }

// Store exposes the configured listing store.
func (a *App) Store() storage.Store { return a.store }

// Notifier returns the notification hub.
func (a *App) Notifier() *notify.Hub { return a.hub }

// Close shuts services down in reverse initialization order, draining
// pending notifications first.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if a.metricsSrv != nil {
		if err := a.metricsSrv.Shutdown(ctx); err != nil {
			a.logger.Warn("Metrics server shutdown failed", zap.Error(err))
		}
	}
	if err := a.hub.Close(ctx); err != nil {
		a.logger.Warn("Notification hub close failed", zap.Error(err))
	}
	a.store.Close()
	_ = a.logger.Sync()
}

func startMetricsServer(addr string, logger *zap.Logger) *http.Server {
	metrics.Init()
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Info("Serving Prometheus metrics", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Metrics server failed", zap.Error(err))
		}
	}()
	return srv
}
