package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openurban/quarterhour/internal/api"
	"github.com/openurban/quarterhour/internal/config"
	"github.com/openurban/quarterhour/internal/events"
	"github.com/openurban/quarterhour/internal/scoring"
	"github.com/openurban/quarterhour/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Zone source
	src, err := newStore(ctx, cfg)
	if err != nil {
		logger.Error("failed to open zone source", "error", err)
		os.Exit(1)
	}
	defer src.Close()

	// Loader errors are fatal: no scores, no map data.
	coll, err := src.LoadZones(ctx)
	if err != nil {
		logger.Error("failed to load zones", "error", err)
		os.Exit(1)
	}
	logger.Info("zones loaded", "source", cfg.Zones.Source, "zones", len(coll))

	weights := defaultWeights(cfg)
	if err := weights.Validate(); err != nil {
		logger.Error("invalid default weights", "error", err)
		os.Exit(1)
	}

	// Events (optional)
	var eventsClient events.Client
	if cfg.Events.URL != "" {
		ec, err := events.NewNATSClient(cfg.Events.URL)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			eventsClient = ec
			defer ec.Close()
			logger.Info("connected to nats")
		}
	}

	// Scoring engine, bound once to the startup collection
	engine := scoring.NewEngine(coll, logger)
	app := api.NewApp(engine, weights, src, eventsClient, logger)

	// API server
	router := api.NewRouter(app, cfg.Server.AdminToken, logger)
	apiServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	// Metrics server
	metricsServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.MetricsPort),
		Handler: api.NewMetricsRouter(),
	}

	go func() {
		logger.Info("API server starting", "port", cfg.Server.Port)
		if err := apiServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("API server error", "error", err)
		}
	}()

	go func() {
		logger.Info("metrics server starting", "port", cfg.Server.MetricsPort)
		if err := metricsServer.ListenAndServe(); err != http.ErrServerClosed {
			logger.Error("metrics server error", "error", err)
		}
	}()

	// Graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	logger.Info("shutting down...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	_ = apiServer.Shutdown(shutdownCtx)
	_ = metricsServer.Shutdown(shutdownCtx)

	logger.Info("shutdown complete")
}

func newStore(ctx context.Context, cfg *config.Config) (store.Store, error) {
	switch cfg.Zones.Source {
	case "postgres":
		return store.NewPostgresStore(ctx, cfg.Zones.DatabaseURL)
	default:
		return store.NewFileStore(cfg.Zones.Path), nil
	}
}

func defaultWeights(cfg *config.Config) scoring.WeightSet {
	dw := cfg.Scoring.DefaultWeights
	return scoring.WeightSet{
		Amenity:   dw.Amenity,
		Bank:      dw.Bank,
		Food:      dw.Food,
		Health:    dw.Health,
		Shop:      dw.Shop,
		Sport:     dw.Sport,
		Transport: dw.Transport,
		Greenery:  dw.Greenery,
	}
}

func newLogger(lc config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch lc.Level {
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
	if lc.Format == "text" {
		return slog.New(slog.NewTextHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, opts))
}
