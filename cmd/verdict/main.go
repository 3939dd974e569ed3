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

	"github.com/patchline/verdict/internal/api"
	"github.com/patchline/verdict/internal/config"
	"github.com/patchline/verdict/internal/decision"
	"github.com/patchline/verdict/internal/events"
	"github.com/patchline/verdict/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Database (optional: the board stays fully usable in memory without it)
	var db store.Store
	if cfg.Database.URL != "" {
		pg, err := store.NewPostgresStore(ctx, cfg.Database.URL)
		if err != nil {
			logger.Warn("failed to connect to database, running without persistence", "error", err)
		} else {
			db = pg
			defer pg.Close()
			logger.Info("connected to database")
		}
	}

	// Event bus (optional)
	var bus events.Client
	if cfg.NATS.URL != "" {
		ec, err := events.NewNATSClient(ctx, cfg.NATS.URL, logger)
		if err != nil {
			logger.Warn("failed to connect to nats, running without events", "error", err)
		} else {
			bus = ec
			defer ec.Close()
			logger.Info("connected to nats")
		}
	}

	// Load and repair the persisted board
	board, loadStatus := decision.Load(ctx, db, cfg.Board.Key, logger)
	if loadStatus.State == decision.LoadRepaired || loadStatus.State == decision.LoadReset {
		api.BoardRepairs.Inc()
	}
	logger.Info("board loaded", "key", cfg.Board.Key, "state", loadStatus.State)

	svc := decision.New(board, loadStatus, decision.Deps{
		Store:     db,
		BoardKey:  cfg.Board.Key,
		Events:    bus,
		Logger:    logger,
		SaveDelay: cfg.AutosaveDelay(),
	})
	defer svc.Close()

	// API server
	router := api.NewRouter(svc, cfg.Server.AdminToken, logger)
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

	// Graceful shutdown: svc.Close (deferred) flushes any pending save
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
