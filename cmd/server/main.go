package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/irynahryshanovich/automation-suite/internal/api"
	"github.com/irynahryshanovich/automation-suite/internal/auth"
	"github.com/irynahryshanovich/automation-suite/internal/automation"
	"github.com/irynahryshanovich/automation-suite/internal/config"
	"github.com/irynahryshanovich/automation-suite/internal/database"
	"github.com/irynahryshanovich/automation-suite/internal/datasource"
	"github.com/irynahryshanovich/automation-suite/internal/logging"
	"github.com/irynahryshanovich/automation-suite/internal/metrics"
	"github.com/irynahryshanovich/automation-suite/internal/scheduler"
	"github.com/irynahryshanovich/automation-suite/internal/server"
	_ "github.com/lib/pq"
	"log/slog"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg.Logging)
	if err != nil {
		slog.New(slog.NewJSONHandler(os.Stdout, nil)).Error("failed to init logger", "error", err)
		os.Exit(1)
	}

	logger.Info("starting automation suite")

	ctx := context.Background()

	logger.Info("connecting to database")
	dbConfig := database.DefaultConfig()
	dbConfig.URL = cfg.Database.URL
	db, err := database.Connect(ctx, dbConfig)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("database connected")

	if err := database.RunMigrations(db, "./migrations", logger); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	logRepo := database.NewLogRepository(db)
	stateRepo := database.NewStateRepository(db)

	if err := stateRepo.SeedDefaults(ctx, cfg.Automation.Channels); err != nil {
		logger.Error("failed to seed channel states", "error", err)
		os.Exit(1)
	}

	collector, err := metrics.NewCollector()
	if err != nil {
		logger.Error("failed to init metrics", "error", err)
		os.Exit(1)
	}

	weather := datasource.NewNOAAWeatherClient(cfg.Automation.DefaultCity, cfg.Automation.WeatherContact, logRepo, collector, logger)
	sports := datasource.NewSportsDBClient(cfg.Automation.SportsAPIKey, logRepo, collector, logger)

	runner := automation.NewRunner(weather, sports, logRepo, stateRepo, cfg.Automation.DefaultCity, collector, logger)

	sched := scheduler.New(runner, cfg.Automation.CadenceMinutes, logger)
	sched.Start(ctx)
	logger.Info("scheduler started", "cadence_minutes", cfg.Automation.CadenceMinutes)

	mux := http.NewServeMux()

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := database.HealthCheck(r.Context(), db); err != nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"degraded"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	mux.Handle("/metrics", collector.Handler())

	authConfig := auth.LoadConfigFromEnv()
	logger.Info("auth configured", "jwt_secret_set", authConfig.JWTSecret != "change-this-secret")

	handler := api.NewHandler(logRepo, stateRepo, sched, cfg.Automation.Channels, cfg.Automation.DefaultCity, logger)
	api.SetupRoutes(mux, handler, authConfig, logger)

	srv := server.New(cfg.Server, logger, collector.InstrumentHandler(mux))

	go func() {
		if err := srv.Start(); err != nil {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	logger.Info("automation suite started")
	logger.Info("API available", "url", fmt.Sprintf("http://localhost:%s", cfg.Server.Port))

	waitForSignal(logger)

	logger.Info("shutting down")
	sched.Stop()
	if err := srv.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown error", "error", err)
	}
	logger.Info("shutdown complete")
}

func waitForSignal(logger *slog.Logger) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	sig := <-c
	logger.Info("received signal", "signal", sig.String())
	signal.Stop(c)
	close(c)
}
