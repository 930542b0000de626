package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/noctalia/sleepsense/api"
	"github.com/noctalia/sleepsense/internal/events"
	"github.com/noctalia/sleepsense/internal/logger"
	"github.com/noctalia/sleepsense/internal/modelclient"
	"github.com/noctalia/sleepsense/internal/orchestrator"
	"github.com/noctalia/sleepsense/internal/recommend"
	"github.com/noctalia/sleepsense/internal/resilience"
	"github.com/noctalia/sleepsense/pkg/config"
	"github.com/noctalia/sleepsense/pkg/database"
	"github.com/noctalia/sleepsense/pkg/database/queries"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	var db *database.DB
	if cfg.Database.Enabled {
		db, err = database.New(cfg.Database.ToDBConfig())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		logger.Info("Database connection established")
	} else {
		logger.Warn("Database disabled, predictions will not be persisted")
	}

	if *migrate {
		if db == nil {
			return fmt.Errorf("cannot migrate with database disabled")
		}
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		logger.Info("Running database migrations")
		migrator := database.NewMigrator(db)
		if err := migrator.Run(ctx); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		logger.Info("Migrations completed successfully")
		return nil
	}

	bus := events.NewEventBus(cfg.Events.BufferSize)
	defer bus.Close()
	publisher := events.NewPublisher(bus)

	gateway := modelclient.NewGateway(modelclient.GatewayConfig{
		Client: modelclient.NewHTTPClient(modelclient.HTTPClientConfig{
			BaseURL:        cfg.Model.URL,
			HealthTimeout:  cfg.Model.HealthTimeout,
			PredictTimeout: cfg.Model.PredictTimeout,
		}),
		BreakerMaxFailures: cfg.Model.CircuitBreaker.MaxFailures,
		BreakerTimeout:     cfg.Model.CircuitBreaker.Timeout,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
		},
		Publisher: publisher,
	})
	defer gateway.Close()

	var textClient recommend.TextClient
	if cfg.Recommender.APIKey != "" {
		textClient = recommend.NewGeminiClient(recommend.GeminiConfig{
			APIKey:  cfg.Recommender.APIKey,
			Model:   cfg.Recommender.Model,
			BaseURL: cfg.Recommender.BaseURL,
			Timeout: cfg.Recommender.Timeout,
		})
	} else {
		logger.Warn("No recommender API key configured, using rule-based recommendations")
	}

	generator := recommend.NewGenerator(recommend.GeneratorConfig{
		Client: textClient,
		Cache:  recommend.NewFIFOCache(cfg.Recommender.CacheSize),
		Retry: resilience.RetryPolicy{
			MaxAttempts:         cfg.Recommender.MaxAttempts,
			BaseDelay:           cfg.Recommender.BaseDelay,
			RateLimitMultiplier: cfg.Recommender.RateLimitMultiplier,
			IsRateLimit:         recommend.IsRateLimit,
		},
		Publisher: publisher,
	})

	var records orchestrator.RecordStore
	if db != nil {
		records = queries.NewPredictionRepository(db.DB)
	}

	predictor := orchestrator.NewService(orchestrator.Config{
		Gateway:     gateway,
		Recommender: generator,
		Records:     records,
		Publisher:   publisher,
	})

	server := api.NewServer(api.ServerConfig{
		Mode:      cfg.App.Mode,
		API:       cfg.API,
		WebSocket: cfg.WebSocket,
		DB:        db,
		Predictor: predictor,
		EventBus:  bus,
	})

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	}

	shutdownTimeout := cfg.App.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown error: %w", err)
	}

	logger.Info("Server stopped gracefully")
	return nil
}
