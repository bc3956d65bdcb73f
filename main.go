package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gomarkov/adapters/postgres"
	"gomarkov/internal"
	"gomarkov/internal/analysis"
	"gomarkov/internal/api"
	"gomarkov/internal/config"
	"gomarkov/internal/errors"
	"gomarkov/internal/metrics"
	"gomarkov/internal/migration"
	"gomarkov/internal/ops"
	"gomarkov/internal/risk"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const shutdownTimeout = 15 * time.Second

// initDatabase connects to PostgreSQL and bootstraps the migrations table
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	migrator := migration.NewRunner(appConfig.Database.Table)
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger := internal.NewLogger(internal.ParseLogLevel(appConfig.LogLevel))

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(registry)

	engine := analysis.NewEngine(analysis.Options{
		Tolerance:     appConfig.Engine.Tolerance,
		MaxIterations: appConfig.Engine.MaxIterations,
		MaxStates:     appConfig.Engine.MaxStates,
		Stress: risk.StressParams{
			Delinquent:    appConfig.Engine.DelinquentFactor,
			Uncollectible: appConfig.Engine.UncollectibleFactor,
		},
	}, logger, m)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := api.NewServer(engine, appConfig, logger, m)

	var pinger ops.Pinger
	if appConfig.Database.Enabled() {
		db, err := initDatabase(ctx, appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		repo, err := postgres.NewObservationRepository(db, appConfig.Database.Table)
		if err != nil {
			log.Fatalf("Failed to create observation repository: %v", err)
		}
		server.WithObservationRepository(repo)
		pinger = db
		logger.Info("Portfolio routes enabled (table %s)", appConfig.Database.Table)
	}

	errCh := make(chan error, 2)
	go func() { errCh <- server.Start() }()

	var opsServer *ops.Server
	if appConfig.Ops.Enabled {
		opsServer = ops.NewServer(appConfig.Ops, registry, pinger, logger)
		go func() { errCh <- opsServer.Start() }()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutting down")
	case err := <-errCh:
		if err != nil {
			logger.Error("Server failed: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("API shutdown: %v", err)
	}
	if opsServer != nil {
		if err := opsServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("Ops shutdown: %v", err)
		}
	}
}
