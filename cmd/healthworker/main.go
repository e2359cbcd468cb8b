package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	natsbroker "github.com/ozalgun/storage-file-app-sub001/internal/adapters/eventbroker/nats"
	"github.com/ozalgun/storage-file-app-sub001/internal/adapters/repository/postgres"
	"github.com/ozalgun/storage-file-app-sub001/internal/adapters/storage"
	"github.com/ozalgun/storage-file-app-sub001/internal/config"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/health"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/integrity"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/placement"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/relay"
)

func main() {

	ctx, stop := signal.NotifyContext(
		context.Background(),
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	logger.Info("db connection established")

	publisher, err := natsbroker.NewNATSPublisher(ctx, cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to init nats publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	storeFactory := storage.NewFactory(cfg.Minio, logger)
	unitOfWork := postgres.NewUnitOfWork(db)
	registry := placement.NewRegistry(postgres.NewSqlProviderRepository(db), storeFactory, cfg.Provider, logger)
	strategy := placement.NewStrategy(registry, rand.New(rand.NewSource(time.Now().UnixNano())))

	healthService := health.NewHealthService(
		unitOfWork, registry, strategy, integrity.NewEngine(),
		relay.NewRelay(publisher, logger), domain.NewCompletionGate(),
		cfg.Health, logger,
	)

	runScanLoop(ctx, healthService, registry, cfg.Health.ScanEvery, logger)
	logger.Info("health worker shutdown complete")
}

// runScanLoop refreshes provider reachability and runs a repair cycle on every
// tick until the context is cancelled.
func runScanLoop(ctx context.Context, service port.HealthService, registry *placement.Registry, every time.Duration, logger *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	logger.Info("health scan loop initialized", "interval", every)

	for {
		select {
		case <-ticker.C:
			logger.Info("health scan starting")

			if err := registry.RefreshHealth(ctx); err != nil {
				logger.Error("failed to refresh provider health", "error", err)
			}

			result, err := service.ScanAndRepair(ctx)
			if err != nil {
				logger.Error("failed to run repair cycle", "error", err)
				continue
			}
			logger.Info("health scan completed",
				"scanned", result.ChunksScanned,
				"replicated", result.ChunksReplicated,
				"errors", len(result.Errors),
			)
			for _, msg := range result.Errors {
				logger.Warn("repair error", "error", msg)
			}
		case <-ctx.Done():
			logger.Info("health scan loop stopped")
			return
		}
	}
}

func initDB(cfg config.DatabaseConfig) (*sql.DB, error) {

	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host,
		cfg.Port,
		cfg.User,
		cfg.Password,
		cfg.Name,
		cfg.SSLMode,
	)
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}
