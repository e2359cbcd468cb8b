package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	_ "github.com/lib/pq"
	"github.com/ozalgun/storage-file-app-sub001/internal/adapters/cache/redis"
	natsbroker "github.com/ozalgun/storage-file-app-sub001/internal/adapters/eventbroker/nats"
	chirouter "github.com/ozalgun/storage-file-app-sub001/internal/adapters/handlers/http/chi"
	filehandler "github.com/ozalgun/storage-file-app-sub001/internal/adapters/handlers/http/chi/v1/file"
	healthhandler "github.com/ozalgun/storage-file-app-sub001/internal/adapters/handlers/http/chi/v1/health"
	"github.com/ozalgun/storage-file-app-sub001/internal/adapters/repository/postgres"
	"github.com/ozalgun/storage-file-app-sub001/internal/adapters/storage"
	"github.com/ozalgun/storage-file-app-sub001/internal/config"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/file"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/health"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/integrity"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/placement"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/relay"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/splitter"
	"github.com/ozalgun/storage-file-app-sub001/internal/tracing"
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

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing, logger)
	if err != nil {
		logger.Error("failed to init tracing", "error", err)
		os.Exit(1)
	}

	db, err := initDB(cfg.Database)
	if err != nil {
		logger.Error("failed to init database", "error", err)
		os.Exit(1)
	}
	defer func(db *sql.DB) {
		err := db.Close()
		if err != nil {
			logger.Error("failed to close database", "error", err)
			os.Exit(1)
		}
	}(db)
	logger.Info("db connection established")

	//event transport
	publisher, err := natsbroker.NewNATSPublisher(ctx, cfg.NATS, logger)
	if err != nil {
		logger.Error("failed to init nats publisher", "error", err)
		os.Exit(1)
	}
	defer publisher.Close()

	//cache is optional: a missing redis degrades reads to the repository
	var fileCache port.FileCache
	cache, err := redis.NewCache(ctx, cfg.Redis)
	if err != nil {
		logger.Warn("file cache unavailable, running without it", "error", err)
	} else {
		fileCache = cache
		defer cache.Close()
	}

	//storage and placement
	storeFactory := storage.NewFactory(cfg.Minio, logger)
	unitOfWork := postgres.NewUnitOfWork(db)
	registry := placement.NewRegistry(postgres.NewSqlProviderRepository(db), storeFactory, cfg.Provider, logger)
	strategy := placement.NewStrategy(registry, rand.New(rand.NewSource(time.Now().UnixNano())))

	//services
	eventRelay := relay.NewRelay(publisher, logger)
	gate := domain.NewCompletionGate()
	verifier := integrity.NewEngine()
	fileService := file.NewFileService(
		unitOfWork, registry, strategy, splitter.New(cfg.Chunking), verifier,
		eventRelay, fileCache, gate, cfg.Chunking, logger,
	)
	healthService := health.NewHealthService(
		unitOfWork, registry, strategy, verifier, eventRelay, gate, cfg.Health, logger,
	)

	if err := seedProviders(ctx, registry, cfg.Provider.Seed, cfg.BlobDB.DSN()); err != nil {
		logger.Error("failed to seed providers", "error", err)
		os.Exit(1)
	}

	//http
	fileHandlerV1 := filehandler.NewFileHandlerV1(fileService, cfg.Chunking.MaxFileSize, logger)
	healthHandlerV1 := healthhandler.NewHealthHandlerV1(healthService, logger)

	router := chirouter.NewRouter(logger, fileHandlerV1, healthHandlerV1, cfg.Env.Env)
	server := &http.Server{
		Addr:    fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler: router,
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logger.Info("starting server", "host", cfg.Server.Host, "port", cfg.Server.Port)
		servErr := server.ListenAndServe()
		if servErr != nil && !errors.Is(servErr, http.ErrServerClosed) {
			logger.Error("failed to start server", "error", servErr)
			stop()
		}
	}()

	//wait for context cancel
	<-ctx.Done()
	logger.Info("gracefully shutting down app")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shutdown server", "error", err)
	} else {
		logger.Info("server gracefully shutdown complete")
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		logger.Error("failed to shutdown tracing", "error", err)
	}

	wg.Wait()
	logger.Info("app shutdown complete")

}

// seedProviders registers providers from name|kind|connection entries, once
// per name. A relational entry with an empty connection falls back to the
// configured blob database DSN.
func seedProviders(ctx context.Context, registry *placement.Registry, entries []string, blobDSN string) error {
	for _, entry := range entries {
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, "|", 3)
		if len(parts) != 3 {
			return fmt.Errorf("invalid provider seed entry %q, want name|kind|connection", entry)
		}
		kind := domain.ProviderKind(parts[1])
		switch kind {
		case domain.ProviderKindFileSystem, domain.ProviderKindNetwork,
			domain.ProviderKindRelational, domain.ProviderKindObject:
		default:
			return fmt.Errorf("%w: %s", domain.ErrUnknownProviderKind, parts[1])
		}
		connection := parts[2]
		if connection == "" && kind == domain.ProviderKindRelational {
			connection = blobDSN
		}
		provider := domain.NewStorageProvider(parts[0], kind, connection)
		if err := registry.EnsureRegistered(ctx, provider); err != nil {
			return err
		}
	}
	return nil
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

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenCons)
	db.SetMaxIdleConns(cfg.MaxIdleCons)
	db.SetConnMaxLifetime(cfg.ConMaxLifeTime)

	return db, nil
}
