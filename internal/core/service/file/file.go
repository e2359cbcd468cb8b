package file

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/config"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/integrity"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/placement"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/splitter"
)

type fileService struct {
	uow      port.UnitOfWork
	registry *placement.Registry
	strategy *placement.Strategy
	splitter *splitter.Splitter
	verifier *integrity.Engine
	relay    port.EventRelay
	cache    port.FileCache
	gate     *domain.CompletionGate
	cfg      config.ChunkingConfig
	logger   *slog.Logger
}

// NewFileService creates the chunk lifecycle service. cache may be nil when no
// cache tier is configured. gate is shared with the health monitor so both
// serialize completion re-checks per file.
func NewFileService(
	uow port.UnitOfWork,
	registry *placement.Registry,
	strategy *placement.Strategy,
	split *splitter.Splitter,
	verifier *integrity.Engine,
	relay port.EventRelay,
	cache port.FileCache,
	gate *domain.CompletionGate,
	cfg config.ChunkingConfig,
	logger *slog.Logger,
) port.FileService {
	return &fileService{
		uow:      uow,
		registry: registry,
		strategy: strategy,
		splitter: split,
		verifier: verifier,
		relay:    relay,
		cache:    cache,
		gate:     gate,
		cfg:      cfg,
		logger:   logger,
	}
}

// lookupFile reads file metadata through the cache when one is configured.
// Cache failures degrade to the repository, they never fail the operation.
func (f *fileService) lookupFile(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	if f.cache != nil {
		cached, err := f.cache.GetFile(ctx, id)
		if err == nil && cached != nil {
			return cached, nil
		}
		if err != nil && !errors.Is(err, domain.ErrFileNotFound) {
			f.logger.Warn("file cache read failed", "file_id", id, "error", err)
		}
	}

	found, err := f.uow.FileRepo().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if f.cache != nil {
		if err := f.cache.SetFile(ctx, found); err != nil {
			f.logger.Warn("file cache write failed", "file_id", id, "error", err)
		}
	}
	return found, nil
}

func (f *fileService) invalidateCache(ctx context.Context, id uuid.UUID) {
	if f.cache == nil {
		return
	}
	if err := f.cache.Invalidate(ctx, id); err != nil {
		f.logger.Warn("file cache invalidation failed", "file_id", id, "error", err)
	}
}

// acquireSlot waits for a free operation slot at the provider, polling under
// the caller's context.
func (f *fileService) acquireSlot(ctx context.Context, providerID uuid.UUID) error {
	for {
		if f.registry.Acquire(providerID) {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
}
