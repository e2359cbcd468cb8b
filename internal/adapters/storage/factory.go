package storage

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	minioadapter "github.com/ozalgun/storage-file-app-sub001/internal/adapters/storage/minio"
	"github.com/ozalgun/storage-file-app-sub001/internal/config"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

// Factory resolves chunk stores per provider. A provider's Connection string
// is its location: a root directory for filesystem providers, a mount point
// for network providers, a DSN for relational providers, and a bucket name
// for object providers. Stores are built once per provider and reused.
type Factory struct {
	minioCfg config.MinioConfig
	logger   *slog.Logger

	mu     sync.Mutex
	stores map[uuid.UUID]port.ChunkStore
}

func NewFactory(minioCfg config.MinioConfig, logger *slog.Logger) *Factory {
	return &Factory{
		minioCfg: minioCfg,
		logger:   logger,
		stores:   make(map[uuid.UUID]port.ChunkStore),
	}
}

func (f *Factory) StoreFor(ctx context.Context, provider *domain.StorageProvider) (port.ChunkStore, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if store, ok := f.stores[provider.ID]; ok {
		return store, nil
	}

	store, err := f.build(ctx, provider)
	if err != nil {
		return nil, err
	}
	f.stores[provider.ID] = store
	return store, nil
}

func (f *Factory) build(ctx context.Context, provider *domain.StorageProvider) (port.ChunkStore, error) {
	switch provider.Kind {
	case domain.ProviderKindFileSystem:
		return NewFilesystemStore(provider.Connection)
	case domain.ProviderKindNetwork:
		return NewNetshareStore(provider.Connection)
	case domain.ProviderKindRelational:
		return NewMySQLStore(ctx, provider.Connection)
	case domain.ProviderKindObject:
		return minioadapter.NewAdapter(ctx, f.minioCfg, provider.Connection, f.logger)
	default:
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownProviderKind, provider.Kind)
	}
}

var _ port.ChunkStoreFactory = (*Factory)(nil)
