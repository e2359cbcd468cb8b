package port

import (
	"context"

	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// ChunkStore is the flat capability contract every storage backend implements.
// Retrieve returns domain.ErrChunkNotFound for a missing key.
type ChunkStore interface {
	Store(ctx context.Context, key string, data []byte) error
	Retrieve(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
	Size(ctx context.Context, key string) (int64, error)
	TestConnection(ctx context.Context) error
	AvailableSpace(ctx context.Context) (int64, error)
}

// ChunkStoreFactory resolves the ChunkStore implementation for a provider by
// its kind. Returns domain.ErrUnknownProviderKind for unsupported kinds.
type ChunkStoreFactory interface {
	StoreFor(ctx context.Context, provider *domain.StorageProvider) (ChunkStore, error)
}
