package port

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// ChunkRepository is an interface to define chunk metadata persistence
type ChunkRepository interface {
	Create(ctx context.Context, chunk *domain.Chunk) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Chunk, error)
	FindByFileID(ctx context.Context, fileID uuid.UUID) ([]*domain.Chunk, error)
	FindByFileIDAndStatus(ctx context.Context, fileID uuid.UUID, status domain.ChunkStatus) ([]*domain.Chunk, error)
	AllStored(ctx context.Context, fileID uuid.UUID) (bool, error)
	CountByFileID(ctx context.Context, fileID uuid.UUID) (int, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ChunkStatus) error
	UpdateProvider(ctx context.Context, id uuid.UUID, providerID uuid.UUID) error
	FindByStatus(ctx context.Context, status domain.ChunkStatus) ([]*domain.Chunk, error)
	FindStale(ctx context.Context, updatedBefore time.Time) ([]*domain.Chunk, error)
	CountByStatus(ctx context.Context) (map[domain.ChunkStatus]int, error)
}
