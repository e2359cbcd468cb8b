package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// ProviderRepository is an interface to define storage provider persistence
type ProviderRepository interface {
	Create(ctx context.Context, provider *domain.StorageProvider) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.StorageProvider, error)
	FindByName(ctx context.Context, name string) (*domain.StorageProvider, error)
	FindActive(ctx context.Context) ([]*domain.StorageProvider, error)
	List(ctx context.Context) ([]*domain.StorageProvider, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	Count(ctx context.Context) (int, error)
}
