package domain

import (
	"time"

	"github.com/google/uuid"
)

// ProviderKind identifies the backend implementation behind a storage provider.
type ProviderKind string

const (
	ProviderKindFileSystem ProviderKind = "filesystem"
	ProviderKindNetwork    ProviderKind = "network"
	ProviderKindRelational ProviderKind = "relational"
	ProviderKindObject     ProviderKind = "object"
)

// PlacementPriority returns the fixed kind-priority ladder used by placement
// when load is otherwise equal. Lower is preferred.
func (k ProviderKind) PlacementPriority() int {
	switch k {
	case ProviderKindFileSystem:
		return 0
	case ProviderKindNetwork:
		return 1
	case ProviderKindRelational:
		return 2
	case ProviderKindObject:
		return 3
	default:
		return 4
	}
}

// StorageProvider represents an interchangeable storage backend. Providers are
// referenced by chunks but never owned by a file.
type StorageProvider struct {
	ID         uuid.UUID
	Name       string
	Kind       ProviderKind
	Connection string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewStorageProvider creates an active provider.
func NewStorageProvider(name string, kind ProviderKind, connection string) *StorageProvider {
	now := time.Now().UTC()
	return &StorageProvider{
		ID:         uuid.New(),
		Name:       name,
		Kind:       kind,
		Connection: connection,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
