package placement_test

import (
	"context"
	"math/rand"
	"testing"

	"github.com/ozalgun/storage-file-app-sub001/internal/adapters/repository"
	"github.com/ozalgun/storage-file-app-sub001/internal/adapters/storage"
	"github.com/ozalgun/storage-file-app-sub001/internal/config"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/placement"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newStrategy(t *testing.T, cfg config.ProviderConfig) (*placement.Strategy, *placement.Registry, *storage.MockChunkStoreFactory) {
	t.Helper()
	providerRepo := repository.NewMockProviderRepository()
	factory := storage.NewMockChunkStoreFactory()
	registry := placement.NewRegistry(providerRepo, factory, cfg, discardLogger())
	strategy := placement.NewStrategy(registry, rand.New(rand.NewSource(1)))
	return strategy, registry, factory
}

func TestStrategy_SelectProvider_NoCandidates(t *testing.T) {
	strategy, _, _ := newStrategy(t, testProviderConfig())

	_, err := strategy.SelectProvider(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrNoActiveProviders)
}

func TestStrategy_SelectProvider_PrefersLowerLoad(t *testing.T) {
	// Arrange
	strategy, registry, _ := newStrategy(t, testProviderConfig())
	busy := domain.NewStorageProvider("busy", domain.ProviderKindFileSystem, "/tmp/busy")
	idle := domain.NewStorageProvider("idle", domain.ProviderKindObject, "bucket")
	require.True(t, registry.Acquire(busy.ID))

	// Act: loaded provider must lose regardless of kind priority
	for i := 0; i < 20; i++ {
		selected, err := strategy.SelectProvider(context.Background(), []*domain.StorageProvider{busy, idle})
		require.NoError(t, err)
		assert.Equal(t, idle.ID, selected.ID)
	}
}

func TestStrategy_SelectProvider_KindLadderBreaksTies(t *testing.T) {
	// Arrange
	strategy, _, _ := newStrategy(t, testProviderConfig())
	object := domain.NewStorageProvider("object", domain.ProviderKindObject, "bucket")
	filesystem := domain.NewStorageProvider("fs", domain.ProviderKindFileSystem, "/tmp/fs")
	network := domain.NewStorageProvider("share", domain.ProviderKindNetwork, "/mnt/share")

	// Act: with zero load everywhere the ladder always picks filesystem
	for i := 0; i < 20; i++ {
		selected, err := strategy.SelectProvider(context.Background(), []*domain.StorageProvider{object, network, filesystem})
		require.NoError(t, err)
		assert.Equal(t, filesystem.ID, selected.ID)
	}
}

func TestStrategy_SelectProvider_SkipsProvidersAtCeiling(t *testing.T) {
	// Arrange
	cfg := testProviderConfig()
	cfg.MaxConcurrentOperations = 1
	strategy, registry, _ := newStrategy(t, cfg)
	full := domain.NewStorageProvider("full", domain.ProviderKindFileSystem, "/tmp/full")
	free := domain.NewStorageProvider("free", domain.ProviderKindObject, "bucket")
	require.True(t, registry.Acquire(full.ID))

	// Act
	selected, err := strategy.SelectProvider(context.Background(), []*domain.StorageProvider{full, free})

	// Assert
	require.NoError(t, err)
	assert.Equal(t, free.ID, selected.ID)
}

func TestStrategy_SelectProvider_AllAtCeiling(t *testing.T) {
	// Arrange
	cfg := testProviderConfig()
	cfg.MaxConcurrentOperations = 1
	strategy, registry, _ := newStrategy(t, cfg)
	only := domain.NewStorageProvider("only", domain.ProviderKindFileSystem, "/tmp/only")
	require.True(t, registry.Acquire(only.ID))

	// Act
	_, err := strategy.SelectProvider(context.Background(), []*domain.StorageProvider{only})

	// Assert
	assert.ErrorIs(t, err, domain.ErrProvidersOverloaded)
}

func TestStrategy_SelectPool_FiltersByBalancedShare(t *testing.T) {
	// Arrange
	strategy, _, factory := newStrategy(t, testProviderConfig())
	roomy := domain.NewStorageProvider("roomy", domain.ProviderKindFileSystem, "/tmp/roomy")
	cramped := domain.NewStorageProvider("cramped", domain.ProviderKindFileSystem, "/tmp/cramped")

	roomyStore := storage.NewMockChunkStore()
	crampedStore := storage.NewMockChunkStore()
	factory.On("StoreFor", mock.Anything, roomy).Return(roomyStore, nil)
	factory.On("StoreFor", mock.Anything, cramped).Return(crampedStore, nil)
	// Balanced share of a 1000-byte file across two providers is 500 bytes.
	roomyStore.On("AvailableSpace", mock.Anything).Return(int64(10_000), nil)
	crampedStore.On("AvailableSpace", mock.Anything).Return(int64(100), nil)

	// Act
	pool, err := strategy.SelectPool(context.Background(), 1000, []*domain.StorageProvider{roomy, cramped})

	// Assert
	require.NoError(t, err)
	require.Len(t, pool, 1)
	assert.Equal(t, roomy.ID, pool[0].ID)
}

func TestStrategy_SelectPool_NoProviderHasRoom(t *testing.T) {
	// Arrange
	strategy, _, factory := newStrategy(t, testProviderConfig())
	tiny := domain.NewStorageProvider("tiny", domain.ProviderKindFileSystem, "/tmp/tiny")
	tinyStore := storage.NewMockChunkStore()
	factory.On("StoreFor", mock.Anything, tiny).Return(tinyStore, nil)
	tinyStore.On("AvailableSpace", mock.Anything).Return(int64(10), nil)

	// Act
	_, err := strategy.SelectPool(context.Background(), 1000, []*domain.StorageProvider{tiny})

	// Assert
	assert.ErrorIs(t, err, domain.ErrNoActiveProviders)
}

func TestStrategy_SelectProvider_SpreadsEqualCandidates(t *testing.T) {
	// Arrange: same kind, zero load. Shuffling must not fixate on one provider.
	strategy, _, _ := newStrategy(t, testProviderConfig())
	a := domain.NewStorageProvider("a", domain.ProviderKindFileSystem, "/tmp/a")
	b := domain.NewStorageProvider("b", domain.ProviderKindFileSystem, "/tmp/b")

	// Act
	seen := map[string]int{}
	for i := 0; i < 100; i++ {
		selected, err := strategy.SelectProvider(context.Background(), []*domain.StorageProvider{a, b})
		require.NoError(t, err)
		seen[selected.Name]++
	}

	// Assert
	assert.Greater(t, seen["a"], 10)
	assert.Greater(t, seen["b"], 10)
}
