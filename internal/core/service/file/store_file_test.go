package file_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"math/rand"
	"testing"

	"github.com/ozalgun/storage-file-app-sub001/internal/adapters/eventbroker"
	"github.com/ozalgun/storage-file-app-sub001/internal/adapters/repository"
	"github.com/ozalgun/storage-file-app-sub001/internal/adapters/storage"
	"github.com/ozalgun/storage-file-app-sub001/internal/config"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/file"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/integrity"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/placement"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/relay"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/splitter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type serviceFixture struct {
	service   port.FileService
	uow       *repository.MockUnitOfWork
	factory   *storage.MockChunkStoreFactory
	publisher *eventbroker.MockPublisher
	registry  *placement.Registry
}

func chunkingConfig() config.ChunkingConfig {
	return config.ChunkingConfig{
		MinFileSize:       1,
		MaxFileSize:       1 << 30,
		MinChunkSize:      1024,
		MaxChunkSize:      4 << 20,
		DefaultChunkSize:  1024,
		MaxChunkCount:     100,
		MaxFileNameLength: 255,
		DefaultRetryCount: 1,
	}
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	uow := repository.NewMockUnitOfWork()
	factory := storage.NewMockChunkStoreFactory()
	publisher := eventbroker.NewMockPublisher()

	providerCfg := config.ProviderConfig{
		MinActiveProviders:      1,
		MaxRegisteredProviders:  16,
		MaxConcurrentOperations: 8,
	}
	registry := placement.NewRegistry(uow.GetProviderRepoMock(), factory, providerCfg, logger)
	strategy := placement.NewStrategy(registry, rand.New(rand.NewSource(1)))
	cfg := chunkingConfig()

	service := file.NewFileService(
		uow, registry, strategy, splitter.New(cfg), integrity.NewEngine(),
		relay.NewRelay(publisher, logger), nil, domain.NewCompletionGate(),
		cfg, logger,
	)
	return &serviceFixture{
		service:   service,
		uow:       uow,
		factory:   factory,
		publisher: publisher,
		registry:  registry,
	}
}

func healthyStoreFor(f *serviceFixture, provider *domain.StorageProvider, chunkSize int64) *storage.MockChunkStore {
	store := storage.NewMockChunkStore()
	f.factory.On("StoreFor", mock.Anything, provider).Return(store, nil)
	store.On("AvailableSpace", mock.Anything).Return(int64(1<<30), nil)
	store.On("Store", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	store.On("Size", mock.Anything, mock.Anything).Return(chunkSize, nil)
	return store
}

func TestFileService_StoreFile_Success(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newServiceFixture(t)

	providerA := domain.NewStorageProvider("fs-a", domain.ProviderKindFileSystem, "/tmp/a")
	providerB := domain.NewStorageProvider("fs-b", domain.ProviderKindFileSystem, "/tmp/b")
	f.uow.GetProviderRepoMock().On("FindActive", ctx).
		Return([]*domain.StorageProvider{providerA, providerB}, nil)
	healthyStoreFor(f, providerA, 1024)
	healthyStoreFor(f, providerB, 1024)

	f.uow.On("Execute", ctx, mock.Anything).Return(nil)
	f.uow.GetFileRepoMock().On("Create", ctx, mock.Anything).Return(nil)
	f.uow.GetFileRepoMock().On("UpdateStatus", ctx, mock.Anything, mock.Anything).Return(nil)
	f.uow.GetChunkRepoMock().On("Create", ctx, mock.Anything).Return(nil)
	f.uow.GetChunkRepoMock().On("UpdateProvider", ctx, mock.Anything, mock.Anything).Return(nil)
	f.uow.GetChunkRepoMock().On("UpdateStatus", ctx, mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	source := make([]byte, 2048)
	rand.New(rand.NewSource(3)).Read(source)

	// Act
	result, err := f.service.StoreFile(ctx, "data.bin", "application/octet-stream", 2048, bytes.NewReader(source))

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 2, result.ChunkCount)
	assert.Equal(t, domain.FileStatusAvailable, result.Status)
	f.uow.GetFileRepoMock().AssertCalled(t, "UpdateStatus", ctx, result.FileID, domain.FileStatusAvailable)
	// Two file transitions before distribution, then per chunk
	// processing/storing/stored, then the completion event.
	assert.Len(t, f.publisher.Calls, 9)
}

func TestFileService_StoreFile_DeclaredSizeMismatch(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newServiceFixture(t)

	// Act: declared 4096 bytes, reader carries 100
	_, err := f.service.StoreFile(ctx, "data.bin", "", 4096, bytes.NewReader(make([]byte, 100)))

	// Assert
	assert.ErrorIs(t, err, domain.ErrSizeMismatch)
	f.uow.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}

func TestFileService_StoreFile_ValidationFailsBeforeSplit(t *testing.T) {
	ctx := context.Background()
	f := newServiceFixture(t)

	_, err := f.service.StoreFile(ctx, "", "", 100, bytes.NewReader(nil))

	assert.ErrorIs(t, err, domain.ErrFileNameInvalid)
}

func TestFileService_StoreFile_NoActiveProviders(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newServiceFixture(t)
	f.uow.GetProviderRepoMock().On("FindActive", ctx).Return([]*domain.StorageProvider{}, nil)

	// Act
	_, err := f.service.StoreFile(ctx, "data.bin", "", 2048, bytes.NewReader(make([]byte, 2048)))

	// Assert
	assert.ErrorIs(t, err, domain.ErrNoActiveProviders)
}

func TestFileService_StoreFile_RetriesOnAnotherProvider(t *testing.T) {
	// Arrange: one provider rejects every write, the other accepts. With a
	// single retry per chunk, the file only completes if retries never land
	// back on the provider that just failed.
	ctx := context.Background()
	f := newServiceFixture(t)

	flaky := domain.NewStorageProvider("fs-flaky", domain.ProviderKindFileSystem, "/tmp/flaky")
	steady := domain.NewStorageProvider("fs-steady", domain.ProviderKindFileSystem, "/tmp/steady")
	f.uow.GetProviderRepoMock().On("FindActive", ctx).
		Return([]*domain.StorageProvider{flaky, steady}, nil)

	flakyStore := storage.NewMockChunkStore()
	f.factory.On("StoreFor", mock.Anything, flaky).Return(flakyStore, nil)
	flakyStore.On("AvailableSpace", mock.Anything).Return(int64(1<<30), nil)
	flakyStore.On("Store", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)
	healthyStoreFor(f, steady, 1024)

	f.uow.On("Execute", ctx, mock.Anything).Return(nil)
	f.uow.GetFileRepoMock().On("Create", ctx, mock.Anything).Return(nil)
	f.uow.GetFileRepoMock().On("UpdateStatus", ctx, mock.Anything, mock.Anything).Return(nil)
	f.uow.GetChunkRepoMock().On("Create", ctx, mock.Anything).Return(nil)
	f.uow.GetChunkRepoMock().On("UpdateProvider", ctx, mock.Anything, mock.Anything).Return(nil)
	f.uow.GetChunkRepoMock().On("UpdateStatus", ctx, mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	// Act
	result, err := f.service.StoreFile(ctx, "data.bin", "", 8192, bytes.NewReader(make([]byte, 8192)))

	// Assert: every chunk ends up stored, none failed
	require.NoError(t, err)
	assert.Equal(t, 8, result.ChunkCount)
	assert.Equal(t, domain.FileStatusAvailable, result.Status)
	f.uow.GetChunkRepoMock().AssertNotCalled(t, "UpdateStatus", ctx, mock.Anything, domain.ChunkStatusFailed)
	f.uow.GetFileRepoMock().AssertCalled(t, "UpdateStatus", ctx, result.FileID, domain.FileStatusAvailable)
}

func TestFileService_StoreFile_AllWritesFailFailsFile(t *testing.T) {
	// Arrange
	ctx := context.Background()
	f := newServiceFixture(t)

	provider := domain.NewStorageProvider("fs-a", domain.ProviderKindFileSystem, "/tmp/a")
	f.uow.GetProviderRepoMock().On("FindActive", ctx).
		Return([]*domain.StorageProvider{provider}, nil)

	store := storage.NewMockChunkStore()
	f.factory.On("StoreFor", mock.Anything, provider).Return(store, nil)
	store.On("AvailableSpace", mock.Anything).Return(int64(1<<30), nil)
	store.On("Store", mock.Anything, mock.Anything, mock.Anything).Return(assert.AnError)

	f.uow.On("Execute", ctx, mock.Anything).Return(nil)
	f.uow.GetFileRepoMock().On("Create", ctx, mock.Anything).Return(nil)
	f.uow.GetFileRepoMock().On("UpdateStatus", ctx, mock.Anything, mock.Anything).Return(nil)
	f.uow.GetChunkRepoMock().On("Create", ctx, mock.Anything).Return(nil)
	f.uow.GetChunkRepoMock().On("UpdateProvider", ctx, mock.Anything, mock.Anything).Return(nil)
	f.uow.GetChunkRepoMock().On("UpdateStatus", ctx, mock.Anything, mock.Anything).Return(nil)
	f.publisher.On("Publish", mock.Anything, mock.Anything).Return(nil)

	// Act
	result, err := f.service.StoreFile(ctx, "data.bin", "", 2048, bytes.NewReader(make([]byte, 2048)))

	// Assert: both chunks failed, so the file fails too
	require.NoError(t, err)
	assert.Equal(t, domain.FileStatusFailed, result.Status)
	f.uow.GetChunkRepoMock().AssertCalled(t, "UpdateStatus", ctx, mock.Anything, domain.ChunkStatusFailed)
	f.uow.GetFileRepoMock().AssertCalled(t, "UpdateStatus", ctx, result.FileID, domain.FileStatusFailed)
}
