package postgres_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/adapters/repository/postgres"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
	"github.com/stretchr/testify/require"
)

// seedFileAndProvider satisfies the chunk foreign keys.
func seedFileAndProvider(t *testing.T, ctx context.Context, fileRepo port.FileRepository, providerRepo port.ProviderRepository) (*domain.File, *domain.StorageProvider) {
	t.Helper()
	file := domain.NewFile("data.bin", 4096, "file-sum", "application/octet-stream")
	require.NoError(t, fileRepo.Create(ctx, file))
	provider := domain.NewStorageProvider("fs-local", domain.ProviderKindFileSystem, "/var/lib/chunks")
	require.NoError(t, providerRepo.Create(ctx, provider))
	return file, provider
}

func newChunkFor(file *domain.File, provider *domain.StorageProvider, order int) *domain.Chunk {
	chunk := domain.NewChunk(file.ID, order, 1024, "chunk-sum")
	chunk.ProviderID = provider.ID
	return chunk
}

func TestSqlChunkRepository(t *testing.T) {
	dbConnection, cleanup, truncate := postgres.NewTestDB(t)
	defer cleanup()
	ctx := context.Background()
	repo := postgres.NewSqlChunkRepository(dbConnection)
	fileRepo := postgres.NewSqlFileRepository(dbConnection)
	providerRepo := postgres.NewSqlProviderRepository(dbConnection)

	t.Run("Create - Success", func(t *testing.T) {
		// Arrange
		truncate()
		file, provider := seedFileAndProvider(t, ctx, fileRepo, providerRepo)
		chunk := newChunkFor(file, provider, 0)

		// Act
		err := repo.Create(ctx, chunk)

		// Assert
		require.NoError(t, err)
		found, err := repo.FindByID(ctx, chunk.ID)
		require.NoError(t, err)
		require.Equal(t, chunk.ID, found.ID)
		require.Equal(t, file.ID, found.FileID)
		require.Equal(t, provider.ID, found.ProviderID)
		require.Equal(t, domain.ChunkStatusPending, found.Status)
	})

	t.Run("Create - Duplicate Order Rejected", func(t *testing.T) {
		// Arrange
		truncate()
		file, provider := seedFileAndProvider(t, ctx, fileRepo, providerRepo)
		require.NoError(t, repo.Create(ctx, newChunkFor(file, provider, 0)))

		// Act
		err := repo.Create(ctx, newChunkFor(file, provider, 0))

		// Assert
		require.Error(t, err)
	})

	t.Run("FindByID - Not Found", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		found, err := repo.FindByID(ctx, uuid.New())

		// Assert
		require.Nil(t, found)
		require.ErrorIs(t, err, domain.ErrChunkNotFound)
	})

	t.Run("FindByFileID - Ordered By Index", func(t *testing.T) {
		// Arrange
		truncate()
		file, provider := seedFileAndProvider(t, ctx, fileRepo, providerRepo)
		require.NoError(t, repo.Create(ctx, newChunkFor(file, provider, 2)))
		require.NoError(t, repo.Create(ctx, newChunkFor(file, provider, 0)))
		require.NoError(t, repo.Create(ctx, newChunkFor(file, provider, 1)))

		// Act
		chunks, err := repo.FindByFileID(ctx, file.ID)

		// Assert
		require.NoError(t, err)
		require.Len(t, chunks, 3)
		for i, chunk := range chunks {
			require.Equal(t, i, chunk.Order)
		}
	})

	t.Run("AllStored - Success", func(t *testing.T) {
		// Arrange
		truncate()
		file, provider := seedFileAndProvider(t, ctx, fileRepo, providerRepo)
		first := newChunkFor(file, provider, 0)
		second := newChunkFor(file, provider, 1)
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))

		// A file with no chunks never counts as stored.
		empty, err := repo.AllStored(ctx, uuid.New())
		require.NoError(t, err)
		require.False(t, empty)

		require.NoError(t, repo.UpdateStatus(ctx, first.ID, domain.ChunkStatusStored))
		partial, err := repo.AllStored(ctx, file.ID)
		require.NoError(t, err)
		require.False(t, partial)

		// Act
		require.NoError(t, repo.UpdateStatus(ctx, second.ID, domain.ChunkStatusStored))
		all, err := repo.AllStored(ctx, file.ID)

		// Assert
		require.NoError(t, err)
		require.True(t, all)
	})

	t.Run("CountByFileID - Success", func(t *testing.T) {
		// Arrange
		truncate()
		file, provider := seedFileAndProvider(t, ctx, fileRepo, providerRepo)
		require.NoError(t, repo.Create(ctx, newChunkFor(file, provider, 0)))
		require.NoError(t, repo.Create(ctx, newChunkFor(file, provider, 1)))

		// Act
		count, bytes, err := repo.CountByFileID(ctx, file.ID)

		// Assert
		require.NoError(t, err)
		require.Equal(t, 2, count)
		require.Equal(t, int64(2048), bytes)
	})

	t.Run("UpdateStatus - Not Found", func(t *testing.T) {
		// Arrange
		truncate()

		// Act
		err := repo.UpdateStatus(ctx, uuid.New(), domain.ChunkStatusStored)

		// Assert
		require.ErrorIs(t, err, domain.ErrChunkNotFound)
	})

	t.Run("UpdateProvider - Success", func(t *testing.T) {
		// Arrange
		truncate()
		file, provider := seedFileAndProvider(t, ctx, fileRepo, providerRepo)
		other := domain.NewStorageProvider("fs-backup", domain.ProviderKindNetwork, "/mnt/backup")
		require.NoError(t, providerRepo.Create(ctx, other))
		chunk := newChunkFor(file, provider, 0)
		require.NoError(t, repo.Create(ctx, chunk))

		// Act
		err := repo.UpdateProvider(ctx, chunk.ID, other.ID)

		// Assert
		require.NoError(t, err)
		found, _ := repo.FindByID(ctx, chunk.ID)
		require.Equal(t, other.ID, found.ProviderID)
	})

	t.Run("FindStale - Skips Terminal Statuses", func(t *testing.T) {
		// Arrange
		truncate()
		file, provider := seedFileAndProvider(t, ctx, fileRepo, providerRepo)
		pending := newChunkFor(file, provider, 0)
		stored := newChunkFor(file, provider, 1)
		require.NoError(t, repo.Create(ctx, pending))
		require.NoError(t, repo.Create(ctx, stored))
		require.NoError(t, repo.UpdateStatus(ctx, stored.ID, domain.ChunkStatusStored))

		// Act: a future cutoff makes every non-terminal chunk stale
		chunks, err := repo.FindStale(ctx, time.Now().UTC().Add(time.Minute))

		// Assert
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		require.Equal(t, pending.ID, chunks[0].ID)
	})

	t.Run("CountByStatus - Success", func(t *testing.T) {
		// Arrange
		truncate()
		file, provider := seedFileAndProvider(t, ctx, fileRepo, providerRepo)
		first := newChunkFor(file, provider, 0)
		second := newChunkFor(file, provider, 1)
		require.NoError(t, repo.Create(ctx, first))
		require.NoError(t, repo.Create(ctx, second))
		require.NoError(t, repo.UpdateStatus(ctx, second.ID, domain.ChunkStatusFailed))

		// Act
		counts, err := repo.CountByStatus(ctx)

		// Assert
		require.NoError(t, err)
		require.Equal(t, 1, counts[domain.ChunkStatusPending])
		require.Equal(t, 1, counts[domain.ChunkStatusFailed])
	})
}
