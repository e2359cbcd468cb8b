package file

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

func (f *fileService) StoreFile(ctx context.Context, name, contentType string, sizeBytes int64, source io.Reader) (*port.StoreResult, error) {

	if err := f.splitter.ValidateFile(name, sizeBytes); err != nil {
		return nil, err
	}

	split, err := f.splitter.Split(source, f.splitter.ChunkSizeFor(sizeBytes))
	if err != nil {
		return nil, err
	}
	if split.TotalSize != sizeBytes {
		return nil, fmt.Errorf("%w: declared %d bytes, read %d",
			domain.ErrSizeMismatch, sizeBytes, split.TotalSize)
	}

	active, err := f.registry.ActiveProviders(ctx)
	if err != nil {
		return nil, err
	}
	pool, err := f.strategy.SelectPool(ctx, sizeBytes, active)
	if err != nil {
		return nil, err
	}

	fileEntity := domain.NewFile(name, split.TotalSize, split.Checksum, contentType)
	agg := domain.NewFileAggregate(fileEntity)

	payloads := make(map[uuid.UUID][]byte, len(split.Chunks))
	for _, payload := range split.Chunks {
		chunk := domain.NewChunk(fileEntity.ID, payload.Order, payload.Size, payload.Hash)
		target, selectErr := f.strategy.SelectProvider(ctx, pool)
		if selectErr != nil {
			return nil, selectErr
		}
		chunk.ProviderID = target.ID
		if addErr := agg.AddChunk(chunk); addErr != nil {
			return nil, addErr
		}
		payloads[chunk.ID] = payload.Data
	}

	// First commit: the file and its full chunk set, all pending. The file is
	// chunked once every row is recorded.
	txErr := f.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.FileRepo().Create(ctx, fileEntity); err != nil {
			return err
		}
		if err := agg.TransitionFile(domain.FileStatusProcessing, "chunking started"); err != nil {
			return err
		}
		for _, chunk := range agg.Chunks() {
			if err := uow.ChunkRepo().Create(ctx, chunk); err != nil {
				return err
			}
		}
		if err := agg.TransitionFile(domain.FileStatusChunked, "chunk set recorded"); err != nil {
			return err
		}
		return uow.FileRepo().UpdateStatus(ctx, fileEntity.ID, fileEntity.Status)
	})
	if txErr != nil {
		return nil, fmt.Errorf("could not record chunk set: %w", txErr)
	}
	f.relay.Relay(ctx, agg.DrainEvents())

	f.distributeChunks(ctx, agg, pool, payloads)

	// Second commit: the outcome of the physical writes. Events are drained
	// only after this commit succeeds.
	txErr = f.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		for _, chunk := range agg.Chunks() {
			if err := uow.ChunkRepo().UpdateProvider(ctx, chunk.ID, chunk.ProviderID); err != nil {
				return err
			}
			if err := uow.ChunkRepo().UpdateStatus(ctx, chunk.ID, chunk.Status); err != nil {
				return err
			}
		}
		return uow.FileRepo().UpdateStatus(ctx, fileEntity.ID, fileEntity.Status)
	})
	if txErr != nil {
		return nil, fmt.Errorf("could not commit chunk states: %w", txErr)
	}
	f.relay.Relay(ctx, agg.DrainEvents())
	f.invalidateCache(ctx, fileEntity.ID)

	return &port.StoreResult{
		FileID:     fileEntity.ID,
		ChunkCount: len(split.Chunks),
		Status:     fileEntity.Status,
	}, nil
}

// distributeChunks writes every chunk concurrently, one worker per in-flight
// chunk, each bounded by its provider's operation ceiling. Chunk order is a
// data attribute, not an execution order.
func (f *fileService) distributeChunks(ctx context.Context, agg *domain.FileAggregate, pool []*domain.StorageProvider, payloads map[uuid.UUID][]byte) {
	var wg sync.WaitGroup
	for _, chunk := range agg.Chunks() {
		wg.Add(1)
		go func(chunk *domain.Chunk) {
			defer wg.Done()
			f.writeChunk(ctx, agg, pool, chunk, payloads[chunk.ID])
		}(chunk)
	}
	wg.Wait()
}

// writeChunk performs the physical write for one chunk, retrying on another
// provider up to the configured retry count. Aggregate mutations run under
// the per-file gate; the write itself does not.
func (f *fileService) writeChunk(ctx context.Context, agg *domain.FileAggregate, pool []*domain.StorageProvider, chunk *domain.Chunk, data []byte) {
	f.transitionChunk(agg, chunk, domain.ChunkStatusProcessing, "")

	var lastErr error
	for attempt := 0; attempt <= f.cfg.DefaultRetryCount; attempt++ {
		target := providerByID(pool, chunk.ProviderID)
		if attempt > 0 || target == nil {
			// A retry never goes back to the provider whose write just
			// failed unless it is the only one in the pool.
			next, selectErr := f.strategy.SelectProvider(ctx, retryCandidates(pool, chunk.ProviderID))
			if selectErr != nil {
				lastErr = selectErr
				break
			}
			target = next
			f.reassignChunk(agg, chunk, next.ID)
		}

		if err := f.acquireSlot(ctx, target.ID); err != nil {
			lastErr = err
			break
		}
		err := func() error {
			defer f.registry.Release(target.ID)

			store, storeErr := f.registry.StoreFor(ctx, target)
			if storeErr != nil {
				return storeErr
			}
			f.transitionChunk(agg, chunk, domain.ChunkStatusStoring, "")
			if writeErr := store.Store(ctx, chunk.StorageKey(), data); writeErr != nil {
				return writeErr
			}
			// Post-write integrity check: the provider must report the exact
			// byte count back before the chunk counts as stored.
			size, sizeErr := store.Size(ctx, chunk.StorageKey())
			if sizeErr != nil {
				return sizeErr
			}
			if size != chunk.SizeBytes {
				return fmt.Errorf("%w: provider reports %d bytes, expected %d",
					domain.ErrChunkIntegrity, size, chunk.SizeBytes)
			}
			return nil
		}()
		if err == nil {
			f.markChunkStored(ctx, agg, chunk)
			return
		}
		lastErr = err
		f.logger.Warn("chunk write attempt failed",
			"chunk_id", chunk.ID,
			"order", chunk.Order,
			"provider", target.Name,
			"attempt", attempt,
			"error", err,
		)
	}

	unlock := f.gate.Lock(chunk.FileID)
	defer unlock()
	if err := agg.MarkChunkFailed(chunk.ID, "provider write failed"); err != nil {
		f.logger.Error("failed to mark chunk failed", "chunk_id", chunk.ID, "error", err)
	}
	f.logger.Error("chunk write failed",
		"chunk_id", chunk.ID, "order", chunk.Order, "error", lastErr)
}

func (f *fileService) markChunkStored(ctx context.Context, agg *domain.FileAggregate, chunk *domain.Chunk) {
	unlock := f.gate.Lock(chunk.FileID)
	defer unlock()
	completed, err := agg.MarkChunkStored(chunk.ID)
	if err != nil {
		f.logger.Error("failed to mark chunk stored", "chunk_id", chunk.ID, "error", err)
		return
	}
	if completed {
		f.logger.Info("file complete", "file_id", chunk.FileID)
	}
}

func (f *fileService) transitionChunk(agg *domain.FileAggregate, chunk *domain.Chunk, next domain.ChunkStatus, reason string) {
	unlock := f.gate.Lock(chunk.FileID)
	defer unlock()
	if err := agg.TransitionChunk(chunk.ID, next, reason); err != nil {
		f.logger.Error("chunk transition rejected",
			"chunk_id", chunk.ID, "next", next, "error", err)
	}
}

func (f *fileService) reassignChunk(agg *domain.FileAggregate, chunk *domain.Chunk, providerID uuid.UUID) {
	unlock := f.gate.Lock(chunk.FileID)
	defer unlock()
	chunk.ProviderID = providerID
}

func providerByID(pool []*domain.StorageProvider, id uuid.UUID) *domain.StorageProvider {
	for _, provider := range pool {
		if provider.ID == id {
			return provider
		}
	}
	return nil
}

func retryCandidates(pool []*domain.StorageProvider, failedID uuid.UUID) []*domain.StorageProvider {
	others := make([]*domain.StorageProvider, 0, len(pool))
	for _, provider := range pool {
		if provider.ID != failedID {
			others = append(others, provider)
		}
	}
	if len(others) == 0 {
		return pool
	}
	return others
}
