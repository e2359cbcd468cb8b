package file

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

// DeleteFile removes every chunk before the file itself is marked deleted. A
// partial failure is reported but does not resurrect chunks that were already
// deleted.
func (f *fileService) DeleteFile(ctx context.Context, fileID uuid.UUID) error {

	fileEntity, err := f.uow.FileRepo().FindByID(ctx, fileID)
	if err != nil {
		return err
	}
	chunks, err := f.uow.ChunkRepo().FindByFileID(ctx, fileID)
	if err != nil {
		return err
	}
	agg, err := domain.LoadFileAggregate(fileEntity, chunks)
	if err != nil {
		return err
	}

	var deleteErrs []error
	for _, chunk := range agg.Chunks() {
		if physErr := f.deleteChunkPayload(ctx, chunk); physErr != nil {
			deleteErrs = append(deleteErrs, fmt.Errorf("chunk order %d: %w", chunk.Order, physErr))
			continue
		}
		if trErr := agg.TransitionChunk(chunk.ID, domain.ChunkStatusDeleted, "file deleted"); trErr != nil {
			deleteErrs = append(deleteErrs, trErr)
		}
	}

	// The file is marked deleted only once every chunk is gone.
	if len(deleteErrs) == 0 {
		if trErr := agg.TransitionFile(domain.FileStatusDeleted, "file deleted"); trErr != nil {
			deleteErrs = append(deleteErrs, trErr)
		}
	}

	txErr := f.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		for _, chunk := range agg.Chunks() {
			if chunk.Status != domain.ChunkStatusDeleted {
				continue
			}
			if err := uow.ChunkRepo().UpdateStatus(ctx, chunk.ID, chunk.Status); err != nil {
				return err
			}
		}
		if agg.File().Status == domain.FileStatusDeleted {
			return uow.FileRepo().Delete(ctx, fileID)
		}
		return nil
	})
	if txErr != nil {
		return fmt.Errorf("could not commit delete: %w", txErr)
	}
	f.relay.Relay(ctx, agg.DrainEvents())
	f.invalidateCache(ctx, fileID)

	if len(deleteErrs) > 0 {
		return fmt.Errorf("file %s partially deleted: %w", fileID, errors.Join(deleteErrs...))
	}
	return nil
}

// deleteChunkPayload removes the physical payload. A payload that is already
// gone is not an error.
func (f *fileService) deleteChunkPayload(ctx context.Context, chunk *domain.Chunk) error {
	provider, err := f.uow.ProviderRepo().FindByID(ctx, chunk.ProviderID)
	if err != nil {
		if errors.Is(err, domain.ErrProviderNotFound) {
			return nil
		}
		return err
	}
	store, err := f.registry.StoreFor(ctx, provider)
	if err != nil {
		return err
	}

	exists, err := store.Exists(ctx, chunk.StorageKey())
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	return store.Delete(ctx, chunk.StorageKey())
}
