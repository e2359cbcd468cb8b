package health

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

// ReplicateChunk copies a chunk payload to the target provider, verifies the
// copy's hash against the chunk's recorded hash, and only then records the
// chunk as available at the new provider. Replication is additive: a failed
// attempt leaves the original untouched and is reported, not retried here.
func (h *healthService) ReplicateChunk(ctx context.Context, chunkID uuid.UUID, targetProviderID uuid.UUID) error {

	chunk, err := h.uow.ChunkRepo().FindByID(ctx, chunkID)
	if err != nil {
		return err
	}
	fileEntity, err := h.uow.FileRepo().FindByID(ctx, chunk.FileID)
	if err != nil {
		return fmt.Errorf("chunk %s references unknown file: %w", chunkID, err)
	}

	payload, err := h.readSource(ctx, chunk)
	if err != nil {
		return fmt.Errorf("could not read source copy: %w", err)
	}
	if err := h.verifier.VerifyChunk(chunk, payload); err != nil {
		return err
	}

	target, err := h.uow.ProviderRepo().FindByID(ctx, targetProviderID)
	if err != nil {
		return err
	}
	targetStore, err := h.registry.StoreFor(ctx, target)
	if err != nil {
		return err
	}

	if err := targetStore.Store(ctx, chunk.StorageKey(), payload); err != nil {
		return fmt.Errorf("could not write copy to %s: %w", target.Name, err)
	}
	copied, err := targetStore.Retrieve(ctx, chunk.StorageKey())
	if err != nil {
		return fmt.Errorf("could not verify copy at %s: %w", target.Name, err)
	}
	if err := h.verifier.VerifyChunk(chunk, copied); err != nil {
		// The bad copy must not linger at the target.
		if delErr := targetStore.Delete(ctx, chunk.StorageKey()); delErr != nil {
			h.logger.Warn("failed to remove bad copy", "chunk_id", chunk.ID, "provider", target.Name, "error", delErr)
		}
		return err
	}

	return h.recordReplication(ctx, fileEntity, chunk, target)
}

func (h *healthService) readSource(ctx context.Context, chunk *domain.Chunk) ([]byte, error) {
	source, err := h.uow.ProviderRepo().FindByID(ctx, chunk.ProviderID)
	if err != nil {
		return nil, err
	}
	sourceStore, err := h.registry.StoreFor(ctx, source)
	if err != nil {
		return nil, err
	}
	return sourceStore.Retrieve(ctx, chunk.StorageKey())
}

// recordReplication moves the chunk to the new provider and re-evaluates
// whole-file completion under the per-file gate.
func (h *healthService) recordReplication(ctx context.Context, fileEntity *domain.File, chunk *domain.Chunk, target *domain.StorageProvider) error {

	chunks, err := h.uow.ChunkRepo().FindByFileID(ctx, chunk.FileID)
	if err != nil {
		return err
	}
	agg, err := domain.LoadFileAggregate(fileEntity, chunks)
	if err != nil {
		return err
	}

	unlock := h.gate.Lock(chunk.FileID)
	defer unlock()

	aggChunk, err := agg.ChunkByID(chunk.ID)
	if err != nil {
		return err
	}
	oldProvider := aggChunk.ProviderID
	aggChunk.ProviderID = target.ID

	if aggChunk.Status != domain.ChunkStatusStored {
		if aggChunk.Status == domain.ChunkStatusPending {
			if err := agg.TransitionChunk(chunk.ID, domain.ChunkStatusProcessing, "replication"); err != nil {
				return err
			}
		}
		if err := agg.TransitionChunk(chunk.ID, domain.ChunkStatusStoring, "replication"); err != nil {
			return err
		}
		if _, err := agg.MarkChunkStored(chunk.ID); err != nil {
			return err
		}
	}
	if err := agg.RecordChunkReplicated(chunk.ID, fmt.Sprintf("moved from %s to %s", oldProvider, target.ID)); err != nil {
		return err
	}

	txErr := h.uow.Execute(ctx, func(uow port.UnitOfWork) error {
		if err := uow.ChunkRepo().UpdateProvider(ctx, chunk.ID, target.ID); err != nil {
			return err
		}
		if err := uow.ChunkRepo().UpdateStatus(ctx, chunk.ID, aggChunk.Status); err != nil {
			return err
		}
		return uow.FileRepo().UpdateStatus(ctx, fileEntity.ID, agg.File().Status)
	})
	if txErr != nil {
		return fmt.Errorf("could not commit replication: %w", txErr)
	}
	h.relay.Relay(ctx, agg.DrainEvents())
	return nil
}
