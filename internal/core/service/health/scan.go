package health

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

// ScanAndRepair walks the chunks that need replication and re-stores each on
// a freshly selected provider. Individual failures are collected, not fatal;
// retrying a failed replication belongs to the next cycle.
func (h *healthService) ScanAndRepair(ctx context.Context) (*port.RepairResult, error) {
	result := &port.RepairResult{}
	now := time.Now().UTC()

	failed, err := h.uow.ChunkRepo().FindByStatus(ctx, domain.ChunkStatusFailed)
	if err != nil {
		return nil, err
	}
	stale, err := h.uow.ChunkRepo().FindStale(ctx, now.Add(-h.cfg.StaleAfter))
	if err != nil {
		return nil, err
	}

	seen := map[uuid.UUID]bool{}
	var candidates []*domain.Chunk
	for _, chunk := range append(failed, stale...) {
		if seen[chunk.ID] {
			continue
		}
		seen[chunk.ID] = true
		candidates = append(candidates, chunk)
	}
	result.ChunksScanned = len(candidates)
	if len(candidates) == 0 {
		return result, nil
	}

	active, err := h.registry.ActiveProviders(ctx)
	if err != nil {
		return nil, err
	}

	for _, chunk := range candidates {
		if !NeedsReplication(chunk, h.cfg.StaleAfter, now) {
			continue
		}
		target, selectErr := h.selectTarget(ctx, chunk, active)
		if selectErr != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("chunk %s: %v", chunk.ID, selectErr))
			continue
		}
		if repErr := h.ReplicateChunk(ctx, chunk.ID, target.ID); repErr != nil {
			result.Errors = append(result.Errors,
				fmt.Sprintf("chunk %s: %v", chunk.ID, repErr))
			continue
		}
		result.ChunksReplicated++
		h.logger.Info("chunk replicated",
			"chunk_id", chunk.ID, "file_id", chunk.FileID, "provider", target.Name)
	}

	return result, nil
}

// selectTarget prefers a provider other than the one holding the damaged
// copy; when the damaged copy's provider is the only one active it is reused.
func (h *healthService) selectTarget(ctx context.Context, chunk *domain.Chunk, active []*domain.StorageProvider) (*domain.StorageProvider, error) {
	others := make([]*domain.StorageProvider, 0, len(active))
	for _, provider := range active {
		if provider.ID != chunk.ProviderID {
			others = append(others, provider)
		}
	}
	if len(others) == 0 {
		others = active
	}
	return h.strategy.SelectProvider(ctx, others)
}
