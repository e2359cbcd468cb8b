package health

import (
	"context"
	"time"

	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
)

// Report produces the system-wide health report. It only reads; no entity is
// mutated while producing it.
func (h *healthService) Report(ctx context.Context) (*port.HealthReport, error) {

	filesByStatus, err := h.uow.FileRepo().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	chunksByStatus, err := h.uow.ChunkRepo().CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	stale, err := h.uow.ChunkRepo().FindStale(ctx, time.Now().UTC().Add(-h.cfg.StaleAfter))
	if err != nil {
		return nil, err
	}

	report := &port.HealthReport{
		HealthyFiles:      filesByStatus[domain.FileStatusAvailable],
		UnhealthyFiles:    filesByStatus[domain.FileStatusFailed],
		HealthyChunks:     chunksByStatus[domain.ChunkStatusStored],
		CorruptedChunks:   chunksByStatus[domain.ChunkStatusFailed],
		ChunksToReplicate: chunksByStatus[domain.ChunkStatusFailed] + len(stale),
		FilesByStatus:     filesByStatus,
		ChunksByStatus:    chunksByStatus,
	}

	providers, err := h.uow.ProviderRepo().List(ctx)
	if err != nil {
		return nil, err
	}
	for _, provider := range providers {
		if h.registry.Probe(ctx, provider) == nil {
			report.HealthyProviders++
		} else {
			report.UnhealthyProviders++
		}
	}

	return report, nil
}
