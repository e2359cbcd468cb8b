package health

import (
	"log/slog"
	"time"

	"github.com/ozalgun/storage-file-app-sub001/internal/config"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/integrity"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/service/placement"
)

type healthService struct {
	uow      port.UnitOfWork
	registry *placement.Registry
	strategy *placement.Strategy
	verifier *integrity.Engine
	relay    port.EventRelay
	gate     *domain.CompletionGate
	cfg      config.HealthConfig
	logger   *slog.Logger
}

// NewHealthService creates the health and replication monitor. gate is shared
// with the file service so completion re-checks stay serialized per file.
func NewHealthService(
	uow port.UnitOfWork,
	registry *placement.Registry,
	strategy *placement.Strategy,
	verifier *integrity.Engine,
	relay port.EventRelay,
	gate *domain.CompletionGate,
	cfg config.HealthConfig,
	logger *slog.Logger,
) port.HealthService {
	return &healthService{
		uow:      uow,
		registry: registry,
		strategy: strategy,
		verifier: verifier,
		relay:    relay,
		gate:     gate,
		cfg:      cfg,
		logger:   logger,
	}
}

// ClassifyChunk classifies one chunk for the monitor. A chunk is healthy iff
// it is stored with a positive size and a non-empty hash; corrupted iff it
// failed or carries no usable size/hash; it needs replication when corrupted,
// deleted while still referenced, or stale beyond the age threshold without
// reaching stored.
func ClassifyChunk(chunk *domain.Chunk, staleAfter time.Duration, now time.Time) port.ChunkCondition {
	corrupted := chunk.Status == domain.ChunkStatusFailed ||
		chunk.SizeBytes <= 0 ||
		chunk.Checksum == ""

	if corrupted {
		return port.ChunkConditionCorrupted
	}
	if chunk.Status == domain.ChunkStatusDeleted {
		return port.ChunkConditionNeedsReplication
	}
	if chunk.Status != domain.ChunkStatusStored && now.Sub(chunk.UpdatedAt) > staleAfter {
		return port.ChunkConditionNeedsReplication
	}
	if chunk.Status == domain.ChunkStatusStored {
		return port.ChunkConditionHealthy
	}
	// Pending/processing/storing within the age threshold.
	return port.ChunkConditionInFlight
}

// NeedsReplication reports whether the chunk should be re-stored elsewhere.
func NeedsReplication(chunk *domain.Chunk, staleAfter time.Duration, now time.Time) bool {
	condition := ClassifyChunk(chunk, staleAfter, now)
	return condition == port.ChunkConditionCorrupted || condition == port.ChunkConditionNeedsReplication
}
