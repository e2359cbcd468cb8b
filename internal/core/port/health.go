package port

import (
	"context"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// ChunkCondition classifies a chunk for the health monitor.
type ChunkCondition string

const (
	ChunkConditionHealthy          ChunkCondition = "healthy"
	ChunkConditionCorrupted        ChunkCondition = "corrupted"
	ChunkConditionNeedsReplication ChunkCondition = "needs_replication"
	ChunkConditionInFlight         ChunkCondition = "in_flight"
)

// HealthReport aggregates system-wide counts. Producing it mutates nothing.
type HealthReport struct {
	HealthyFiles       int
	UnhealthyFiles     int
	HealthyChunks      int
	CorruptedChunks    int
	ChunksToReplicate  int
	HealthyProviders   int
	UnhealthyProviders int
	FilesByStatus      map[domain.FileStatus]int
	ChunksByStatus     map[domain.ChunkStatus]int
}

// RepairResult tracks the outcome of a single scan-and-repair cycle.
type RepairResult struct {
	ChunksScanned    int
	ChunksReplicated int
	Errors           []string
}

// HealthService is an interface to define the health and replication monitor
type HealthService interface {
	Report(ctx context.Context) (*HealthReport, error)
	ScanAndRepair(ctx context.Context) (*RepairResult, error)
	ReplicateChunk(ctx context.Context, chunkID uuid.UUID, targetProviderID uuid.UUID) error
}
