package domain

import (
	"time"

	"github.com/google/uuid"
)

// ChunkStatus represents the lifecycle status of a chunk
type ChunkStatus string

const (
	ChunkStatusPending    ChunkStatus = "pending"
	ChunkStatusProcessing ChunkStatus = "processing"
	ChunkStatusStoring    ChunkStatus = "storing"
	ChunkStatusStored     ChunkStatus = "stored"
	ChunkStatusFailed     ChunkStatus = "failed"
	ChunkStatusDeleted    ChunkStatus = "deleted"
)

// chunkStatusEdges holds the allowed transitions per status. A failed chunk
// may re-enter storing when replication re-stores it elsewhere.
var chunkStatusEdges = map[ChunkStatus][]ChunkStatus{
	ChunkStatusPending:    {ChunkStatusProcessing, ChunkStatusFailed, ChunkStatusDeleted},
	ChunkStatusProcessing: {ChunkStatusStoring, ChunkStatusFailed, ChunkStatusDeleted},
	ChunkStatusStoring:    {ChunkStatusStored, ChunkStatusFailed, ChunkStatusDeleted},
	ChunkStatusStored:     {ChunkStatusFailed, ChunkStatusDeleted},
	ChunkStatusFailed:     {ChunkStatusStoring, ChunkStatusDeleted},
	ChunkStatusDeleted:    {},
}

// CanTransitionTo reports whether the edge from s to next is defined.
func (s ChunkStatus) CanTransitionTo(next ChunkStatus) bool {
	for _, allowed := range chunkStatusEdges[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Chunk represents one ordered, hashed byte-range slice of a file, stored at
// exactly one provider at a time.
type Chunk struct {
	ID         uuid.UUID
	FileID     uuid.UUID
	Order      int
	SizeBytes  int64
	Checksum   string
	ProviderID uuid.UUID
	Status     ChunkStatus
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewChunk creates a chunk in pending status.
func NewChunk(fileID uuid.UUID, order int, sizeBytes int64, checksum string) *Chunk {
	now := time.Now().UTC()
	return &Chunk{
		ID:        uuid.New(),
		FileID:    fileID,
		Order:     order,
		SizeBytes: sizeBytes,
		Checksum:  checksum,
		Status:    ChunkStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// StorageKey is the object key the chunk payload is stored under at its
// provider.
func (c *Chunk) StorageKey() string {
	return c.FileID.String() + "/" + c.ID.String()
}
