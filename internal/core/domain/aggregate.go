package domain

import (
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
)

// FileAggregate is the in-memory consistency boundary wrapping one file and
// its ordered chunk collection for the duration of a unit of work. It is the
// exclusive owner of state-transition logic and the sole source of domain
// events while it lives; it is discarded after the unit of work completes.
type FileAggregate struct {
	file    *File
	byOrder map[int]*Chunk
	byID    map[uuid.UUID]*Chunk
	events  []StatusEvent
}

// NewFileAggregate wraps a file with an empty chunk collection.
func NewFileAggregate(file *File) *FileAggregate {
	return &FileAggregate{
		file:    file,
		byOrder: map[int]*Chunk{},
		byID:    map[uuid.UUID]*Chunk{},
	}
}

// LoadFileAggregate wraps a file and its persisted chunks, enforcing the
// ordering and uniqueness invariants on the way in.
func LoadFileAggregate(file *File, chunks []*Chunk) (*FileAggregate, error) {
	agg := NewFileAggregate(file)
	for _, chunk := range chunks {
		if err := agg.AddChunk(chunk); err != nil {
			return nil, err
		}
	}
	return agg, nil
}

// File returns the wrapped file.
func (a *FileAggregate) File() *File {
	return a.file
}

// Chunks returns the chunk collection sorted by ascending order.
func (a *FileAggregate) Chunks() []*Chunk {
	chunks := make([]*Chunk, 0, len(a.byOrder))
	for _, chunk := range a.byOrder {
		chunks = append(chunks, chunk)
	}
	sort.Slice(chunks, func(i, j int) bool {
		return chunks[i].Order < chunks[j].Order
	})
	return chunks
}

// ChunkByID returns the chunk with the given id.
func (a *FileAggregate) ChunkByID(id uuid.UUID) (*Chunk, error) {
	chunk, ok := a.byID[id]
	if !ok {
		return nil, ErrChunkNotFound
	}
	return chunk, nil
}

// AddChunk adds a chunk to the collection. Chunks of another file and
// duplicate orders are rejected.
func (a *FileAggregate) AddChunk(chunk *Chunk) error {
	if chunk.FileID != a.file.ID {
		return fmt.Errorf("%w: chunk %s references file %s, aggregate owns %s",
			ErrChunkFileMismatch, chunk.ID, chunk.FileID, a.file.ID)
	}
	if _, exists := a.byOrder[chunk.Order]; exists {
		return fmt.Errorf("%w: order %d", ErrDuplicateChunkOrder, chunk.Order)
	}
	a.byOrder[chunk.Order] = chunk
	a.byID[chunk.ID] = chunk
	return nil
}

// TransitionFile moves the file to next, appending one event. A no-op
// transition (old == next) appends nothing and returns nil.
func (a *FileAggregate) TransitionFile(next FileStatus, reason string) error {
	old := a.file.Status
	if old == next {
		return nil
	}
	if !old.CanTransitionTo(next) {
		return fmt.Errorf("%w: file %s to %s", ErrInvalidStatusTransition, old, next)
	}
	now := time.Now().UTC()
	a.file.Status = next
	a.file.UpdatedAt = now
	if next == FileStatusDeleted {
		a.file.DeletedAt = &now
	}
	a.events = append(a.events, StatusEvent{
		Kind:       EventKindFileStatusChanged,
		SubjectID:  a.file.ID,
		FileID:     a.file.ID,
		OldStatus:  string(old),
		NewStatus:  string(next),
		Reason:     reason,
		OccurredAt: now,
	})
	return nil
}

// TransitionChunk moves one chunk to next, appending one event. A no-op
// transition appends nothing and returns nil.
func (a *FileAggregate) TransitionChunk(chunkID uuid.UUID, next ChunkStatus, reason string) error {
	chunk, ok := a.byID[chunkID]
	if !ok {
		return ErrChunkNotFound
	}
	old := chunk.Status
	if old == next {
		return nil
	}
	if !old.CanTransitionTo(next) {
		return fmt.Errorf("%w: chunk %s to %s", ErrInvalidStatusTransition, old, next)
	}
	now := time.Now().UTC()
	chunk.Status = next
	chunk.UpdatedAt = now
	a.events = append(a.events, StatusEvent{
		Kind:       EventKindChunkStatusChanged,
		SubjectID:  chunk.ID,
		FileID:     a.file.ID,
		OldStatus:  string(old),
		NewStatus:  string(next),
		Reason:     reason,
		OccurredAt: now,
	})
	return nil
}

// MarkChunkStored transitions a chunk to stored and re-evaluates whole-file
// completion. It returns true when this transition completed the file. The
// completion check runs on every chunk-stored transition, not on a timer; the
// file event is emitted at most once because a second evaluation is a no-op.
func (a *FileAggregate) MarkChunkStored(chunkID uuid.UUID) (bool, error) {
	if err := a.TransitionChunk(chunkID, ChunkStatusStored, ""); err != nil {
		return false, err
	}
	if !a.AllChunksStored() {
		return false, nil
	}
	if a.file.Status == FileStatusAvailable {
		return false, nil
	}
	if err := a.TransitionFile(FileStatusAvailable, "all chunks stored"); err != nil {
		return false, err
	}
	return true, nil
}

// MarkChunkFailed transitions a chunk to failed. A single isolated chunk
// failure does not fail the file, since replication may still recover it; the
// file fails once more than one chunk has failed.
func (a *FileAggregate) MarkChunkFailed(chunkID uuid.UUID, reason string) error {
	if err := a.TransitionChunk(chunkID, ChunkStatusFailed, reason); err != nil {
		return err
	}
	if a.failedChunkCount() > 1 && a.file.Status != FileStatusFailed {
		if err := a.TransitionFile(FileStatusFailed, "multiple chunk failures"); err != nil {
			return err
		}
	}
	return nil
}

// MarkDeleted transitions every chunk and then the file to deleted. A file
// and its chunks move to deleted together, never partially.
func (a *FileAggregate) MarkDeleted(reason string) error {
	for _, chunk := range a.Chunks() {
		if err := a.TransitionChunk(chunk.ID, ChunkStatusDeleted, reason); err != nil {
			return err
		}
	}
	return a.TransitionFile(FileStatusDeleted, reason)
}

// AllChunksStored reports whether every chunk of the file is stored. A file
// with no chunks is never considered stored.
func (a *FileAggregate) AllChunksStored() bool {
	if len(a.byOrder) == 0 {
		return false
	}
	for _, chunk := range a.byOrder {
		if chunk.Status != ChunkStatusStored {
			return false
		}
	}
	return true
}

func (a *FileAggregate) failedChunkCount() int {
	count := 0
	for _, chunk := range a.byOrder {
		if chunk.Status == ChunkStatusFailed {
			count++
		}
	}
	return count
}

// RecordChunkReplicated appends a replication event for the chunk. The reason
// names the source and target providers.
func (a *FileAggregate) RecordChunkReplicated(chunkID uuid.UUID, reason string) error {
	chunk, ok := a.byID[chunkID]
	if !ok {
		return ErrChunkNotFound
	}
	a.events = append(a.events, StatusEvent{
		Kind:       EventKindChunkReplicated,
		SubjectID:  chunk.ID,
		FileID:     a.file.ID,
		OldStatus:  string(chunk.Status),
		NewStatus:  string(chunk.Status),
		Reason:     reason,
		OccurredAt: time.Now().UTC(),
	})
	return nil
}

// PendingEvents returns the collected events without draining them.
func (a *FileAggregate) PendingEvents() []StatusEvent {
	return a.events
}

// DrainEvents returns the collected events and clears the list. The component
// performing the durable commit calls this exactly once, after success.
func (a *FileAggregate) DrainEvents() []StatusEvent {
	events := a.events
	a.events = nil
	return events
}
