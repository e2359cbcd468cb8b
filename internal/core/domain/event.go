package domain

import (
	"time"

	"github.com/google/uuid"
)

// EventKind is a type that represents the type of a domain event
type EventKind string

const (
	EventKindFileStatusChanged  EventKind = "file.status_changed"
	EventKindChunkStatusChanged EventKind = "chunk.status_changed"
	EventKindChunkReplicated    EventKind = "chunk.replicated"
)

// StatusEvent is an immutable record of a completed state transition. Events
// are collected on the owning aggregate and published after commit.
type StatusEvent struct {
	Kind       EventKind `json:"kind"`
	SubjectID  uuid.UUID `json:"subject_id"`
	FileID     uuid.UUID `json:"file_id"`
	OldStatus  string    `json:"old_status"`
	NewStatus  string    `json:"new_status"`
	Reason     string    `json:"reason,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}
