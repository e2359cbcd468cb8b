package domain

import (
	"time"

	"github.com/google/uuid"
)

// FileStatus represents the lifecycle status of a file
type FileStatus string

const (
	FileStatusPending    FileStatus = "pending"
	FileStatusProcessing FileStatus = "processing"
	FileStatusChunked    FileStatus = "chunked"
	FileStatusAvailable  FileStatus = "available"
	FileStatusFailed     FileStatus = "failed"
	FileStatusDeleted    FileStatus = "deleted"
)

// fileStatusEdges holds the allowed transitions per status. A failed file may
// become available again once replication re-stores its damaged chunks.
var fileStatusEdges = map[FileStatus][]FileStatus{
	FileStatusPending:    {FileStatusProcessing, FileStatusFailed, FileStatusDeleted},
	FileStatusProcessing: {FileStatusChunked, FileStatusFailed, FileStatusDeleted},
	FileStatusChunked:    {FileStatusAvailable, FileStatusFailed, FileStatusDeleted},
	FileStatusAvailable:  {FileStatusDeleted},
	FileStatusFailed:     {FileStatusAvailable, FileStatusDeleted},
	FileStatusDeleted:    {},
}

// CanTransitionTo reports whether the edge from s to next is defined.
func (s FileStatus) CanTransitionTo(next FileStatus) bool {
	for _, allowed := range fileStatusEdges[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// File represents the metadata of a stored file. SizeBytes and Checksum are
// set once at creation and never mutated afterwards.
type File struct {
	ID          uuid.UUID
	Name        string
	SizeBytes   int64
	Checksum    string
	Status      FileStatus
	ContentType string
	Description string
	Properties  map[string]string
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
}

// NewFile creates a file in pending status.
func NewFile(name string, sizeBytes int64, checksum, contentType string) *File {
	now := time.Now().UTC()
	return &File{
		ID:          uuid.New(),
		Name:        name,
		SizeBytes:   sizeBytes,
		Checksum:    checksum,
		Status:      FileStatusPending,
		ContentType: contentType,
		Properties:  map[string]string{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
