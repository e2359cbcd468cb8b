package port

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

// FileRepository is an interface to define file metadata persistence
type FileRepository interface {
	Create(ctx context.Context, file *domain.File) error
	FindByID(ctx context.Context, id uuid.UUID) (*domain.File, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByStatus(ctx context.Context, status domain.FileStatus) ([]domain.File, error)
	CountByStatus(ctx context.Context) (map[domain.FileStatus]int, error)
}

// StoreResult reports the outcome of a store request.
type StoreResult struct {
	FileID     uuid.UUID
	ChunkCount int
	Status     domain.FileStatus
}

// RetrieveResult carries a reassembled, integrity-verified file.
type RetrieveResult struct {
	File *domain.File
	Data []byte
}

// FileService is an interface to define the chunk lifecycle use cases
type FileService interface {
	StoreFile(ctx context.Context, name, contentType string, sizeBytes int64, source io.Reader) (*StoreResult, error)
	RetrieveFile(ctx context.Context, fileID uuid.UUID) (*RetrieveResult, error)
	DeleteFile(ctx context.Context, fileID uuid.UUID) error
	GetFileStatus(ctx context.Context, fileID uuid.UUID) (*domain.File, []*domain.Chunk, error)
}

// FileCache is an interface to define the read-through file metadata cache
type FileCache interface {
	GetFile(ctx context.Context, id uuid.UUID) (*domain.File, error)
	SetFile(ctx context.Context, file *domain.File) error
	Invalidate(ctx context.Context, id uuid.UUID) error
}
