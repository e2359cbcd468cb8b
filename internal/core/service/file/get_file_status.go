package file

import (
	"context"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
)

func (f *fileService) GetFileStatus(ctx context.Context, fileID uuid.UUID) (*domain.File, []*domain.Chunk, error) {
	fileEntity, err := f.lookupFile(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	chunks, err := f.uow.ChunkRepo().FindByFileID(ctx, fileID)
	if err != nil {
		return nil, nil, err
	}
	return fileEntity, chunks, nil
}
