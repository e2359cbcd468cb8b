package file

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
	"github.com/stretchr/testify/mock"
)

type MockFileService struct {
	mock.Mock
}

func NewMockFileService() *MockFileService {
	return &MockFileService{}
}

func (m *MockFileService) StoreFile(ctx context.Context, name, contentType string, sizeBytes int64, source io.Reader) (*port.StoreResult, error) {
	args := m.Called(ctx, name, contentType, sizeBytes, source)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.StoreResult), args.Error(1)
}

func (m *MockFileService) RetrieveFile(ctx context.Context, fileID uuid.UUID) (*port.RetrieveResult, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RetrieveResult), args.Error(1)
}

func (m *MockFileService) DeleteFile(ctx context.Context, fileID uuid.UUID) error {
	args := m.Called(ctx, fileID)
	return args.Error(0)
}

func (m *MockFileService) GetFileStatus(ctx context.Context, fileID uuid.UUID) (*domain.File, []*domain.Chunk, error) {
	args := m.Called(ctx, fileID)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*domain.File), args.Get(1).([]*domain.Chunk), args.Error(2)
}
