package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/domain"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
	"github.com/stretchr/testify/mock"
)

type MockFileRepository struct {
	mock.Mock
}

func NewMockFileRepository() *MockFileRepository {
	return &MockFileRepository{}
}

func (m *MockFileRepository) Create(ctx context.Context, file *domain.File) error {
	args := m.Called(ctx, file)
	return args.Error(0)
}

func (m *MockFileRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.File, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.File), args.Error(1)
}

func (m *MockFileRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.FileStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockFileRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockFileRepository) FindByStatus(ctx context.Context, status domain.FileStatus) ([]domain.File, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]domain.File), args.Error(1)
}

func (m *MockFileRepository) CountByStatus(ctx context.Context) (map[domain.FileStatus]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.FileStatus]int), args.Error(1)
}

type MockChunkRepository struct {
	mock.Mock
}

func NewMockChunkRepository() *MockChunkRepository {
	return &MockChunkRepository{}
}

func (m *MockChunkRepository) Create(ctx context.Context, chunk *domain.Chunk) error {
	args := m.Called(ctx, chunk)
	return args.Error(0)
}

func (m *MockChunkRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Chunk, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) FindByFileID(ctx context.Context, fileID uuid.UUID) ([]*domain.Chunk, error) {
	args := m.Called(ctx, fileID)
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) FindByFileIDAndStatus(ctx context.Context, fileID uuid.UUID, status domain.ChunkStatus) ([]*domain.Chunk, error) {
	args := m.Called(ctx, fileID, status)
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) AllStored(ctx context.Context, fileID uuid.UUID) (bool, error) {
	args := m.Called(ctx, fileID)
	return args.Bool(0), args.Error(1)
}

func (m *MockChunkRepository) CountByFileID(ctx context.Context, fileID uuid.UUID) (int, int64, error) {
	args := m.Called(ctx, fileID)
	return args.Int(0), args.Get(1).(int64), args.Error(2)
}

func (m *MockChunkRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.ChunkStatus) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

func (m *MockChunkRepository) UpdateProvider(ctx context.Context, id uuid.UUID, providerID uuid.UUID) error {
	args := m.Called(ctx, id, providerID)
	return args.Error(0)
}

func (m *MockChunkRepository) FindByStatus(ctx context.Context, status domain.ChunkStatus) ([]*domain.Chunk, error) {
	args := m.Called(ctx, status)
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) FindStale(ctx context.Context, updatedBefore time.Time) ([]*domain.Chunk, error) {
	args := m.Called(ctx, updatedBefore)
	return args.Get(0).([]*domain.Chunk), args.Error(1)
}

func (m *MockChunkRepository) CountByStatus(ctx context.Context) (map[domain.ChunkStatus]int, error) {
	args := m.Called(ctx)
	return args.Get(0).(map[domain.ChunkStatus]int), args.Error(1)
}

type MockProviderRepository struct {
	mock.Mock
}

func NewMockProviderRepository() *MockProviderRepository {
	return &MockProviderRepository{}
}

func (m *MockProviderRepository) Create(ctx context.Context, provider *domain.StorageProvider) error {
	args := m.Called(ctx, provider)
	return args.Error(0)
}

func (m *MockProviderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.StorageProvider, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StorageProvider), args.Error(1)
}

func (m *MockProviderRepository) FindByName(ctx context.Context, name string) (*domain.StorageProvider, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StorageProvider), args.Error(1)
}

func (m *MockProviderRepository) FindActive(ctx context.Context) ([]*domain.StorageProvider, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.StorageProvider), args.Error(1)
}

func (m *MockProviderRepository) List(ctx context.Context) ([]*domain.StorageProvider, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*domain.StorageProvider), args.Error(1)
}

func (m *MockProviderRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	args := m.Called(ctx, id, active)
	return args.Error(0)
}

func (m *MockProviderRepository) Count(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

type MockUnitOfWork struct {
	mock.Mock
	fileRepo     *MockFileRepository
	chunkRepo    *MockChunkRepository
	providerRepo *MockProviderRepository
}

func NewMockUnitOfWork() *MockUnitOfWork {
	return &MockUnitOfWork{
		fileRepo:     &MockFileRepository{},
		chunkRepo:    &MockChunkRepository{},
		providerRepo: &MockProviderRepository{},
	}
}

func (m *MockUnitOfWork) FileRepo() port.FileRepository {
	return m.fileRepo
}

func (m *MockUnitOfWork) ChunkRepo() port.ChunkRepository {
	return m.chunkRepo
}

func (m *MockUnitOfWork) ProviderRepo() port.ProviderRepository {
	return m.providerRepo
}

func (m *MockUnitOfWork) Execute(ctx context.Context, fn func(uow port.UnitOfWork) error) error {
	args := m.Called(ctx, fn)

	if err := fn(m); err != nil {
		return err
	}

	return args.Error(0)
}

func (m *MockUnitOfWork) GetFileRepoMock() *MockFileRepository {
	return m.fileRepo
}

func (m *MockUnitOfWork) GetChunkRepoMock() *MockChunkRepository {
	return m.chunkRepo
}

func (m *MockUnitOfWork) GetProviderRepoMock() *MockProviderRepository {
	return m.providerRepo
}
