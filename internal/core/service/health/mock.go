package health

import (
	"context"

	"github.com/google/uuid"
	"github.com/ozalgun/storage-file-app-sub001/internal/core/port"
	"github.com/stretchr/testify/mock"
)

type MockHealthService struct {
	mock.Mock
}

func NewMockHealthService() *MockHealthService {
	return &MockHealthService{}
}

func (m *MockHealthService) Report(ctx context.Context) (*port.HealthReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.HealthReport), args.Error(1)
}

func (m *MockHealthService) ScanAndRepair(ctx context.Context) (*port.RepairResult, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*port.RepairResult), args.Error(1)
}

func (m *MockHealthService) ReplicateChunk(ctx context.Context, chunkID uuid.UUID, targetProviderID uuid.UUID) error {
	args := m.Called(ctx, chunkID, targetProviderID)
	return args.Error(0)
}
