package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"invox/internal/domain"
)

// MockExtractionLogRepo is a mock implementation of port.ExtractionLogRepository.
type MockExtractionLogRepo struct {
	mock.Mock
}

func (m *MockExtractionLogRepo) Create(ctx context.Context, rec *domain.ExtractionRecord) error {
	args := m.Called(ctx, rec)
	return args.Error(0)
}

func (m *MockExtractionLogRepo) ListRecent(ctx context.Context, limit int) ([]domain.ExtractionRecord, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.ExtractionRecord), args.Error(1)
}
