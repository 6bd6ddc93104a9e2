package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/enemresultados/internal/models"
)

// MockSnapshotLoader is a mock implementation of worker.SnapshotLoader
type MockSnapshotLoader struct {
	mock.Mock
}

func (m *MockSnapshotLoader) LoadSnapshot(ctx context.Context, studentID int64, period int) (*models.Snapshot, error) {
	args := m.Called(ctx, studentID, period)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Snapshot), args.Error(1)
}
