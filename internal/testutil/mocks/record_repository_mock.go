package mocks

import (
	"context"

	"github.com/vytor/enemresultados/internal/models"
)

// MockRecordRepository is a mock implementation of repository.RecordRepository
type MockRecordRepository struct {
	MockRecordSource
}

func (m *MockRecordRepository) InsertPerformance(ctx context.Context, studentID int64, records []models.PerformanceRecord) (int, error) {
	args := m.Called(ctx, studentID, records)
	return args.Int(0), args.Error(1)
}

func (m *MockRecordRepository) InsertActivity(ctx context.Context, studentID int64, records []models.ActivityRecord) (int, error) {
	args := m.Called(ctx, studentID, records)
	return args.Int(0), args.Error(1)
}

func (m *MockRecordRepository) InsertSimulados(ctx context.Context, studentID int64, records []models.SimuladoRecord) (int, error) {
	args := m.Called(ctx, studentID, records)
	return args.Int(0), args.Error(1)
}

func (m *MockRecordRepository) InsertEssays(ctx context.Context, studentID int64, records []models.EssayRecord) (int, error) {
	args := m.Called(ctx, studentID, records)
	return args.Int(0), args.Error(1)
}

func (m *MockRecordRepository) DeleteStudent(ctx context.Context, studentID int64) error {
	args := m.Called(ctx, studentID)
	return args.Error(0)
}
