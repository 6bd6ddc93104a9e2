package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/vytor/enemresultados/internal/models"
)

// MockRecordSource is a mock implementation of repository.RecordSource,
// standing in for the upstream backend client.
type MockRecordSource struct {
	mock.Mock
}

func (m *MockRecordSource) Performance(ctx context.Context, studentID int64, periodDays int) ([]models.PerformanceRecord, error) {
	args := m.Called(ctx, studentID, periodDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.PerformanceRecord), args.Error(1)
}

func (m *MockRecordSource) Activity(ctx context.Context, studentID int64, periodDays int) ([]models.ActivityRecord, error) {
	args := m.Called(ctx, studentID, periodDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ActivityRecord), args.Error(1)
}

func (m *MockRecordSource) Simulados(ctx context.Context, studentID int64, periodDays int) ([]models.SimuladoRecord, error) {
	args := m.Called(ctx, studentID, periodDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.SimuladoRecord), args.Error(1)
}

func (m *MockRecordSource) Essays(ctx context.Context, studentID int64) ([]models.EssayRecord, error) {
	args := m.Called(ctx, studentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.EssayRecord), args.Error(1)
}
