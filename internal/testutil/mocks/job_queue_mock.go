package mocks

import (
	"github.com/stretchr/testify/mock"
)

// MockJobQueue is a mock implementation of jobs.JobQueue
type MockJobQueue struct {
	mock.Mock
}

func (m *MockJobQueue) EnqueueReload(studentID int64, period int) error {
	args := m.Called(studentID, period)
	return args.Error(0)
}
