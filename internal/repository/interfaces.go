package repository

import (
	"context"

	"github.com/vytor/enemresultados/internal/models"
)

// RecordSource supplies the records a snapshot is built from. periodDays
// bounds how far back dated records are read; zero or less means no bound.
type RecordSource interface {
	Performance(ctx context.Context, studentID int64, periodDays int) ([]models.PerformanceRecord, error)
	Activity(ctx context.Context, studentID int64, periodDays int) ([]models.ActivityRecord, error)
	Simulados(ctx context.Context, studentID int64, periodDays int) ([]models.SimuladoRecord, error)
	Essays(ctx context.Context, studentID int64) ([]models.EssayRecord, error)
}

// RecordRepository is the local record store fed by the ingest endpoints.
type RecordRepository interface {
	RecordSource
	InsertPerformance(ctx context.Context, studentID int64, records []models.PerformanceRecord) (int, error)
	InsertActivity(ctx context.Context, studentID int64, records []models.ActivityRecord) (int, error)
	InsertSimulados(ctx context.Context, studentID int64, records []models.SimuladoRecord) (int, error)
	InsertEssays(ctx context.Context, studentID int64, records []models.EssayRecord) (int, error)
	DeleteStudent(ctx context.Context, studentID int64) error
}
