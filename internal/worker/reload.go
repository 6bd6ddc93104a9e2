package worker

import (
	"context"

	"github.com/vytor/enemresultados/internal/logger"
	"github.com/vytor/enemresultados/internal/metrics"
	"github.com/vytor/enemresultados/internal/models"
)

// SnapshotLoader rebuilds a student's snapshot.
// This avoids import cycles by not importing the services package
type SnapshotLoader interface {
	LoadSnapshot(ctx context.Context, studentID int64, period int) (*models.Snapshot, error)
}

// ReloadSnapshotJob loads a fresh snapshot in the background. Jobs for the
// same student are not ordered; the last one to finish replaces the others.
type ReloadSnapshotJob struct {
	Loader    SnapshotLoader
	StudentID int64
	Period    int
}

func (j *ReloadSnapshotJob) Name() string { return "reload_snapshot" }

func (j *ReloadSnapshotJob) Run(ctx context.Context) error {
	log := logger.FromContext(ctx).WithFields(map[string]any{
		"student_id": j.StudentID,
		"period":     j.Period,
	})
	metrics.SnapshotLoads.WithLabelValues("reload").Inc()

	snap, err := j.Loader.LoadSnapshot(ctx, j.StudentID, j.Period)
	if err != nil {
		return err
	}
	log.Debug("snapshot %s reloaded", snap.ID)
	return nil
}
