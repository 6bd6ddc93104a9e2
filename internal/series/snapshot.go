package series

import (
	"time"

	"github.com/google/uuid"
	"github.com/vytor/enemresultados/internal/models"
)

// Input is one complete data load for a student.
type Input struct {
	StudentID   int64
	Period      int
	Performance []models.PerformanceRecord
	Activity    []models.ActivityRecord
	Simulados   []models.SimuladoRecord
	Essays      []models.EssayRecord
}

// Build shapes a data load into a fresh snapshot. All charts share one
// anchor: the latest dated performance record, or today in loc.
func Build(in Input, now time.Time, loc *time.Location) *models.Snapshot {
	anchor := AnchorFor(in.Performance, now, loc)
	bar := BucketActivity(in.Activity)

	return &models.Snapshot{
		ID:        uuid.New(),
		StudentID: in.StudentID,
		Period:    in.Period,
		Anchor:    anchor,
		LoadedAt:  now,
		Radar:     BuildRadar(in.Performance, anchor, in.Period),
		Line:      BucketLine(in.Performance, anchor, AreaNames()),
		Bar:       bar,
		History:   History(in.Simulados, in.Essays),
		Summary:   Summarize(in.Performance, in.Activity, bar, anchor, in.Period),
	}
}
