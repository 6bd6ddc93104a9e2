package series

import (
	"math"

	"github.com/vytor/enemresultados/internal/datekey"
	"github.com/vytor/enemresultados/internal/models"
)

// WeekdayLabels are the bar chart group labels, Monday first.
var WeekdayLabels = []string{"Seg", "Ter", "Qua", "Qui", "Sex", "Sáb", "Dom"}

// WeekdayNames are the long forms used in the summary cards.
var WeekdayNames = []string{
	"Segunda-feira", "Terça-feira", "Quarta-feira", "Quinta-feira",
	"Sexta-feira", "Sábado", "Domingo",
}

// BucketActivity folds activity records into per-weekday bars. If any record
// carries a weekday index only indexed records count; otherwise dated records
// land on their own weekday. A later record for the same weekday replaces the
// earlier one.
func BucketActivity(records []models.ActivityRecord) models.BarSeries {
	out := models.BarSeries{
		Labels:    append([]string(nil), WeekdayLabels...),
		Questions: make([]float64, len(WeekdayLabels)),
		Minutes:   make([]float64, len(WeekdayLabels)),
	}

	usedIndex := false
	for _, r := range records {
		if r.Weekday == nil || *r.Weekday < 0 || *r.Weekday > 6 {
			continue
		}
		out.Questions[*r.Weekday] = sanitizeCount(r.QuestionsCount)
		out.Minutes[*r.Weekday] = sanitizeCount(r.MinutesSpent)
		usedIndex = true
	}
	if usedIndex {
		return out
	}

	for _, r := range records {
		if r.TakenAt == nil {
			continue
		}
		i := datekey.Weekday(*r.TakenAt)
		out.Questions[i] = sanitizeCount(r.QuestionsCount)
		out.Minutes[i] = sanitizeCount(r.MinutesSpent)
	}
	return out
}

func sanitizeCount(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}
