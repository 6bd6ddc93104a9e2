package series

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/vytor/enemresultados/internal/models"
)

// History merges practice exams and essays into one timeline, newest first.
// Undated events go last, keeping their relative order.
func History(simulados []models.SimuladoRecord, essays []models.EssayRecord) []models.HistoryEvent {
	events := make([]models.HistoryEvent, 0, len(simulados)+len(essays))
	for _, s := range simulados {
		events = append(events, simuladoEvent(s))
	}
	for _, e := range essays {
		events = append(events, essayEvent(e))
	}

	sort.SliceStable(events, func(i, j int) bool {
		a, b := events[i].OccurredAt, events[j].OccurredAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
	return events
}

func simuladoEvent(s models.SimuladoRecord) models.HistoryEvent {
	title := strings.TrimSpace(s.Title)
	if title == "" && len(s.Subjects) > 0 {
		title = strings.Join(s.Subjects, ", ")
	}
	if title == "" {
		title = "Simulado"
	}

	rate := s.AccuracyRate
	if math.IsNaN(rate) || math.IsInf(rate, 0) {
		rate = 0
	}
	if rate > 0 && rate <= 1 {
		rate *= 100
	}
	if rate == 0 && s.Total > 0 && s.Correct >= 0 {
		rate = float64(s.Correct) / float64(s.Total) * 100
	}
	rate = math.Max(0, math.Min(100, rate))

	return models.HistoryEvent{
		Kind:         models.EventSimulado,
		Title:        title,
		OccurredAt:   s.TakenAt,
		AccuracyRate: rate,
		Correct:      s.Correct,
		Total:        s.Total,
	}
}

func essayEvent(e models.EssayRecord) models.HistoryEvent {
	status := strings.ToLower(strings.TrimSpace(e.Status))

	var when *time.Time
	switch {
	case status == models.EssayStatusCorrected && e.CorrectedAt != nil:
		when = e.CorrectedAt
	case status == models.EssayStatusSent && e.SentAt != nil:
		when = e.SentAt
	case e.CreatedAt != nil:
		when = e.CreatedAt
	default:
		when = e.UpdatedAt
	}

	title := strings.TrimSpace(e.Theme)
	if title == "" {
		title = "Redação"
	}

	ev := models.HistoryEvent{
		Kind:       models.EventEssay,
		Title:      title,
		OccurredAt: when,
		Status:     status,
	}
	if status == models.EssayStatusCorrected {
		ev.Score = e.Score
	}
	return ev
}
