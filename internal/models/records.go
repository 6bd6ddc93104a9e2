package models

import "time"

// PerformanceRecord is one accuracy observation for a subject.
// TakenAt is local midnight of the day it was taken. Weekday (0=Mon..6=Sun)
// is set when the source only reported a weekday index.
type PerformanceRecord struct {
	Subject      string     `json:"subject"`
	TakenAt      *time.Time `json:"taken_at,omitempty"`
	Weekday      *int       `json:"weekday,omitempty"`
	AccuracyRate float64    `json:"accuracy_rate"`
}

type ActivityRecord struct {
	Weekday        *int       `json:"weekday,omitempty"`
	TakenAt        *time.Time `json:"taken_at,omitempty"`
	QuestionsCount float64    `json:"questions_count"`
	MinutesSpent   float64    `json:"minutes_spent"`
}

// SimuladoRecord is a finished practice exam.
type SimuladoRecord struct {
	Title        string     `json:"title"`
	Subjects     []string   `json:"subjects,omitempty"`
	TakenAt      *time.Time `json:"taken_at,omitempty"`
	Total        int        `json:"total"`
	Correct      int        `json:"correct"`
	AccuracyRate float64    `json:"accuracy_rate"`
}

// EssayRecord is a submitted redação. Score is only meaningful once the
// essay has been corrected.
type EssayRecord struct {
	Theme       string     `json:"theme"`
	Status      string     `json:"status"`
	Score       *float64   `json:"score,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
	SentAt      *time.Time `json:"sent_at,omitempty"`
	CorrectedAt *time.Time `json:"corrected_at,omitempty"`
}

const (
	EssayStatusCorrected = "corrigida"
	EssayStatusSent      = "enviada"
)
