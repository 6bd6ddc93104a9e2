package models

import (
	"time"

	"github.com/google/uuid"
)

// ChartSeries is the 7-day line chart input. Every entry of SeriesBySubject
// has len(DateKeys) values in [0,100].
type ChartSeries struct {
	DateKeys        []string         `json:"date_keys"`
	Labels          []string         `json:"labels"`
	Subjects        []string         `json:"subjects"`
	SeriesBySubject map[string][]int `json:"series_by_subject"`
}

type BarSeries struct {
	Labels    []string  `json:"labels"`
	Questions []float64 `json:"questions"`
	Minutes   []float64 `json:"minutes"`
}

type RadarSeries struct {
	Labels   []string `json:"labels"`
	Current  []int    `json:"current"`
	Previous []int    `json:"previous"`
}

const (
	EventSimulado = "simulado"
	EventEssay    = "redacao"
)

type HistoryEvent struct {
	Kind         string     `json:"kind"`
	Title        string     `json:"title"`
	OccurredAt   *time.Time `json:"occurred_at,omitempty"`
	AccuracyRate float64    `json:"accuracy_rate,omitempty"`
	Correct      int        `json:"correct,omitempty"`
	Total        int        `json:"total,omitempty"`
	Status       string     `json:"status,omitempty"`
	Score        *float64   `json:"score,omitempty"`
}

// SubjectScore is one subject's mean accuracy over the current period.
type SubjectScore struct {
	Subject      string  `json:"subject"`
	AccuracyRate float64 `json:"accuracy_rate"`
}

type Summary struct {
	AccuracyRate         float64 `json:"accuracy_rate"`
	AccuracyDelta        float64 `json:"accuracy_delta"`
	QuestionsSolved      float64 `json:"questions_solved"`
	QuestionsDelta       float64 `json:"questions_delta"`
	StudyMinutes         float64 `json:"study_minutes"`
	StudyHours           float64 `json:"study_hours"`
	AvgQuestionsPerDay   float64 `json:"avg_questions_per_day"`
	AvgMinutesPerDay     float64 `json:"avg_minutes_per_day"`
	EstimatedScore       int     `json:"estimated_score"`
	BestWeekday          string  `json:"best_weekday"`
	BestWeekdayQuestions float64 `json:"best_weekday_questions"`
	StreakDays           int     `json:"streak_days"`
	// Best and Worst hold up to five subjects, highest and lowest first.
	Best  []SubjectScore `json:"best"`
	Worst []SubjectScore `json:"worst"`
}

// Snapshot is everything the results page charts need for one student,
// built in one pass from one data load. It is never mutated after Build.
type Snapshot struct {
	ID        uuid.UUID      `json:"id"`
	StudentID int64          `json:"student_id"`
	Period    int            `json:"period"`
	Anchor    time.Time      `json:"anchor"`
	LoadedAt  time.Time      `json:"loaded_at"`
	Radar     RadarSeries    `json:"radar"`
	Line      ChartSeries    `json:"line"`
	Bar       BarSeries      `json:"bar"`
	History   []HistoryEvent `json:"history"`
	Summary   Summary        `json:"summary"`
}
