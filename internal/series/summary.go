package series

import (
	"math"
	"sort"
	"time"

	"github.com/vytor/enemresultados/internal/datekey"
	"github.com/vytor/enemresultados/internal/models"
)

const (
	baseScore = 300
	maxScore  = 1000

	rankedSubjects = 5
)

// EstimatedScore projects an accuracy percentage onto the ENEM 300-1000 scale.
func EstimatedScore(accuracy float64) int {
	if math.IsNaN(accuracy) || math.IsInf(accuracy, 0) {
		accuracy = 0
	}
	accuracy = math.Max(0, math.Min(100, accuracy))
	return int(math.Round(baseScore + accuracy/100*(maxScore-baseScore)))
}

// periods splits time into the current period [from, anchor] and the one of
// equal length right before it.
type periods struct {
	anchor, from, prevFrom time.Time
}

func newPeriods(anchor time.Time, days int) periods {
	if days < 1 {
		days = 1
	}
	return periods{
		anchor:   anchor,
		from:     anchor.AddDate(0, 0, -(days - 1)),
		prevFrom: anchor.AddDate(0, 0, -(2*days - 1)),
	}
}

// of returns 0 for the current period, 1 for the previous one, -1 otherwise.
func (p periods) of(day time.Time) int {
	switch {
	case day.After(p.anchor) || day.Before(p.prevFrom):
		return -1
	case day.Before(p.from):
		return 1
	default:
		return 0
	}
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// Summarize computes the headline numbers for the period ending at anchor.
// Deltas compare against the period of the same length just before it.
func Summarize(records []models.PerformanceRecord, activity []models.ActivityRecord, bar models.BarSeries, anchor time.Time, periodDays int) models.Summary {
	p := newPeriods(anchor, periodDays)
	active := make(map[string]bool)

	var sum [2]float64
	var n [2]int
	bySubject := make(map[string][]int)
	for _, r := range records {
		day, ok := resolveDay(r.TakenAt, r.Weekday, anchor)
		if !ok {
			continue
		}
		if !day.After(anchor) {
			active[datekey.Key(day)] = true
		}
		w := p.of(day)
		if w < 0 {
			continue
		}
		acc := NormalizeAccuracy(r.AccuracyRate)
		sum[w] += float64(acc)
		n[w]++
		if name := DisplayName(r.Subject); w == 0 && name != "" {
			bySubject[name] = append(bySubject[name], acc)
		}
	}

	s := models.Summary{Best: []models.SubjectScore{}, Worst: []models.SubjectScore{}}
	if n[0] > 0 {
		s.AccuracyRate = round1(sum[0] / float64(n[0]))
	}
	if n[0] > 0 && n[1] > 0 {
		s.AccuracyDelta = round1(sum[0]/float64(n[0]) - sum[1]/float64(n[1]))
	}
	s.EstimatedScore = EstimatedScore(s.AccuracyRate)
	s.Best, s.Worst = rankSubjects(bySubject)

	var questions [2]float64
	for _, r := range activity {
		day, ok := resolveDay(r.TakenAt, r.Weekday, anchor)
		if !ok {
			continue
		}
		q, m := sanitizeCount(r.QuestionsCount), sanitizeCount(r.MinutesSpent)
		if (q > 0 || m > 0) && !day.After(anchor) {
			active[datekey.Key(day)] = true
		}
		if w := p.of(day); w >= 0 {
			questions[w] += q
		}
	}
	s.QuestionsDelta = questions[0] - questions[1]
	s.StreakDays = streak(active, anchor)

	best := -1
	for i, q := range bar.Questions {
		s.QuestionsSolved += q
		if q > 0 && (best < 0 || q > bar.Questions[best]) {
			best = i
		}
	}
	for _, m := range bar.Minutes {
		s.StudyMinutes += m
	}
	if best >= 0 && best < len(WeekdayNames) {
		s.BestWeekday = WeekdayNames[best]
		s.BestWeekdayQuestions = bar.Questions[best]
	}
	s.StudyHours = round1(s.StudyMinutes / 60)
	s.AvgQuestionsPerDay = round1(s.QuestionsSolved / datekey.WindowDays)
	s.AvgMinutesPerDay = round1(s.StudyMinutes / datekey.WindowDays)
	return s
}

// rankSubjects orders subjects by mean accuracy and returns the top and the
// bottom few. Ties break on the subject name.
func rankSubjects(bySubject map[string][]int) (best, worst []models.SubjectScore) {
	scores := make([]models.SubjectScore, 0, len(bySubject))
	for name, accs := range bySubject {
		var total float64
		for _, a := range accs {
			total += float64(a)
		}
		scores = append(scores, models.SubjectScore{Subject: name, AccuracyRate: round1(total / float64(len(accs)))})
	}

	sort.Slice(scores, func(i, j int) bool {
		if scores[i].AccuracyRate != scores[j].AccuracyRate {
			return scores[i].AccuracyRate > scores[j].AccuracyRate
		}
		return scores[i].Subject < scores[j].Subject
	})
	best = append([]models.SubjectScore{}, scores[:min(rankedSubjects, len(scores))]...)

	sort.SliceStable(scores, func(i, j int) bool {
		if scores[i].AccuracyRate != scores[j].AccuracyRate {
			return scores[i].AccuracyRate < scores[j].AccuracyRate
		}
		return scores[i].Subject < scores[j].Subject
	})
	worst = append([]models.SubjectScore{}, scores[:min(rankedSubjects, len(scores))]...)
	return best, worst
}

// streak counts consecutive active days ending at anchor.
func streak(active map[string]bool, anchor time.Time) int {
	n := 0
	for d := anchor; active[datekey.Key(d)]; d = d.AddDate(0, 0, -1) {
		n++
	}
	return n
}
