package series

import (
	"math"
	"time"

	"github.com/vytor/enemresultados/internal/models"
)

// BuildRadar averages normalized accuracy per area over the period ending at
// anchor (Current) and over the equally long period right before it
// (Previous). Areas without records read 0.
func BuildRadar(records []models.PerformanceRecord, anchor time.Time, periodDays int) models.RadarSeries {
	if periodDays < 1 {
		periodDays = 1
	}
	currentFrom := anchor.AddDate(0, 0, -(periodDays - 1))
	previousFrom := anchor.AddDate(0, 0, -(2*periodDays - 1))

	n := len(Areas)
	curSum, prevSum := make([]float64, n), make([]float64, n)
	curCnt, prevCnt := make([]int, n), make([]int, n)

	for _, r := range records {
		idx := areaIndex(DisplayName(r.Subject))
		if idx < 0 {
			continue
		}
		day, ok := resolveDay(r.TakenAt, r.Weekday, anchor)
		if !ok || day.After(anchor) {
			continue
		}
		v := float64(NormalizeAccuracy(r.AccuracyRate))
		switch {
		case !day.Before(currentFrom):
			curSum[idx] += v
			curCnt[idx]++
		case !day.Before(previousFrom):
			prevSum[idx] += v
			prevCnt[idx]++
		}
	}

	out := models.RadarSeries{
		Labels:   AreaNames(),
		Current:  make([]int, n),
		Previous: make([]int, n),
	}
	for i := 0; i < n; i++ {
		out.Current[i] = mean(curSum[i], curCnt[i])
		out.Previous[i] = mean(prevSum[i], prevCnt[i])
	}
	return out
}

func areaIndex(name string) int {
	for i, a := range Areas {
		if a.Name == name {
			return i
		}
	}
	return -1
}

func mean(sum float64, n int) int {
	if n == 0 {
		return 0
	}
	return clampPercent(math.Round(sum / float64(n)))
}
