package series

import (
	"math"
	"time"

	"github.com/vytor/enemresultados/internal/datekey"
	"github.com/vytor/enemresultados/internal/models"
)

// NormalizeAccuracy turns a raw accuracy into an integer percentage.
// Values in (0,1] are read as fractions, so a true 1% comes out as 100.
func NormalizeAccuracy(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v > 0 && v <= 1 {
		return int(math.Round(v * 100))
	}
	return clampPercent(math.Round(v))
}

func clampPercent(v float64) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return int(v)
}

// AnchorFor is the latest dated record's day, or today when nothing is dated.
func AnchorFor(records []models.PerformanceRecord, now time.Time, loc *time.Location) time.Time {
	var dates []time.Time
	for _, r := range records {
		if r.TakenAt != nil {
			dates = append(dates, *r.TakenAt)
		}
	}
	return datekey.Anchor(dates, now, loc)
}

// resolveDay places a record on a calendar day relative to anchor.
func resolveDay(takenAt *time.Time, weekday *int, anchor time.Time) (time.Time, bool) {
	if takenAt != nil {
		return datekey.Midnight(*takenAt, anchor.Location()), true
	}
	if weekday != nil {
		return datekey.FromWeekday(*weekday, anchor)
	}
	return time.Time{}, false
}

// BucketLine builds the 7-day line series ending at anchor. Days without a
// record carry the previous value forward, starting from 0. When several
// records land on the same subject and day the last one wins. An empty
// subjects list charts every subject in first-seen order.
func BucketLine(records []models.PerformanceRecord, anchor time.Time, subjects []string) models.ChartSeries {
	days := datekey.Window(anchor, datekey.WindowDays)

	out := models.ChartSeries{
		DateKeys:        make([]string, len(days)),
		Labels:          make([]string, len(days)),
		SeriesBySubject: make(map[string][]int),
	}
	dayIndex := make(map[string]int, len(days))
	for i, d := range days {
		key := datekey.Key(d)
		out.DateKeys[i] = key
		out.Labels[i] = datekey.Label(d)
		dayIndex[key] = i
	}

	if len(subjects) == 0 {
		seen := map[string]bool{}
		for _, r := range records {
			name := DisplayName(r.Subject)
			if name != "" && !seen[name] {
				seen[name] = true
				subjects = append(subjects, name)
			}
		}
	}
	out.Subjects = append([]string(nil), subjects...)

	type observed struct {
		values [datekey.WindowDays]int
		has    [datekey.WindowDays]bool
	}
	bySubject := make(map[string]*observed, len(subjects))
	for _, s := range subjects {
		bySubject[DisplayName(s)] = &observed{}
	}

	for _, r := range records {
		name := DisplayName(r.Subject)
		if name == "" {
			continue
		}
		obs, ok := bySubject[name]
		if !ok {
			continue
		}
		day, ok := resolveDay(r.TakenAt, r.Weekday, anchor)
		if !ok {
			continue
		}
		i, ok := dayIndex[datekey.Key(day)]
		if !ok {
			continue
		}
		obs.values[i] = NormalizeAccuracy(r.AccuracyRate)
		obs.has[i] = true
	}

	for _, s := range subjects {
		obs := bySubject[DisplayName(s)]
		series := make([]int, len(days))
		last := 0
		for i := range days {
			if obs.has[i] {
				last = obs.values[i]
			}
			series[i] = last
		}
		out.SeriesBySubject[s] = series
	}
	return out
}
