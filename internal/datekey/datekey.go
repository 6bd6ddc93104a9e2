// Package datekey turns the date shapes the results API hands out into
// canonical yyyy-mm-dd day keys in a local time zone.
package datekey

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Layout is the canonical day key layout.
const Layout = "2006-01-02"

// WindowDays is the length of the line chart window.
const WindowDays = 7

type pattern struct {
	re      *regexp.Regexp
	y, m, d int
}

// Patterns are tried in order; the first one that matches decides the result.
var patterns = []pattern{
	{re: regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})$`), y: 1, m: 2, d: 3},
	{re: regexp.MustCompile(`^(\d{4})-(\d{2})-(\d{2})`), y: 1, m: 2, d: 3},
	{re: regexp.MustCompile(`^(\d{2})/(\d{2})/(\d{4})`), y: 3, m: 2, d: 1},
}

// Parse resolves v to local midnight in loc. Supported inputs are strings
// (yyyy-mm-dd, yyyy-mm-dd prefixed timestamps, dd/mm/yyyy and anything
// cast understands), epoch milliseconds and time values.
func Parse(v any, loc *time.Location) (time.Time, bool) {
	if loc == nil {
		loc = time.Local
	}

	switch x := v.(type) {
	case nil:
		return time.Time{}, false
	case time.Time:
		if x.IsZero() {
			return time.Time{}, false
		}
		return Midnight(x, loc), true
	case *time.Time:
		if x == nil {
			return time.Time{}, false
		}
		return Parse(*x, loc)
	case int:
		return fromMillis(float64(x), loc)
	case int64:
		return fromMillis(float64(x), loc)
	case float64:
		return fromMillis(x, loc)
	case string:
		return parseString(x, loc)
	default:
		return time.Time{}, false
	}
}

// Normalize returns the canonical key for v, or "" and false.
func Normalize(v any, loc *time.Location) (string, bool) {
	t, ok := Parse(v, loc)
	if !ok {
		return "", false
	}
	return Key(t), true
}

func parseString(raw string, loc *time.Location) (time.Time, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, false
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(s)
		if m == nil {
			continue
		}
		y, _ := strconv.Atoi(m[p.y])
		mo, _ := strconv.Atoi(m[p.m])
		d, _ := strconv.Atoi(m[p.d])
		return calendarDate(y, mo, d, loc)
	}

	t, err := cast.ToTimeInDefaultLocationE(s, loc)
	if err != nil || t.IsZero() {
		return time.Time{}, false
	}
	return Midnight(t, loc), true
}

// calendarDate rejects dates that time.Date would normalize, e.g. 31/02.
func calendarDate(y, m, d int, loc *time.Location) (time.Time, bool) {
	if m < 1 || m > 12 || d < 1 {
		return time.Time{}, false
	}
	t := time.Date(y, time.Month(m), d, 0, 0, 0, 0, loc)
	if t.Year() != y || int(t.Month()) != m || t.Day() != d {
		return time.Time{}, false
	}
	return t, true
}

func fromMillis(ms float64, loc *time.Location) (time.Time, bool) {
	if math.IsNaN(ms) || math.IsInf(ms, 0) {
		return time.Time{}, false
	}
	return Midnight(time.UnixMilli(int64(ms)), loc), true
}

// Midnight returns the start of t's calendar day as seen from loc.
func Midnight(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Key formats t in its own location.
func Key(t time.Time) string {
	return t.Format(Layout)
}

// Label is the short dd/mm form shown on the line chart axis.
func Label(t time.Time) string {
	return t.Format("02/01")
}

// Weekday maps t to 0=Monday..6=Sunday.
func Weekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// FromWeekday resolves a weekday index (0=Monday..6=Sunday) to the most
// recent such day on or before anchor.
func FromWeekday(idx int, anchor time.Time) (time.Time, bool) {
	if idx < 0 || idx > 6 {
		return time.Time{}, false
	}
	base := Midnight(anchor, anchor.Location())
	diff := (Weekday(base) - idx + 7) % 7
	return base.AddDate(0, 0, -diff), true
}

// Anchor is the latest of dates, or today in loc when dates is empty.
func Anchor(dates []time.Time, now time.Time, loc *time.Location) time.Time {
	var latest time.Time
	for _, d := range dates {
		if d.After(latest) {
			latest = d
		}
	}
	if latest.IsZero() {
		return Midnight(now, loc)
	}
	return Midnight(latest, loc)
}

// Window returns the n consecutive days ending at anchor, oldest first.
func Window(anchor time.Time, n int) []time.Time {
	if n <= 0 {
		return nil
	}
	out := make([]time.Time, n)
	for i := 0; i < n; i++ {
		out[i] = anchor.AddDate(0, 0, i-(n-1))
	}
	return out
}
