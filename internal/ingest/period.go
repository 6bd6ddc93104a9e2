package ingest

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultPeriod is used when the period filter is missing or unreadable.
const DefaultPeriod = 30

var namedPeriods = map[string]int{
	"ULT_7_DIAS":  7,
	"ULT_15_DIAS": 15,
	"ULT_30_DIAS": 30,
	"ULT_60_DIAS": 60,
	"ULT_90_DIAS": 90,
	"7_DIAS":      7,
	"15_DIAS":     15,
	"30_DIAS":     30,
	"60_DIAS":     60,
	"90_DIAS":     90,
}

var (
	allDigits = regexp.MustCompile(`^\d+$`)
	digitRun  = regexp.MustCompile(`\d{1,3}`)
)

// ParsePeriod reads the page's period filter ("30", "ULT_7_DIAS",
// "ultimos 15 dias", ...) as a number of days. def is returned when nothing
// usable is found; a def below 1 falls back to DefaultPeriod.
func ParsePeriod(raw string, def int) int {
	if def < 1 {
		def = DefaultPeriod
	}
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return def
	}

	if allDigits.MatchString(s) {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
		return def
	}
	if n, ok := namedPeriods[s]; ok {
		return n
	}
	if m := digitRun.FindString(s); m != "" {
		if n, err := strconv.Atoi(m); err == nil && n > 0 {
			return n
		}
	}
	return def
}
