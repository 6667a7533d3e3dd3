package pay

import (
	"math"
	"regexp"
	"strconv"
)

var reClock = regexp.MustCompile(`(\d{1,2})[:.](\d{2})`)

// ClockTime is a wall-clock time of day
type ClockTime struct {
	Hour   int
	Minute int
}

// Minutes returns the minutes since midnight
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// ParseClockTime finds an "H:MM", "HH:MM", "H.MM" or "HH.MM" time in text.
// The second return value is false when text holds no such time.
func ParseClockTime(text string) (ClockTime, bool) {
	m := reClock.FindStringSubmatch(text)
	if m == nil {
		return ClockTime{}, false
	}
	h, _ := strconv.Atoi(m[1])
	mins, _ := strconv.Atoi(m[2])
	return ClockTime{Hour: h, Minute: mins}, true
}

// ComputeHours returns the hours between start and end rounded to 2 decimal
// places, or 0 if either time cannot be parsed.
//
// An end time earlier than the start (a shift crossing midnight) yields a
// negative result.
func ComputeHours(start, end string) float64 {
	s, ok := ParseClockTime(start)
	if !ok {
		return 0
	}
	e, ok := ParseClockTime(end)
	if !ok {
		return 0
	}
	diff := float64(e.Minutes() - s.Minutes())
	return round2(diff / 60)
}

// RoundToNearest rounds hours half away from zero to the nearest multiple of step.
// A non-positive step falls back to half hours.
func RoundToNearest(hours, step float64) float64 {
	if step <= 0 {
		step = 0.5
	}
	return math.Round(hours/step) * step
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
