package timesheet

import (
	"fmt"
	"regexp"
	"strings"
)

// shiftPattern matches a day/month date with an optional year followed by a
// start and end time, e.g. "01/02/2024 08:00 18:00" or "1\2 8.00 1800".
const shiftPattern = `(\d{1,2})[\\/](\d{1,2})(?:[\\/](\d{2,4}))?\s*(\d{1,2})[:.]?(\d{2})\s*(\d{1,2})[:.]?(\d{2})`

// Candidate is a shift found in text before any pay is derived
type Candidate struct {
	Date      string // ISO 8601 (YYYY-MM-DD)
	StartTime string // HH:MM
	EndTime   string // HH:MM
}

// Matcher is one extraction strategy. Strategies run in order and the first
// to return candidates wins.
type Matcher interface {
	Name() string
	Match(text string, currentYear int) []Candidate
}

// GlobalMatcher scans the whole text, newlines flattened, for every date and time pair
type GlobalMatcher struct {
	re *regexp.Regexp
}

// NewGlobalMatcher compiles the shift pattern for a whole-text scan
func NewGlobalMatcher() *GlobalMatcher {
	return &GlobalMatcher{re: regexp.MustCompile(`(?i)` + shiftPattern)}
}

// Name identifies the strategy in logs
func (m *GlobalMatcher) Name() string { return "global" }

func (m *GlobalMatcher) Match(text string, currentYear int) []Candidate {
	flat := strings.ReplaceAll(text, "\n", " ")
	var out []Candidate
	for _, sub := range m.re.FindAllStringSubmatch(flat, -1) {
		out = append(out, candidateFromGroups(sub[1:], currentYear))
	}
	return out
}

// WeekdayLineMatcher looks line by line for a weekday name ("Mon", "Tuesday")
// directly ahead of a date and time pair
type WeekdayLineMatcher struct {
	re *regexp.Regexp
}

// NewWeekdayLineMatcher compiles the shift pattern behind a weekday prefix
func NewWeekdayLineMatcher() *WeekdayLineMatcher {
	return &WeekdayLineMatcher{re: regexp.MustCompile(`(?i)(?:mon|tue|wed|thu|fri|sat|sun)[a-z]*\s*` + shiftPattern)}
}

// Name identifies the strategy in logs
func (m *WeekdayLineMatcher) Name() string { return "weekday-line" }

func (m *WeekdayLineMatcher) Match(text string, currentYear int) []Candidate {
	var out []Candidate
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		for _, sub := range m.re.FindAllStringSubmatch(line, -1) {
			out = append(out, candidateFromGroups(sub[1:], currentYear))
		}
	}
	return out
}

// DefaultMatchers returns the global scan followed by the weekday fallback
func DefaultMatchers() []Matcher {
	return []Matcher{NewGlobalMatcher(), NewWeekdayLineMatcher()}
}

// candidateFromGroups builds a candidate from the seven shiftPattern groups:
// day, month, year (may be empty), start hour, start minute, end hour, end minute.
func candidateFromGroups(g []string, currentYear int) Candidate {
	year := g[2]
	switch {
	case year == "":
		year = fmt.Sprintf("%d", currentYear)
	case len(year) == 2:
		year = "20" + year
	}
	return Candidate{
		Date:      fmt.Sprintf("%s-%s-%s", year, pad2(g[1]), pad2(g[0])),
		StartTime: fmt.Sprintf("%s:%s", pad2(g[3]), g[4]),
		EndTime:   fmt.Sprintf("%s:%s", pad2(g[5]), g[6]),
	}
}

func pad2(s string) string {
	if len(s) < 2 {
		return "0" + s
	}
	return s
}
