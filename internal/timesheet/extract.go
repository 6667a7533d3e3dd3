package timesheet

import (
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/zombor/timesheet-invoicer/internal/pay"
)

const (
	DefaultDescription = "Shift"
	DefaultLabelMarker = "CANDIDATE NAME"
)

// DefaultStopWords end a label when they follow the name on the same line
var DefaultStopWords = []string{"WORK", "EMAIL"}

// Extraction is the result of reading shifts out of recognized text
type Extraction struct {
	Label   string      `json:"label"`
	Shifts  []pay.Shift `json:"shifts"`
	RawText string      `json:"raw_text"`
}

// Extractor turns recognized timesheet text into priced shifts
type Extractor struct {
	calc        *pay.Calculator
	description string
	labelRe     *regexp.Regexp
	matchers    []Matcher
	timeSource  pay.TimeSource
}

// Option configures an Extractor
type Option func(*Extractor)

// WithDescription sets the description given to every extracted shift
func WithDescription(description string) Option {
	return func(e *Extractor) {
		e.description = description
	}
}

// WithLabelMarker sets the phrase that precedes the timesheet's name label
// and the words that end it
func WithLabelMarker(marker string, stopWords ...string) Option {
	return func(e *Extractor) {
		if len(stopWords) == 0 {
			stopWords = DefaultStopWords
		}
		e.labelRe = labelRegexp(marker, stopWords)
	}
}

// WithMatchers replaces the extraction strategies
func WithMatchers(matchers ...Matcher) Option {
	return func(e *Extractor) {
		e.matchers = matchers
	}
}

// WithTimeSource sets the clock used to fill in missing years
func WithTimeSource(ts pay.TimeSource) Option {
	return func(e *Extractor) {
		e.timeSource = ts
	}
}

func NewExtractor(calc *pay.Calculator, opts ...Option) *Extractor {
	e := &Extractor{
		calc:        calc,
		description: DefaultDescription,
		labelRe:     labelRegexp(DefaultLabelMarker, DefaultStopWords),
		matchers:    DefaultMatchers(),
		timeSource:  pay.SystemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// labelRegexp matches the marker, then captures letters and spaces up to a run
// of two or more spaces, a stop word or the end of the text
func labelRegexp(marker string, stopWords []string) *regexp.Regexp {
	words := strings.Fields(marker)
	for i, w := range words {
		words[i] = regexp.QuoteMeta(w)
	}
	stops := make([]string, len(stopWords))
	for i, w := range stopWords {
		stops[i] = regexp.QuoteMeta(w)
	}
	terminators := append([]string{`\s{2,}`}, stops...)
	terminators = append(terminators, `$`)
	return regexp.MustCompile(`(?i)` + strings.Join(words, `\s*`) + `[:\s]*([A-Za-z\s]+?)(?:` + strings.Join(terminators, "|") + `)`)
}

// Extract finds the label and every shift in text. Shifts come back sorted by
// date, oldest first, with unreadable dates last. An empty result is not an
// error; the caller falls back to manual entry.
func (e *Extractor) Extract(text string) Extraction {
	result := Extraction{
		Label:   e.label(text),
		Shifts:  []pay.Shift{},
		RawText: text,
	}

	year := e.timeSource.Now().Year()
	for _, m := range e.matchers {
		candidates := m.Match(text, year)
		if len(candidates) == 0 {
			continue
		}
		slog.Debug("Extracted shifts", "strategy", m.Name(), "count", len(candidates))
		for _, c := range candidates {
			result.Shifts = append(result.Shifts, e.calc.NewShift(e.description, c.Date, c.StartTime, c.EndTime, true))
		}
		break
	}

	sortByDate(result.Shifts)
	return result
}

func (e *Extractor) label(text string) string {
	if e.labelRe == nil {
		return ""
	}
	m := e.labelRe.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

func sortByDate(shifts []pay.Shift) {
	sort.SliceStable(shifts, func(i, j int) bool {
		a, aErr := time.Parse(time.DateOnly, shifts[i].Date)
		b, bErr := time.Parse(time.DateOnly, shifts[j].Date)
		switch {
		case aErr != nil:
			return false
		case bErr != nil:
			return true
		default:
			return a.Before(b)
		}
	})
}
