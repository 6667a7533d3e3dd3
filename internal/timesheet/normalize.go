package timesheet

import (
	"regexp"
	"strings"
)

var (
	rePipes      = regexp.MustCompile(`\|`)
	reWhitespace = regexp.MustCompile(`[\s\p{Z}]+`)
	reLetterO    = regexp.MustCompile(`[oO](\d)`)
	reLetterL    = regexp.MustCompile(`[lI](\d)`)
)

// Normalize cleans common OCR artifacts from recognized text.
//
// Column separators read as "|" are dropped, whitespace (including newlines)
// collapses to single spaces, and the letters o/O and l/I are read as 0 and 1
// when a digit follows them.
func Normalize(text string) string {
	text = rePipes.ReplaceAllString(text, "")
	text = reWhitespace.ReplaceAllString(text, " ")
	// a substitution can put a digit after another confusable letter ("Ol5"),
	// so repeat until nothing changes
	for {
		next := reLetterO.ReplaceAllString(text, "0$1")
		next = reLetterL.ReplaceAllString(next, "1$1")
		if next == text {
			break
		}
		text = next
	}
	return strings.TrimSpace(text)
}
