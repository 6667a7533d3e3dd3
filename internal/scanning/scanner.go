package scanning

import "context"

// Scanner reads the text off a timesheet image or PDF
type Scanner interface {
	// ScanText returns everything legible in the document, line breaks preserved
	ScanText(ctx context.Context, data []byte, contentType string) (string, error)
	// Close releases the scanner's resources
	Close() error
}
