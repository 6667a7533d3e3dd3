package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/zombor/timesheet-invoicer/internal/pay"
	"github.com/zombor/timesheet-invoicer/internal/render"
	"github.com/zombor/timesheet-invoicer/internal/scanning"
	"github.com/zombor/timesheet-invoicer/internal/timesheet"
)

// Status is the state of the most recent timesheet recognition
type Status string

const (
	StatusIdle       Status = "idle"
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	// StatusUnparsed means text was read but no shifts were found
	StatusUnparsed Status = "unparsed"
	StatusFailed   Status = "failed"
)

// Recognition describes the most recent upload
type Recognition struct {
	Status     Status    `json:"status"`
	Filename   string    `json:"filename,omitempty"`
	Label      string    `json:"label,omitempty"`
	ShiftCount int       `json:"shift_count"`
	Message    string    `json:"message,omitempty"`
	RawText    string    `json:"raw_text,omitempty"`
	StartedAt  time.Time `json:"started_at,omitzero"`
	FinishedAt time.Time `json:"finished_at,omitzero"`
}

// Document is a rendered invoice ready for download
type Document struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Config holds the session settings that come from flags
type Config struct {
	// OCRTimeout bounds a single recognition
	OCRTimeout time.Duration
	// FilePrefix starts every export file name, e.g. "invoice" gives invoice_OCT_001.pdf
	FilePrefix string
	// Description is given to shifts created by hand
	Description string
}

const (
	manualStart       = "06:00"
	manualEnd         = "18:00"
	addedStart        = "06:00"
	addedEnd          = "16:00"
	defaultOCRTimeout = 2 * time.Minute
)

// Service holds the single in-memory invoice session: the shift list, the
// rounding policy, invoice details and the status of the last upload
type Service struct {
	calc       *pay.Calculator
	scanner    scanning.Scanner
	extractor  *timesheet.Extractor
	renderers  map[string]render.Renderer
	timeSource pay.TimeSource
	cfg        Config

	mu            sync.Mutex
	state         State
	recognition   Recognition
	generation    int
	invoiceNumber string
	invoiceDate   string

	wg sync.WaitGroup
}

// NewService creates a new Service using the wall clock
func NewService(calc *pay.Calculator, scanner scanning.Scanner, extractor *timesheet.Extractor, renderers []render.Renderer, cfg Config) *Service {
	return NewServiceWithDeps(calc, scanner, extractor, renderers, cfg, pay.SystemClock{})
}

// NewServiceWithDeps creates a new Service with a custom time source for testing
func NewServiceWithDeps(calc *pay.Calculator, scanner scanning.Scanner, extractor *timesheet.Extractor, renderers []render.Renderer, cfg Config, timeSrc pay.TimeSource) *Service {
	if cfg.OCRTimeout <= 0 {
		cfg.OCRTimeout = defaultOCRTimeout
	}
	if cfg.Description == "" {
		cfg.Description = timesheet.DefaultDescription
	}
	byExt := make(map[string]render.Renderer, len(renderers))
	for _, r := range renderers {
		byExt[r.Extension()] = r
	}
	now := timeSrc.Now()
	return &Service{
		calc:          calc,
		scanner:       scanner,
		extractor:     extractor,
		renderers:     byExt,
		timeSource:    timeSrc,
		cfg:           cfg,
		state:         State{Shifts: []pay.Shift{}, RoundHours: true},
		recognition:   Recognition{Status: StatusIdle},
		invoiceNumber: pay.InvoiceNumber(now, 1),
		invoiceDate:   now.Format(time.DateOnly),
	}
}

// acceptedType reports whether contentType is something the scanners can read
func acceptedType(contentType string) bool {
	ct := strings.ToLower(strings.TrimSpace(contentType))
	if i := strings.Index(ct, ";"); i != -1 {
		ct = strings.TrimSpace(ct[:i])
	}
	return strings.HasPrefix(ct, "image/") || ct == "application/pdf"
}

var (
	reUnsafeFilename = regexp.MustCompile(`[^a-zA-Z0-9\s\-_]`)
	reSpaces         = regexp.MustCompile(`\s+`)
)

// sanitizeFilename keeps letters, digits, spaces, hyphens and underscores in
// the base name and truncates it to 50 characters
func sanitizeFilename(filename string) string {
	filename = path.Base(strings.ReplaceAll(filename, `\`, "/"))
	ext := path.Ext(filename)
	if ext == "." {
		ext = ""
	}
	base := strings.TrimSuffix(filename, ext)
	base = reUnsafeFilename.ReplaceAllString(base, "")
	base = strings.TrimSpace(reSpaces.ReplaceAllString(base, " "))
	if len(base) > 50 {
		base = base[:50]
	}
	if base == "" {
		base = "timesheet"
	}
	return base + ext
}

// ProcessTimesheet starts recognizing an uploaded timesheet in the background.
// Poll Status for the outcome. Only one upload is processed at a time.
func (s *Service) ProcessTimesheet(filename string, data []byte, contentType string) error {
	if !acceptedType(contentType) {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, contentType)
	}
	if len(data) == 0 {
		return fmt.Errorf("%w: empty file", ErrInvalidValue)
	}

	filename = sanitizeFilename(filename)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recognition.Status == StatusProcessing {
		return ErrRecognitionInFlight
	}
	s.generation++
	s.recognition = Recognition{
		Status:    StatusProcessing,
		Filename:  filename,
		StartedAt: s.timeSource.Now(),
	}

	slog.Info("Processing timesheet", "filename", filename, "content_type", contentType, "file_size", len(data))
	s.wg.Add(1)
	go s.recognize(s.generation, filename, data, contentType)
	return nil
}

func (s *Service) recognize(generation int, filename string, data []byte, contentType string) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.OCRTimeout)
	defer cancel()

	text, scanErr := s.scanner.ScanText(ctx, data, contentType)
	var extraction timesheet.Extraction
	if scanErr == nil {
		extraction = s.extractor.Extract(timesheet.Normalize(text))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if generation != s.generation {
		slog.Info("Discarding result of a superseded upload", "filename", filename)
		return
	}

	s.recognition.FinishedAt = s.timeSource.Now()
	switch {
	case scanErr != nil:
		slog.Error("Failed to scan timesheet",
			"filename", filename,
			"content_type", contentType,
			"file_size", len(data),
			"error", scanErr,
		)
		s.recognition.Status = StatusFailed
		s.recognition.Message = "Could not read the timesheet. Please enter shifts manually."
		s.seedManualEntry()
	case len(extraction.Shifts) == 0:
		slog.Warn("No shifts found in timesheet", "filename", filename)
		s.recognition.Status = StatusUnparsed
		s.recognition.Label = extraction.Label
		s.recognition.RawText = extraction.RawText
		s.recognition.Message = "Could not detect shifts automatically. Please enter manually."
		s.seedManualEntry()
	default:
		slog.Info("Extracted shifts", "filename", filename, "count", len(extraction.Shifts), "label", extraction.Label)
		s.recognition.Status = StatusSuccess
		s.recognition.Label = extraction.Label
		s.recognition.RawText = extraction.RawText
		s.recognition.ShiftCount = len(extraction.Shifts)
		s.state = State{Shifts: extraction.Shifts, RoundHours: s.state.RoundHours}
	}
}

// today is the current date in ISO form
func (s *Service) today() string {
	return s.timeSource.Now().Format(time.DateOnly)
}

// seedManualEntry replaces the shifts with a single full day. Callers hold mu.
func (s *Service) seedManualEntry() {
	shift := s.calc.NewShift(s.cfg.Description, s.today(), manualStart, manualEnd, s.state.RoundHours)
	s.state = State{Shifts: []pay.Shift{shift}, RoundHours: s.state.RoundHours}
}

// StartManualEntry skips recognition and starts from one 06:00-18:00 shift dated today
func (s *Service) StartManualEntry() ([]pay.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.recognition.Status == StatusProcessing {
		return nil, ErrRecognitionInFlight
	}
	s.seedManualEntry()
	s.recognition = Recognition{Status: StatusIdle}
	return slices.Clone(s.state.Shifts), nil
}

// AddShift appends a 06:00-16:00 shift dated today
func (s *Service) AddShift() (pay.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	shift := s.calc.NewShift(s.cfg.Description, s.today(), addedStart, addedEnd, s.state.RoundHours)
	if err := s.apply(ShiftAdded{Shift: shift}); err != nil {
		return pay.Shift{}, err
	}
	return shift, nil
}

// Apply runs an edit against the session's shifts and returns the result
func (s *Service) Apply(ev Event) ([]pay.Shift, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.apply(ev); err != nil {
		return nil, err
	}
	return slices.Clone(s.state.Shifts), nil
}

func (s *Service) apply(ev Event) error {
	next, err := Reduce(s.calc, s.state, ev)
	if err != nil {
		return err
	}
	s.state = next
	return nil
}

// Shifts returns a copy of the current shifts
func (s *Service) Shifts() []pay.Shift {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.state.Shifts)
}

// RoundHours reports whether hours are currently rounded
func (s *Service) RoundHours() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.RoundHours
}

// Status returns the state of the last upload
func (s *Service) Status() Recognition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.recognition
}

func (s *Service) SetInvoiceNumber(number string) error {
	number = strings.TrimSpace(number)
	if number == "" {
		return fmt.Errorf("%w: invoice number is required", ErrInvalidValue)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoiceNumber = number
	return nil
}

// SetInvoiceDate sets the invoice date, which must be YYYY-MM-DD
func (s *Service) SetInvoiceDate(date string) error {
	date = strings.TrimSpace(date)
	if _, err := time.Parse(time.DateOnly, date); err != nil {
		return fmt.Errorf("%w: invoice date %q", ErrInvalidValue, date)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.invoiceDate = date
	return nil
}

// Reset clears the shifts and upload status. Invoice details and the rounding
// policy are kept. A recognition still running is abandoned.
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.generation++
	s.state = State{Shifts: []pay.Shift{}, RoundHours: s.state.RoundHours}
	s.recognition = Recognition{Status: StatusIdle}
	slog.Info("Session reset")
}

// Invoice builds the invoice from the current shifts
func (s *Service) Invoice() pay.Invoice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calc.Invoice(s.invoiceNumber, s.invoiceDate, slices.Clone(s.state.Shifts))
}

// Export renders the current invoice in format ("pdf" or "xlsx")
func (s *Service) Export(format string) (*Document, error) {
	r, ok := s.renderers[strings.ToLower(format)]
	if !ok {
		return nil, fmt.Errorf("%w: export format %q", ErrUnsupportedType, format)
	}

	inv := s.Invoice()
	data, err := r.Render(inv)
	if err != nil {
		return nil, fmt.Errorf("rendering %s: %w", r.Extension(), err)
	}

	return &Document{
		Filename:    fmt.Sprintf("%s.%s", inv.FileBaseName(s.cfg.FilePrefix), r.Extension()),
		ContentType: r.ContentType(),
		Data:        data,
	}, nil
}

// Wait blocks until any running recognition has finished
func (s *Service) Wait() {
	s.wg.Wait()
}
