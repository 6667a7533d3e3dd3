package pay

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Shift is one worked day on a timesheet with its derived pay
type Shift struct {
	ID            string          `json:"id"`
	Description   string          `json:"description"`
	Date          string          `json:"date"`       // ISO 8601 (YYYY-MM-DD)
	StartTime     string          `json:"start_time"` // HH:MM
	EndTime       string          `json:"end_time"`   // HH:MM
	Hours         float64         `json:"hours"`
	OvertimeHours float64         `json:"overtime_hours"`
	Rate          decimal.Decimal `json:"rate"`
	Amount        decimal.Decimal `json:"amount"`
}

// IDGenerator generates unique IDs for shifts
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time
type TimeSource interface {
	Now() time.Time
}

// uuidGenerator generates random (v4) UUIDs
type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

// SystemClock provides the wall-clock time
type SystemClock struct{}

// Now returns time.Now()
func (SystemClock) Now() time.Time {
	return time.Now()
}
