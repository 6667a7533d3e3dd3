package pay

import "github.com/shopspring/decimal"

// RateTable is the pay schedule applied to every shift.
//
// Pay is a flat day rate regardless of hours worked, plus OTRate for each hour
// beyond StandardHours.
type RateTable struct {
	DailyRate     decimal.Decimal
	OTRate        decimal.Decimal
	StandardHours float64
	RoundingStep  float64 // granularity used when rounding is enabled
}

// DefaultRates returns the standard schedule: £140/day, £14/hour overtime after 10 hours
func DefaultRates() RateTable {
	return RateTable{
		DailyRate:     decimal.NewFromInt(140),
		OTRate:        decimal.NewFromInt(14),
		StandardHours: 10,
		RoundingStep:  0.5,
	}
}
