package pay

import "github.com/shopspring/decimal"

// Calculator derives hours, overtime and pay for shifts under a RateTable
type Calculator struct {
	rates       RateTable
	idGenerator IDGenerator
}

// NewCalculator creates a Calculator that identifies shifts with random UUIDs
func NewCalculator(rates RateTable) *Calculator {
	return NewCalculatorWithDeps(rates, &uuidGenerator{})
}

// NewCalculatorWithDeps creates a Calculator with a custom ID generator for testing
func NewCalculatorWithDeps(rates RateTable, idGen IDGenerator) *Calculator {
	if rates.RoundingStep <= 0 {
		rates.RoundingStep = 0.5
	}
	return &Calculator{rates: rates, idGenerator: idGen}
}

// Rates returns the schedule the calculator applies
func (c *Calculator) Rates() RateTable {
	return c.rates
}

// OvertimeHours returns the hours worked beyond the standard threshold, never negative
func (c *Calculator) OvertimeHours(totalHours float64) float64 {
	if totalHours <= c.rates.StandardHours {
		return 0
	}
	// subtract in decimal so 10.3 - 10 is 0.3 rather than 0.3000000000000007
	ot := decimal.NewFromFloat(totalHours).Sub(decimal.NewFromFloat(c.rates.StandardHours))
	return ot.InexactFloat64()
}

// ShiftAmount returns the pay for one shift: the daily rate plus overtime.
// Hours do not enter the formula; short days are paid in full.
func (c *Calculator) ShiftAmount(hours, overtimeHours float64) decimal.Decimal {
	return c.rates.DailyRate.Add(c.overtimePay(decimal.NewFromFloat(overtimeHours)))
}

// overtimePay is exact; amounts are rounded to the penny only when formatted
func (c *Calculator) overtimePay(otHours decimal.Decimal) decimal.Decimal {
	return otHours.Mul(c.rates.OTRate)
}

// ShiftHours computes hours between start and end, rounded to the table's
// step when round is set
func (c *Calculator) ShiftHours(start, end string, round bool) float64 {
	hours := ComputeHours(start, end)
	if round {
		hours = RoundToNearest(hours, c.rates.RoundingStep)
	}
	return hours
}

// NewShift creates a shift with a fresh ID and all derived fields computed from its times
func (c *Calculator) NewShift(description, date, startTime, endTime string, round bool) Shift {
	return c.Recalculate(Shift{
		ID:          c.idGenerator.Generate(),
		Description: description,
		Date:        date,
		StartTime:   startTime,
		EndTime:     endTime,
		Rate:        c.rates.DailyRate,
	}, round)
}

// Recalculate recomputes hours, overtime and amount from the shift's start and
// end times, discarding any manual overrides.
func (c *Calculator) Recalculate(s Shift, round bool) Shift {
	s.Hours = c.ShiftHours(s.StartTime, s.EndTime, round)
	return c.WithHours(s, s.Hours)
}

// WithHours sets hours directly and derives overtime and amount from them.
// Start and end times are left untouched.
func (c *Calculator) WithHours(s Shift, hours float64) Shift {
	s.Hours = hours
	return c.WithOvertime(s, c.OvertimeHours(hours))
}

// WithOvertime sets overtime hours directly and derives the amount
func (c *Calculator) WithOvertime(s Shift, overtimeHours float64) Shift {
	s.OvertimeHours = overtimeHours
	s.Amount = c.ShiftAmount(s.Hours, overtimeHours)
	return s
}
