package pay

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DueDate is printed on every invoice
const DueDate = "Upon Receipt"

// Totals summarises a set of shifts
type Totals struct {
	Days               int             `json:"days"`
	DailyTotal         decimal.Decimal `json:"daily_total"`
	OvertimeHoursTotal float64         `json:"overtime_hours_total"`
	OvertimeTotal      decimal.Decimal `json:"overtime_total"`
	Tax                decimal.Decimal `json:"tax"`
	GrandTotal         decimal.Decimal `json:"grand_total"`
}

// Invoice is the aggregate handed to renderers. It is rebuilt from the
// current shifts every time it is needed and never stored.
type Invoice struct {
	InvoiceNumber string  `json:"invoice_number"`
	InvoiceDate   string  `json:"invoice_date"` // ISO 8601
	DueDate       string  `json:"due_date"`
	Shifts        []Shift `json:"shifts"`
	Totals
}

// Totals folds shifts into invoice totals. An empty slice yields zeroes.
func (c *Calculator) Totals(shifts []Shift) Totals {
	otHours := decimal.Zero
	for _, s := range shifts {
		otHours = otHours.Add(decimal.NewFromFloat(s.OvertimeHours))
	}
	daily := c.rates.DailyRate.Mul(decimal.NewFromInt(int64(len(shifts))))
	otTotal := c.overtimePay(otHours)
	return Totals{
		Days:               len(shifts),
		DailyTotal:         daily,
		OvertimeHoursTotal: otHours.InexactFloat64(),
		OvertimeTotal:      otTotal,
		Tax:                decimal.Zero,
		GrandTotal:         daily.Add(otTotal),
	}
}

// Invoice builds the invoice aggregate for shifts
func (c *Calculator) Invoice(number, date string, shifts []Shift) Invoice {
	return Invoice{
		InvoiceNumber: number,
		InvoiceDate:   date,
		DueDate:       DueDate,
		Shifts:        shifts,
		Totals:        c.Totals(shifts),
	}
}

// FileBaseName returns a file-system safe name for the invoice export,
// e.g. "invoice_OCT_001" for prefix "invoice" and number "OCT/001".
func (inv Invoice) FileBaseName(prefix string) string {
	number := strings.NewReplacer("/", "_", "\\", "_", " ", "_").Replace(inv.InvoiceNumber)
	if prefix == "" {
		return number
	}
	if number == "" {
		return prefix
	}
	return fmt.Sprintf("%s_%s", prefix, number)
}

// InvoiceNumber formats a sequence number with the month prefix of t, e.g. "OCT/001"
func InvoiceNumber(t time.Time, sequence int) string {
	month := strings.ToUpper(t.Format("Jan"))
	return fmt.Sprintf("%s/%03d", month, sequence)
}
