package render

import (
	"fmt"

	"github.com/zombor/timesheet-invoicer/internal/pay"
)

// Renderer turns an invoice into a downloadable document
type Renderer interface {
	Render(inv pay.Invoice) ([]byte, error)
	// Extension is the file extension without the dot
	Extension() string
	ContentType() string
}

// tableHeaders are the shift table columns in both formats
var tableHeaders = []string{"DESCRIPTION", "DATE", "START", "END", "HRS", "OT HRS", "RATE", "AMOUNT"}

const (
	thankYou       = "Thank you for your business!"
	paymentHeading = "PAYMENT DETAILS"
)

func overtimeNote(rates pay.RateTable) string {
	return fmt.Sprintf("* Overtime: Hours beyond %shrs @ %s%s/hr",
		pay.FormatHours(rates.StandardHours), pay.CurrencySymbol, rates.OTRate.String())
}

func dailyTotalLabel(days int) string {
	return fmt.Sprintf("Daily Total (%d days)", days)
}

func overtimeTotalLabel(hours float64) string {
	return fmt.Sprintf("OT Total (%s hrs)", pay.FormatHours(hours))
}

// shiftRow is a shift formatted for display, in tableHeaders order
func shiftRow(s pay.Shift) []string {
	return []string{
		s.Description,
		pay.FormatDate(s.Date),
		s.StartTime,
		s.EndTime,
		pay.FormatHours(s.Hours),
		pay.FormatHours(s.OvertimeHours),
		pay.FormatCurrency(s.Rate),
		pay.FormatCurrency(s.Amount),
	}
}

// bankLines are the payment details printed under PAYMENT DETAILS
func bankLines(c Company) []string {
	lines := []string{}
	for _, l := range [][2]string{
		{"Bank", c.BankName},
		{"Account Name", c.AccountName},
		{"Account Number", c.AccountNumber},
		{"Sort Code", c.SortCode},
	} {
		if l[1] != "" {
			lines = append(lines, fmt.Sprintf("%s: %s", l[0], l[1]))
		}
	}
	return lines
}
