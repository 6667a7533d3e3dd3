package pay

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount
const CurrencySymbol = "£"

// FormatCurrency renders an amount with two decimal places, e.g. "£14.50"
func FormatCurrency(amount decimal.Decimal) string {
	return CurrencySymbol + amount.StringFixed(2)
}

// FormatHours renders hours without trailing zeros, e.g. "10", "10.5"
func FormatHours(hours float64) string {
	return strconv.FormatFloat(hours, 'f', -1, 64)
}

// FormatDate converts an ISO date (YYYY-MM-DD) to DD/MM/YYYY.
// Dates that do not parse are returned unchanged.
func FormatDate(iso string) string {
	t, err := time.Parse(time.DateOnly, iso)
	if err != nil {
		return iso
	}
	return t.Format("02/01/2006")
}
