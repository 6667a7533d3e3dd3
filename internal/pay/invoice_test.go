package pay

import (
	"time"

	"github.com/shopspring/decimal"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Totals", func() {
	var calc *Calculator

	BeforeEach(func() {
		calc = NewCalculatorWithDeps(DefaultRates(), &sequenceIDs{})
	})

	When("there are no shifts", func() {
		It("returns all-zero totals", func() {
			totals := calc.Totals(nil)
			Expect(totals.Days).To(Equal(0))
			Expect(totals.DailyTotal.IsZero()).To(BeTrue())
			Expect(totals.OvertimeHoursTotal).To(Equal(0.0))
			Expect(totals.OvertimeTotal.IsZero()).To(BeTrue())
			Expect(totals.Tax.IsZero()).To(BeTrue())
			Expect(totals.GrandTotal.IsZero()).To(BeTrue())
		})
	})

	When("there are several shifts", func() {
		var shifts []Shift

		BeforeEach(func() {
			shifts = []Shift{
				calc.NewShift("Shift", "2024-01-01", "08:00", "18:00", false),
				calc.NewShift("Shift", "2024-01-02", "08:00", "20:00", false),
				calc.NewShift("Shift", "2024-01-03", "06:00", "17:20", false),
			}
		})

		It("charges the daily rate per shift", func() {
			Expect(calc.Totals(shifts).DailyTotal.StringFixed(2)).To(Equal("420.00"))
		})

		It("sums overtime hours", func() {
			Expect(calc.Totals(shifts).OvertimeHoursTotal).To(Equal(3.33))
		})

		It("prices overtime at the overtime rate", func() {
			Expect(calc.Totals(shifts).OvertimeTotal.StringFixed(2)).To(Equal("46.62"))
		})

		It("adds daily and overtime totals", func() {
			totals := calc.Totals(shifts)
			Expect(totals.GrandTotal.Equal(totals.DailyTotal.Add(totals.OvertimeTotal))).To(BeTrue())
			Expect(totals.GrandTotal.StringFixed(2)).To(Equal("466.62"))
		})

		It("does not depend on shift order", func() {
			want := calc.Totals(shifts)
			permutations := [][]int{{0, 1, 2}, {0, 2, 1}, {1, 0, 2}, {1, 2, 0}, {2, 0, 1}, {2, 1, 0}}
			for _, p := range permutations {
				got := calc.Totals([]Shift{shifts[p[0]], shifts[p[1]], shifts[p[2]]})
				Expect(got.GrandTotal.Equal(want.GrandTotal)).To(BeTrue())
				Expect(got.OvertimeHoursTotal).To(Equal(want.OvertimeHoursTotal))
			}
		})

		It("keeps the grand total equal to the sum of shift amounts", func() {
			sum := decimal.Zero
			for _, s := range shifts {
				sum = sum.Add(s.Amount)
			}
			Expect(calc.Totals(shifts).GrandTotal.Equal(sum)).To(BeTrue())
		})
	})

	When("overtime is overridden with fractional hours", func() {
		It("keeps the grand total equal to the sum of shift amounts", func() {
			var shifts []Shift
			sum := decimal.Zero
			for _, date := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
				s := calc.WithOvertime(calc.NewShift("Shift", date, "08:00", "18:00", false), 0.333)
				shifts = append(shifts, s)
				sum = sum.Add(s.Amount)
			}

			totals := calc.Totals(shifts)
			Expect(sum.String()).To(Equal("433.986"))
			Expect(totals.GrandTotal.Equal(sum)).To(BeTrue())
			Expect(FormatCurrency(totals.GrandTotal)).To(Equal("£433.99"))
		})
	})
})

var _ = Describe("Invoice", func() {
	It("wraps shifts with totals and a fixed due date", func() {
		calc := NewCalculatorWithDeps(DefaultRates(), &sequenceIDs{})
		shifts := []Shift{calc.NewShift("Shift", "2024-01-01", "06:00", "18:00", true)}

		inv := calc.Invoice("JAN/001", "2024-01-31", shifts)
		Expect(inv.InvoiceNumber).To(Equal("JAN/001"))
		Expect(inv.InvoiceDate).To(Equal("2024-01-31"))
		Expect(inv.DueDate).To(Equal("Upon Receipt"))
		Expect(inv.Shifts).To(HaveLen(1))
		Expect(inv.GrandTotal.StringFixed(2)).To(Equal("168.00"))
	})

	Describe("FileBaseName", func() {
		It("replaces separators in the invoice number", func() {
			Expect(Invoice{InvoiceNumber: "JAN/001"}.FileBaseName("invoice")).To(Equal("invoice_JAN_001"))
		})

		It("handles a missing prefix or number", func() {
			Expect(Invoice{InvoiceNumber: "JAN/001"}.FileBaseName("")).To(Equal("JAN_001"))
			Expect(Invoice{}.FileBaseName("invoice")).To(Equal("invoice"))
		})
	})
})

var _ = Describe("InvoiceNumber", func() {
	It("prefixes the month and pads the sequence", func() {
		t := time.Date(2026, time.October, 15, 0, 0, 0, 0, time.UTC)
		Expect(InvoiceNumber(t, 1)).To(Equal("OCT/001"))
		Expect(InvoiceNumber(t, 42)).To(Equal("OCT/042"))
	})
})

var _ = Describe("Formatting", func() {
	It("formats currency in pounds", func() {
		Expect(FormatCurrency(decimal.NewFromInt(140))).To(Equal("£140.00"))
		Expect(FormatCurrency(decimal.NewFromFloat(14.5))).To(Equal("£14.50"))
		Expect(FormatCurrency(decimal.Zero)).To(Equal("£0.00"))
	})

	It("formats ISO dates as DD/MM/YYYY", func() {
		Expect(FormatDate("2024-01-15")).To(Equal("15/01/2024"))
	})

	It("returns unparseable dates unchanged", func() {
		Expect(FormatDate("2024-02-31")).To(Equal("2024-02-31"))
	})

	It("formats hours without trailing zeros", func() {
		Expect(FormatHours(10)).To(Equal("10"))
		Expect(FormatHours(10.5)).To(Equal("10.5"))
		Expect(FormatHours(0.33)).To(Equal("0.33"))
	})
})
