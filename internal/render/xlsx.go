package render

import (
	"fmt"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/zombor/timesheet-invoicer/internal/pay"
)

// SheetName is the only worksheet in an exported workbook
const SheetName = "Invoice"

// columnWidths are the widths of columns A through I
var columnWidths = []float64{3, 18, 12, 10, 10, 8, 10, 12, 14}

// XLSX renders invoices as single-sheet workbooks
type XLSX struct {
	letterhead Letterhead
	rates      pay.RateTable
}

func NewXLSX(letterhead Letterhead, rates pay.RateTable) *XLSX {
	return &XLSX{letterhead: letterhead, rates: rates}
}

func (x *XLSX) Extension() string { return "xlsx" }
func (x *XLSX) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// sheetWriter writes rows top to bottom, column A left empty as a gutter
type sheetWriter struct {
	f   *excelize.File
	row int
	err error
}

func (w *sheetWriter) set(col int, v any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetCellValue(SheetName, cell, v)
}

// line writes values from column B onwards and moves to the next row.
// nil entries leave a cell empty.
func (w *sheetWriter) line(values ...any) {
	w.row++
	for i, v := range values {
		if v != nil {
			w.set(i+2, v)
		}
	}
}

// pair writes a label in column G and a value in column I
func (w *sheetWriter) pair(label string, value any) {
	w.row++
	w.set(7, label)
	w.set(9, value)
}

func (w *sheetWriter) style(from, to string, styleID int) {
	if w.err != nil {
		return
	}
	w.err = w.f.SetCellStyle(SheetName, fmt.Sprintf("%s%d", from, w.row), fmt.Sprintf("%s%d", to, w.row), styleID)
}

// Render builds the workbook and returns its bytes
func (x *XLSX) Render(inv pay.Invoice) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("naming sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("creating style: %w", err)
	}
	moneyFmt := "£#,##0.00"
	money, err := f.NewStyle(&excelize.Style{CustomNumFmt: &moneyFmt})
	if err != nil {
		return nil, fmt.Errorf("creating style: %w", err)
	}

	company := x.letterhead.Company
	client := x.letterhead.Client
	w := &sheetWriter{f: f}

	w.line(company.Name, nil, nil, nil, nil, nil, "INVOICE")
	w.style("B", "H", bold)
	w.line(company.Tagline)
	w.line()
	w.line("FROM")
	w.style("B", "B", bold)
	w.set(7, "Invoice No.")
	w.set(9, inv.InvoiceNumber)
	w.line(company.AddressLine())
	w.set(7, "Date")
	w.set(9, pay.FormatDate(inv.InvoiceDate))
	w.line(company.ContactLine())
	w.set(7, "Due Date")
	w.set(9, inv.DueDate)
	w.line(company.UTRLine())
	w.line()
	w.line("BILL TO")
	w.style("B", "B", bold)
	w.line(client.Name)
	w.line(client.AddressLine())
	w.line()

	headers := make([]any, len(tableHeaders))
	for i, h := range tableHeaders {
		headers[i] = h
	}
	w.line(headers...)
	w.style("B", "I", bold)
	for _, s := range inv.Shifts {
		w.line(s.Description, pay.FormatDate(s.Date), s.StartTime, s.EndTime,
			s.Hours, s.OvertimeHours, s.Rate.InexactFloat64(), s.Amount.InexactFloat64())
		w.style("H", "I", money)
	}

	w.line()
	w.line(overtimeNote(x.rates))
	w.line()
	w.pair(dailyTotalLabel(inv.Days), inv.DailyTotal.InexactFloat64())
	w.style("I", "I", money)
	w.pair(overtimeTotalLabel(inv.OvertimeHoursTotal), inv.OvertimeTotal.InexactFloat64())
	w.style("I", "I", money)
	w.pair("Tax (0%)", inv.Tax.InexactFloat64())
	w.style("I", "I", money)
	w.line(nil, nil, nil, nil, "TOTAL DUE")
	w.set(9, inv.GrandTotal.InexactFloat64())
	w.style("F", "F", bold)
	w.style("I", "I", money)
	w.line()
	w.line(paymentHeading)
	w.style("B", "B", bold)
	w.line("Please make payment upon receipt of this invoice.")
	for _, l := range bankLines(company) {
		w.line(l)
	}
	w.line(thankYou)
	if w.err != nil {
		return nil, fmt.Errorf("writing sheet: %w", w.err)
	}

	for i, width := range columnWidths {
		name, _ := excelize.ColumnNumberToName(i + 1)
		if err := f.SetColWidth(SheetName, name, name, width); err != nil {
			return nil, fmt.Errorf("setting column width: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	slog.Debug("Rendered invoice xlsx", "invoice", inv.InvoiceNumber, "rows", w.row)
	return buf.Bytes(), nil
}
