package render

import (
	"fmt"
	"log/slog"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/consts/pagesize"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"

	"github.com/zombor/timesheet-invoicer/internal/pay"
)

var (
	royalBlue  = &props.Color{Red: 30, Green: 58, Blue: 138}
	mediumBlue = &props.Color{Red: 59, Green: 130, Blue: 246}
	charcoal   = &props.Color{Red: 55, Green: 65, Blue: 81}
	mediumGray = &props.Color{Red: 107, Green: 114, Blue: 128}
	lightBlue  = &props.Color{Red: 219, Green: 234, Blue: 254}
	paleBlue   = &props.Color{Red: 239, Green: 246, Blue: 255}
	white      = &props.Color{Red: 255, Green: 255, Blue: 255}
)

// shiftColumns are the grid widths of the shift table, out of 12
var shiftColumns = []int{2, 2, 1, 1, 1, 1, 2, 2}

// PDF renders invoices as A4 documents
type PDF struct {
	letterhead Letterhead
	rates      pay.RateTable
}

func NewPDF(letterhead Letterhead, rates pay.RateTable) *PDF {
	return &PDF{letterhead: letterhead, rates: rates}
}

func (p *PDF) Extension() string   { return "pdf" }
func (p *PDF) ContentType() string { return "application/pdf" }

// Render lays out the invoice and returns the PDF bytes
func (p *PDF) Render(inv pay.Invoice) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageSize(pagesize.A4).
		WithLeftMargin(15).
		WithRightMargin(15).
		WithTopMargin(10).
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)
	company := p.letterhead.Company
	client := p.letterhead.Client

	// Header band
	m.AddRow(12,
		text.NewCol(8, company.Name, props.Text{Size: 20, Style: fontstyle.Bold, Color: white, Top: 3, Left: 3}),
		text.NewCol(4, "INVOICE", props.Text{Size: 24, Style: fontstyle.Bold, Color: white, Align: align.Right, Top: 2, Right: 3}),
	).WithStyle(&props.Cell{BackgroundColor: royalBlue})
	m.AddRow(8,
		text.NewCol(12, company.Tagline, props.Text{Size: 10, Color: lightBlue, Left: 3}),
	).WithStyle(&props.Cell{BackgroundColor: royalBlue})
	m.AddRow(6)

	// FROM block beside the invoice meta box
	m.AddRow(22,
		col.New(7).Add(
			text.New("FROM", props.Text{Size: 9, Style: fontstyle.Bold, Color: mediumBlue}),
			text.New(company.AddressLine(), props.Text{Size: 9, Color: charcoal, Top: 5}),
			text.New(company.ContactLine(), props.Text{Size: 9, Color: charcoal, Top: 9}),
			text.New(company.UTRLine(), props.Text{Size: 9, Color: charcoal, Top: 13}),
		),
		col.New(5).Add(
			text.New("Invoice No.", props.Text{Size: 8, Style: fontstyle.Bold, Color: royalBlue, Top: 3, Left: 3}),
			text.New(inv.InvoiceNumber, props.Text{Size: 8, Color: charcoal, Align: align.Right, Top: 3, Right: 3}),
			text.New("Date", props.Text{Size: 8, Style: fontstyle.Bold, Color: royalBlue, Top: 9, Left: 3}),
			text.New(pay.FormatDate(inv.InvoiceDate), props.Text{Size: 8, Color: charcoal, Align: align.Right, Top: 9, Right: 3}),
			text.New("Due Date", props.Text{Size: 8, Style: fontstyle.Bold, Color: royalBlue, Top: 15, Left: 3}),
			text.New(inv.DueDate, props.Text{Size: 8, Color: charcoal, Align: align.Right, Top: 15, Right: 3}),
		).WithStyle(&props.Cell{BackgroundColor: lightBlue}),
	)
	m.AddRow(6)

	m.AddRow(16,
		col.New(12).Add(
			text.New("BILL TO", props.Text{Size: 9, Style: fontstyle.Bold, Color: mediumBlue}),
			text.New(client.Name, props.Text{Size: 10, Style: fontstyle.Bold, Color: charcoal, Top: 5}),
			text.New(client.AddressLine(), props.Text{Size: 9, Color: charcoal, Top: 10}),
		),
	)
	m.AddRow(4)

	// Shift table
	m.AddRow(8, tableCols(tableHeaders, props.Text{Size: 8, Style: fontstyle.Bold, Color: white, Align: align.Center, Top: 2})...).
		WithStyle(&props.Cell{BackgroundColor: mediumBlue})
	for i, s := range inv.Shifts {
		r := m.AddRow(7, tableCols(shiftRow(s), props.Text{Size: 8, Color: charcoal, Align: align.Center, Top: 1.5})...)
		if i%2 == 1 {
			r.WithStyle(&props.Cell{BackgroundColor: paleBlue})
		}
	}

	m.AddRow(8,
		text.NewCol(12, overtimeNote(p.rates), props.Text{Size: 7, Style: fontstyle.Italic, Color: mediumGray, Top: 3}),
	)

	// Totals
	m.AddRow(5, totalCols(dailyTotalLabel(inv.Days), pay.FormatCurrency(inv.DailyTotal))...)
	m.AddRow(5, totalCols(overtimeTotalLabel(inv.OvertimeHoursTotal), pay.FormatCurrency(inv.OvertimeTotal))...)
	m.AddRow(5, totalCols("Tax (0%)", pay.FormatCurrency(inv.Tax))...)
	m.AddRow(3)
	m.AddRow(12,
		col.New(6),
		text.NewCol(3, "TOTAL DUE", props.Text{Size: 10, Style: fontstyle.Bold, Color: white, Top: 3.5, Left: 3}),
		text.NewCol(3, pay.FormatCurrency(inv.GrandTotal), props.Text{Size: 14, Style: fontstyle.Bold, Color: white, Align: align.Right, Top: 2.5, Right: 3}),
	).WithStyle(&props.Cell{BackgroundColor: royalBlue})
	m.AddRow(8)

	// Payment details
	payment := col.New(12).Add(
		text.New(paymentHeading, props.Text{Size: 8, Style: fontstyle.Bold, Color: mediumBlue}),
		text.New("Please make payment to:", props.Text{Size: 9, Color: charcoal, Top: 5}),
	)
	top := 11.0
	for _, line := range bankLines(company) {
		payment.Add(text.New(line, props.Text{Size: 8, Color: charcoal, Top: top}))
		top += 5
	}
	payment.Add(text.New(thankYou, props.Text{Size: 8, Style: fontstyle.Italic, Color: royalBlue, Top: top + 3}))
	m.AddRow(top+10, payment)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generating pdf: %w", err)
	}
	slog.Debug("Rendered invoice pdf", "invoice", inv.InvoiceNumber, "shifts", len(inv.Shifts))
	return doc.GetBytes(), nil
}

func tableCols(cells []string, style props.Text) []core.Col {
	cols := make([]core.Col, len(cells))
	for i, c := range cells {
		cellStyle := style
		switch i {
		case 0:
			cellStyle.Align = align.Left
			cellStyle.Left = 2
		case 6, 7:
			cellStyle.Align = align.Right
			cellStyle.Right = 2
		}
		cols[i] = text.NewCol(shiftColumns[i], c, cellStyle)
	}
	return cols
}

func totalCols(label, value string) []core.Col {
	return []core.Col{
		col.New(6),
		text.NewCol(4, label, props.Text{Size: 8, Color: mediumGray, Left: 3}),
		text.NewCol(2, value, props.Text{Size: 8, Color: charcoal, Align: align.Right, Right: 3}),
	}
}
