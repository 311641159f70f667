package pdf

import (
	"strconv"

	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/suteetoe/tokokita/pkg/money"
)

// SalesRow is one line of the sales report
type SalesRow struct {
	InvoiceNumber string
	Customer      string
	Date          string
	Total         int64
}

// SalesReportData is the printed sales report for a period
type SalesReportData struct {
	Start string
	End   string
	Rows  []SalesRow
}

// SalesReportPDF renders the sales report (laporan penjualan)
func SalesReportPDF(data SalesReportData) ([]byte, error) {
	m := newDocument()

	m.AddRows(
		text.NewRow(12, "LAPORAN PENJUALAN", props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}),
		text.NewRow(7, "Periode "+data.Start+" s/d "+data.End, props.Text{Size: 10, Align: align.Center}),
		line.NewRow(4),
	)

	m.AddRow(7,
		text.NewCol(1, "No", headerCell),
		text.NewCol(3, "Faktur", headerCell),
		text.NewCol(3, "Pelanggan", headerCell),
		text.NewCol(2, "Tanggal", headerCell),
		text.NewCol(3, "Total", props.Text{Size: 9, Style: fontstyle.Bold, Top: 1, Align: align.Right}),
	)

	var grand int64
	for i, r := range data.Rows {
		m.AddRow(6,
			text.NewCol(1, strconv.Itoa(i+1), bodyCell),
			text.NewCol(3, r.InvoiceNumber, bodyCell),
			text.NewCol(3, r.Customer, bodyCell),
			text.NewCol(2, r.Date, bodyCell),
			text.NewCol(3, money.Rupiah(r.Total), rightBody),
		)
		grand += r.Total
	}
	if len(data.Rows) == 0 {
		m.AddRows(text.NewRow(8, "Tidak ada transaksi", props.Text{Size: 9, Top: 2, Align: align.Center}))
	}

	m.AddRows(line.NewRow(4))
	m.AddRow(8,
		text.NewCol(9, "Total Penjualan", rightBold),
		text.NewCol(3, money.Rupiah(grand), rightBold),
	)

	return generate(m)
}
