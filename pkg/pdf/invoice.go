package pdf

import (
	"strconv"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/core"
	"github.com/johnfercher/maroto/v2/pkg/props"
	"github.com/suteetoe/tokokita/pkg/money"
)

// InvoiceItem is one table row of an invoice
type InvoiceItem struct {
	Description string
	Quantity    int64
	UnitPrice   int64
	Total       int64
}

// InvoiceData is everything printed on an invoice
type InvoiceData struct {
	InvoiceNumber string
	// Date is already formatted for display (dd/mm/yyyy)
	Date     string
	Customer string
	Items    []InvoiceItem
	Total    int64
}

var (
	headerCell = props.Text{Size: 9, Style: fontstyle.Bold, Top: 1}
	bodyCell   = props.Text{Size: 9, Top: 1}
	rightBody  = props.Text{Size: 9, Top: 1, Align: align.Right}
	rightBold  = props.Text{Size: 10, Top: 1, Align: align.Right, Style: fontstyle.Bold}
)

// InvoicePDF renders a sales invoice (faktur penjualan)
func InvoicePDF(data InvoiceData) ([]byte, error) {
	m := newDocument()

	m.AddRows(
		text.NewRow(12, "FAKTUR PENJUALAN", props.Text{Size: 16, Style: fontstyle.Bold, Align: align.Center}),
	)
	m.AddRow(6,
		text.NewCol(3, "No. Faktur", bodyCell),
		text.NewCol(9, ": "+data.InvoiceNumber, bodyCell),
	)
	m.AddRow(6,
		text.NewCol(3, "Tanggal", bodyCell),
		text.NewCol(9, ": "+data.Date, bodyCell),
	)
	m.AddRow(6,
		text.NewCol(3, "Pelanggan", bodyCell),
		text.NewCol(9, ": "+data.Customer, bodyCell),
	)
	m.AddRows(line.NewRow(4))

	m.AddRow(7,
		text.NewCol(5, "Nama Barang", headerCell),
		text.NewCol(2, "Qty", props.Text{Size: 9, Style: fontstyle.Bold, Top: 1, Align: align.Right}),
		text.NewCol(2, "Harga", props.Text{Size: 9, Style: fontstyle.Bold, Top: 1, Align: align.Right}),
		text.NewCol(3, "Subtotal", props.Text{Size: 9, Style: fontstyle.Bold, Top: 1, Align: align.Right}),
	)
	for _, item := range data.Items {
		m.AddRow(6,
			text.NewCol(5, item.Description, bodyCell),
			text.NewCol(2, strconv.FormatInt(item.Quantity, 10), rightBody),
			text.NewCol(2, money.Rupiah(item.UnitPrice), rightBody),
			text.NewCol(3, money.Rupiah(item.Total), rightBody),
		)
	}
	m.AddRows(line.NewRow(4))
	m.AddRow(8,
		text.NewCol(9, "Total", rightBold),
		text.NewCol(3, money.Rupiah(data.Total), rightBold),
	)
	m.AddRows(
		text.NewRow(10, "Terima kasih atas pembelian Anda", props.Text{Size: 9, Top: 4, Align: align.Center, Style: fontstyle.Italic}),
	)

	return generate(m)
}

func newDocument() core.Maroto {
	cfg := config.NewBuilder().
		WithLeftMargin(15).
		WithTopMargin(15).
		WithRightMargin(15).
		Build()
	return maroto.New(cfg)
}

func generate(m core.Maroto) ([]byte, error) {
	doc, err := m.Generate()
	if err != nil {
		return nil, err
	}
	return doc.GetBytes(), nil
}
