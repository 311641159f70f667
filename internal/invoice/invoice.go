// Package invoice turns a committed sale into a PDF document in the
// download folder.
package invoice

import (
	"context"
	"strings"

	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"github.com/suteetoe/tokokita/pkg/pdf"
	"github.com/suteetoe/tokokita/pkg/storage"
	"go.uber.org/zap"
)

const dateLayout = "02/01/2006"

// PDFRenderer renders invoices with pkg/pdf and writes them through pkg/storage
type PDFRenderer struct {
	auth storage.Authorizer
	dir  string
	log  *zap.Logger
}

func NewPDFRenderer(auth storage.Authorizer, dir string, log *zap.Logger) *PDFRenderer {
	if log == nil {
		log = zap.NewNop()
	}
	return &PDFRenderer{auth: auth, dir: dir, log: log}
}

// FileName is the document name for an invoice number
func FileName(number string) string {
	r := strings.NewReplacer("/", "-", "\\", "-", "..", "-")
	return "Faktur_" + r.Replace(number) + ".pdf"
}

// Render returns the path of the written document
func (r *PDFRenderer) Render(ctx context.Context, inv model.Invoice) (string, error) {
	if err := r.auth.Authorize(ctx); err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.StorageUnavailable("storage permission denied", err)
		}
		return "", err
	}

	data, err := pdf.InvoicePDF(toPDF(inv))
	if err != nil {
		r.log.Error("Failed to render invoice", zap.String("invoice", inv.Number), zap.Error(err))
		return "", apperr.RenderFailed(err)
	}

	path, err := storage.WriteFile(r.dir, FileName(inv.Number), data)
	if err != nil {
		r.log.Error("Failed to save invoice", zap.String("invoice", inv.Number), zap.Error(err))
		return "", err
	}
	r.log.Info("Invoice saved", zap.String("invoice", inv.Number), zap.String("path", path))
	return path, nil
}

func toPDF(inv model.Invoice) pdf.InvoiceData {
	items := make([]pdf.InvoiceItem, 0, len(inv.Lines))
	for _, l := range inv.Lines {
		items = append(items, pdf.InvoiceItem{
			Description: l.ProductName,
			Quantity:    l.Quantity,
			UnitPrice:   l.UnitPrice,
			Total:       l.Subtotal,
		})
	}
	return pdf.InvoiceData{
		InvoiceNumber: inv.Number,
		Date:          inv.IssuedAt.Format(dateLayout),
		Customer:      inv.CustomerName,
		Items:         items,
		Total:         inv.Total,
	}
}
