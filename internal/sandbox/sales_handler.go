package sandbox

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/logger"
	"github.com/suteetoe/tokokita/pkg/pdf"
	"go.uber.org/zap"
)

func (s *Server) commitTransaction(c echo.Context) error {
	log := logger.FromEcho(c)

	var req struct {
		UserID       string       `json:"iduser"`
		CustomerCode string       `json:"kodepelanggan"`
		Total        model.Amount `json:"totalbayar"`
	}
	if err := c.Bind(&req); err != nil {
		log.Warn("Invalid transaction request", zap.Error(err))
		return message(c, http.StatusBadRequest, "invalid request")
	}
	if name, _ := c.Get("user_name").(string); req.UserID != name {
		return message(c, http.StatusForbidden, "This action is unauthorized.")
	}
	if req.CustomerCode == "" {
		return validationFailed(c, map[string][]string{"kodepelanggan": {"The kodepelanggan field is required."}})
	}

	number, err := s.store.commit(req.UserID, req.CustomerCode, int64(req.Total), s.opts.Now())
	var mismatch *totalMismatchError
	switch {
	case errors.Is(err, errNotFound):
		return message(c, http.StatusNotFound, "Pelanggan tidak ditemukan")
	case errors.Is(err, errEmptyCart):
		return message(c, http.StatusUnprocessableEntity, "Keranjang masih kosong")
	case errors.As(err, &mismatch):
		log.Warn("Transaction total mismatch", zap.Int64("sent", int64(req.Total)), zap.Int64("due", mismatch.Due))
		return message(c, http.StatusUnprocessableEntity, "Total pembayaran tidak sesuai")
	case err != nil:
		log.Error("Failed to save transaction", zap.Error(err))
		return message(c, http.StatusInternalServerError, "Transaksi gagal disimpan")
	}

	log.Info("Transaction saved", zap.String("faktur", number), zap.Int64("total", int64(req.Total)))
	return c.JSON(http.StatusCreated, echo.Map{"message": "Transaksi berhasil disimpan", "faktur": number})
}

// parseBoundary accepts RFC 3339 timestamps and plain dates
func parseBoundary(v string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", v)
}

func (s *Server) reportRange(c echo.Context) (time.Time, time.Time, bool) {
	start, err1 := parseBoundary(c.QueryParam("start"))
	end, err2 := parseBoundary(c.QueryParam("end"))
	if err1 != nil || err2 != nil || start.After(end) {
		return time.Time{}, time.Time{}, false
	}
	return start, end, true
}

func (s *Server) salesReport(c echo.Context) error {
	start, end, ok := s.reportRange(c)
	if !ok {
		return validationFailed(c, map[string][]string{"start": {"A valid start and end date are required."}})
	}

	records := []model.ReportRecord{}
	for _, r := range s.store.sales(start, end) {
		records = append(records, model.ReportRecord{
			InvoiceNumber: r.InvoiceNumber,
			CustomerName:  r.CustomerName,
			IssuedAt:      r.At.Format("2006-01-02"),
			Total:         model.Amount(r.Total),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"laporan": records})
}

func (s *Server) downloadSalesReport(c echo.Context) error {
	log := logger.FromEcho(c)

	start, end, ok := s.reportRange(c)
	if !ok {
		return validationFailed(c, map[string][]string{"start": {"A valid start and end date are required."}})
	}

	data := pdf.SalesReportData{
		Start: start.UTC().Format("2006-01-02"),
		End:   end.UTC().Format("2006-01-02"),
	}
	for _, r := range s.store.sales(start, end) {
		data.Rows = append(data.Rows, pdf.SalesRow{
			InvoiceNumber: r.InvoiceNumber,
			Customer:      r.CustomerName,
			Date:          r.At.Format("2006-01-02"),
			Total:         r.Total,
		})
	}

	doc, err := pdf.SalesReportPDF(data)
	if err != nil {
		log.Error("Failed to render sales report", zap.Error(err))
		return message(c, http.StatusInternalServerError, "Gagal membuat laporan")
	}

	filename := "laporan_penjualan_" + data.Start + "_" + data.End + ".pdf"
	c.Response().Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	return c.Blob(http.StatusOK, "application/pdf", doc)
}
