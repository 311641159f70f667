package api

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"github.com/suteetoe/tokokita/pkg/client"
)

// Transactions commits sales
type Transactions struct {
	r Requester
}

type commitResponse struct {
	InvoiceNumber string `json:"faktur"`
	Message       string `json:"message"`
}

// Commit saves the current cart as a sale and returns the invoice number
func (t *Transactions) Commit(ctx context.Context, req model.CommitRequest) (string, error) {
	if req.CustomerCode == "" {
		return "", apperr.Validation("customer required")
	}
	var out commitResponse
	if err := t.r.DoJSON(ctx, http.MethodPost, "/simpan-transaksi", req, &out, client.WithRoute("transaksi.store")); err != nil {
		return "", err
	}
	if out.InvoiceNumber == "" {
		if out.Message != "" {
			return "", apperr.ServerRejected(http.StatusOK, out.Message)
		}
		return "", apperr.MalformedResponse(errors.New("response has no invoice number"))
	}
	return out.InvoiceNumber, nil
}

// Sales reads the sales report
type Sales struct {
	r Requester
}

// DateFormat is how report boundaries are sent
const DateFormat = time.RFC3339

func reportQuery(start, end time.Time) url.Values {
	q := url.Values{}
	q.Set("start", start.UTC().Format(DateFormat))
	q.Set("end", end.UTC().Format(DateFormat))
	return q
}

func (s *Sales) Report(ctx context.Context, start, end time.Time) ([]model.ReportRecord, error) {
	var out struct {
		Records []model.ReportRecord `json:"laporan"`
	}
	err := s.r.DoJSON(ctx, http.MethodGet, "/laporan-penjualan", nil, &out,
		client.WithQuery(reportQuery(start, end)),
		client.WithRoute("laporan.list"),
	)
	if err != nil {
		return nil, err
	}
	return out.Records, nil
}

// ReportPDF downloads the report as a PDF document
func (s *Sales) ReportPDF(ctx context.Context, start, end time.Time) ([]byte, error) {
	data, _, err := s.r.DoRaw(ctx, http.MethodGet, "/download-laporan-penjualan",
		client.WithQuery(reportQuery(start, end)),
		client.WithRoute("laporan.download"),
	)
	if err != nil {
		return nil, err
	}
	if !bytes.HasPrefix(data, []byte("%PDF")) {
		return nil, apperr.MalformedResponse(errors.New("response is not a PDF document"))
	}
	return data, nil
}
