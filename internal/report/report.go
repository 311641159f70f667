// Package report reads the sales report and saves it as a PDF.
package report

import (
	"context"
	"sync"
	"time"

	"github.com/suteetoe/tokokita/internal/model"
	"github.com/suteetoe/tokokita/pkg/apperr"
	"github.com/suteetoe/tokokita/pkg/storage"
	metrics "github.com/suteetoe/tokokita/prometheus"
	"go.uber.org/zap"
)

// Backend is implemented by *api.Sales
type Backend interface {
	Report(ctx context.Context, start, end time.Time) ([]model.ReportRecord, error)
	ReportPDF(ctx context.Context, start, end time.Time) ([]byte, error)
}

type Option func(*Exporter)

func WithLogger(l *zap.Logger) Option {
	return func(e *Exporter) {
		if l != nil {
			e.log = l
		}
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(e *Exporter) { e.metrics = m }
}

type Exporter struct {
	backend Backend
	auth    storage.Authorizer
	dir     string
	log     *zap.Logger
	metrics *metrics.Metrics

	mu      sync.Mutex
	records []model.ReportRecord
}

func New(backend Backend, auth storage.Authorizer, dir string, opts ...Option) *Exporter {
	e := &Exporter{
		backend: backend,
		auth:    auth,
		dir:     dir,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// FileName encodes both boundary dates
func FileName(start, end time.Time) string {
	return "laporan_penjualan_" + start.Format(time.DateOnly) + "_" + end.Format(time.DateOnly) + ".pdf"
}

func validateRange(start, end time.Time) error {
	switch {
	case start.IsZero() || end.IsZero():
		return apperr.ValidationFields("report period is incomplete", missing(start, end))
	case start.After(end):
		return apperr.Validation("start date is after end date")
	}
	return nil
}

func missing(start, end time.Time) map[string]string {
	fields := map[string]string{}
	if start.IsZero() {
		fields["start"] = "required"
	}
	if end.IsZero() {
		fields["end"] = "required"
	}
	return fields
}

// FetchReport loads the sales between start and end, inclusive
func (e *Exporter) FetchReport(ctx context.Context, start, end time.Time) ([]model.ReportRecord, error) {
	if err := validateRange(start, end); err != nil {
		return nil, err
	}
	records, err := e.backend.Report(ctx, start, end)
	if err != nil {
		e.log.Warn("Failed to fetch sales report", zap.Error(err))
		return nil, err
	}
	e.mu.Lock()
	e.records = records
	e.mu.Unlock()
	e.log.Debug("Sales report fetched", zap.Int("records", len(records)))
	return append([]model.ReportRecord(nil), records...), nil
}

// Records is the last fetched report
func (e *Exporter) Records() []model.ReportRecord {
	e.mu.Lock()
	defer e.mu.Unlock()
	return append([]model.ReportRecord(nil), e.records...)
}

// DownloadReportPDF saves the server-rendered report and returns its path.
// Nothing is requested when storage access is refused.
func (e *Exporter) DownloadReportPDF(ctx context.Context, start, end time.Time) (path string, err error) {
	if err := validateRange(start, end); err != nil {
		return "", err
	}
	defer func() { e.metrics.RecordReportDownload(err) }()

	if err := e.auth.Authorize(ctx); err != nil {
		if apperr.KindOf(err) == "" {
			err = apperr.StorageUnavailable("storage permission denied", err)
		}
		return "", err
	}

	data, err := e.backend.ReportPDF(ctx, start, end)
	if err != nil {
		e.log.Warn("Failed to download sales report", zap.Error(err))
		return "", err
	}

	path, err = storage.WriteFile(e.dir, FileName(start, end), data)
	if err != nil {
		return "", err
	}
	e.log.Info("Sales report saved", zap.String("path", path), zap.Int("bytes", len(data)))
	return path, nil
}
