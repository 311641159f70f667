package prometheus

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics groups the collectors used by the client and the sandbox backend.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry prometheus.Gatherer

	// Outbound API metrics
	APIRequestsTotal   *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec

	// List engine metrics
	ListPagesLoaded       *prometheus.CounterVec
	ListDuplicatesDropped *prometheus.CounterVec
	ListStaleResponses    *prometheus.CounterVec

	// Cart, checkout and report metrics
	CartMutations    *prometheus.CounterVec
	CheckoutOutcomes *prometheus.CounterVec
	ReportDownloads  *prometheus.CounterVec

	// Inbound HTTP metrics for the sandbox backend
	HttpRequestsTotal   *prometheus.CounterVec
	HttpRequestDuration *prometheus.HistogramVec
}

// New creates and registers all collectors on a fresh registry, using prefix
// for metric names.
func New(prefix string) *Metrics {
	reg := prometheus.NewRegistry()
	m := newMetrics(prefix, reg)
	m.registry = reg
	return m
}

func newMetrics(prefix string, reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		APIRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_api_requests_total",
				Help: "Total number of backend API calls",
			},
			[]string{"method", "route", "status"},
		),
		APIRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_api_request_duration_seconds",
				Help:    "Duration of backend API calls in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		ListPagesLoaded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_list_pages_loaded_total",
				Help: "Total number of pages applied to a list",
			},
			[]string{"list", "mode"},
		),
		ListDuplicatesDropped: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_list_duplicates_dropped_total",
				Help: "Total number of rows dropped because their key was already listed",
			},
			[]string{"list"},
		),
		ListStaleResponses: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_list_stale_responses_total",
				Help: "Total number of list responses discarded because a newer reset was issued",
			},
			[]string{"list"},
		),
		CartMutations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_cart_mutations_total",
				Help: "Total number of cart mutations",
			},
			[]string{"operation", "result"},
		),
		CheckoutOutcomes: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_checkout_outcomes_total",
				Help: "Total number of checkout attempts by outcome",
			},
			[]string{"outcome"},
		),
		ReportDownloads: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_report_downloads_total",
				Help: "Total number of sales report PDF downloads",
			},
			[]string{"result"},
		),
		HttpRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: prefix + "_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HttpRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    prefix + "_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
	}
}

// Handler exposes the metrics of m.
func (m *Metrics) Handler() http.Handler {
	if m == nil || m.registry == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// TrackAPICall returns a function that records one outbound call
func (m *Metrics) TrackAPICall(method, route string) func(startTime time.Time, status string) {
	return func(startTime time.Time, status string) {
		if m == nil {
			return
		}
		m.APIRequestsTotal.WithLabelValues(method, route, status).Inc()
		m.APIRequestDuration.WithLabelValues(method, route).Observe(time.Since(startTime).Seconds())
	}
}

// RecordPageLoaded counts a page applied to a list in the given mode
func (m *Metrics) RecordPageLoaded(list, mode string) {
	if m == nil {
		return
	}
	m.ListPagesLoaded.WithLabelValues(list, mode).Inc()
}

// RecordDuplicatesDropped counts rows dropped by key deduplication
func (m *Metrics) RecordDuplicatesDropped(list string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.ListDuplicatesDropped.WithLabelValues(list).Add(float64(n))
}

// RecordStaleResponse counts a discarded out-of-order response
func (m *Metrics) RecordStaleResponse(list string) {
	if m == nil {
		return
	}
	m.ListStaleResponses.WithLabelValues(list).Inc()
}

// RecordCartMutation counts a cart add/remove by result
func (m *Metrics) RecordCartMutation(operation string, err error) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(operation, result(err)).Inc()
}

// RecordCheckoutOutcome counts a checkout by outcome label
func (m *Metrics) RecordCheckoutOutcome(outcome string) {
	if m == nil {
		return
	}
	m.CheckoutOutcomes.WithLabelValues(outcome).Inc()
}

// RecordReportDownload counts a report download by result
func (m *Metrics) RecordReportDownload(err error) {
	if m == nil {
		return
	}
	m.ReportDownloads.WithLabelValues(result(err)).Inc()
}

// MetricsMiddleware records inbound request metrics for an echo server
func (m *Metrics) MetricsMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if m == nil {
				return err
			}

			method := c.Request().Method
			path := c.Path()
			status := strconv.Itoa(c.Response().Status)

			m.HttpRequestsTotal.WithLabelValues(method, path, status).Inc()
			m.HttpRequestDuration.WithLabelValues(method, path, status).Observe(time.Since(start).Seconds())

			return err
		}
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
