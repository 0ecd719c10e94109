package observability

import (
	"io"
	"net/http"
	"strings"
	"time"
)

// Metrics collects request and estimate counters for the /metrics endpoint.
// All methods are no-ops on a nil receiver.
type Metrics struct {
	apiRequests     *CounterVec
	apiLatency      *HistogramVec
	apiInflight     *Gauge
	rateLookups     *CounterVec
	estimates       *CounterVec
	estimateLatency *HistogramVec
	rateTableRows   *Gauge
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("shiprate_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"shiprate_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		),
		apiInflight: NewGauge("shiprate_api_inflight_requests", "In-flight API requests."),
		rateLookups: NewCounterVec("shiprate_rate_lookups_total", "Rate table lookups by outcome.", []string{"outcome"}),
		estimates:   NewCounterVec("shiprate_estimates_total", "Completion-service calls by model/status.", []string{"model", "status"}),
		estimateLatency: NewHistogramVec(
			"shiprate_estimate_duration_seconds",
			"Completion-service latency in seconds by model.",
			[]string{"model"},
			[]float64{0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		rateTableRows: NewGauge("shiprate_rate_table_rows", "Rows in the loaded rate table."),
	}
}

func (m *Metrics) ObserveAPI(method, route, status string, dur time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "UNKNOWN"
	}
	if route == "" {
		route = "unknown"
	}
	if status == "" {
		status = "0"
	}
	m.apiRequests.Inc(method, route, status)
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Add(1)
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Add(-1)
}

func (m *Metrics) ObserveLookup(found bool) {
	if m == nil {
		return
	}
	if found {
		m.rateLookups.Inc("found")
		return
	}
	m.rateLookups.Inc("not_found")
}

func (m *Metrics) ObserveEstimate(model string, err error, dur time.Duration) {
	if m == nil {
		return
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = "unknown"
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.estimates.Inc(model, status)
	m.estimateLatency.Observe(dur.Seconds(), model)
}

func (m *Metrics) SetRateTableRows(n int) {
	if m == nil {
		return
	}
	m.rateTableRows.Set(float64(n))
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, _ *http.Request) {
	if m == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	_ = m.WritePrometheus(w)
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.rateLookups,
		m.estimates,
		m.estimateLatency,
		m.rateTableRows,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}
