package observability

import (
	"io"
	"net/http"
	"strings"
	"time"
)

// Metrics holds the service's request and intake series. A nil *Metrics is a
// valid no-op recorder.
type Metrics struct {
	apiRequests    *CounterVec
	apiLatency     *HistogramVec
	apiInflight    *Gauge
	llmRequests    *CounterVec
	llmLatency     *HistogramVec
	schedulesTotal *Counter
}

func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("optima_api_requests_total", "Total API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"optima_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		),
		apiInflight: NewGauge("optima_api_inflight_requests", "In-flight API requests."),
		llmRequests: NewCounterVec("optima_llm_requests_total", "Intake language model calls by model/status.", []string{"model", "status"}),
		llmLatency: NewHistogramVec(
			"optima_llm_request_duration_seconds",
			"Intake language model latency in seconds by model.",
			[]string{"model"},
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		schedulesTotal: NewCounter("optima_schedules_generated_total", "Schedules generated."),
	}
}

func (m *Metrics) WriteHTTP(w http.ResponseWriter, r *http.Request) {
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
	for _, s := range []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests,
		m.apiLatency,
		m.apiInflight,
		m.llmRequests,
		m.llmLatency,
		m.schedulesTotal,
	} {
		if err := s.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
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
	m.apiInflight.Inc()
}

func (m *Metrics) APIInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveLLMRequest records one intake call. status is "ok" or the error code
// handed back to the client.
func (m *Metrics) ObserveLLMRequest(model, status string, dur time.Duration) {
	if m == nil {
		return
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = "unknown"
	}
	if status == "" {
		status = "unknown"
	}
	m.llmRequests.Inc(model, status)
	if dur > 0 {
		m.llmLatency.Observe(dur.Seconds(), model)
	}
}

func (m *Metrics) IncSchedulesGenerated() {
	if m == nil {
		return
	}
	m.schedulesTotal.Inc()
}
