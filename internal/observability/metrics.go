package observability

import (
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Metrics holds the process-wide counters. A nil *Metrics is valid and records nothing.
type Metrics struct {
	apiRequests  *CounterVec
	apiLatency   *HistogramVec
	apiInflight  *Gauge
	flowRequests *CounterVec
	flowLatency  *HistogramVec
	editOutcomes *CounterVec
	published    *CounterVec
}

var (
	initOnce sync.Once
	instance *Metrics
)

func Enabled() bool {
	v := strings.TrimSpace(strings.ToLower(os.Getenv("METRICS_ENABLED")))
	return v == "1" || v == "true" || v == "yes"
}

// Current returns the metrics initialised by Init, or nil.
func Current() *Metrics {
	return instance
}

func Init() *Metrics {
	if !Enabled() {
		return nil
	}
	initOnce.Do(func() {
		instance = NewMetrics()
	})
	return instance
}

// NewMetrics builds an unregistered set, mainly for tests.
func NewMetrics() *Metrics {
	return &Metrics{
		apiRequests: NewCounterVec("ph_api_requests_total", "API requests by method/route/status.", []string{"method", "route", "status"}),
		apiLatency: NewHistogramVec(
			"ph_api_request_duration_seconds",
			"API request latency in seconds by method/route.",
			[]string{"method", "route"},
			[]float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		),
		apiInflight:  NewGauge("ph_api_inflight_requests", "In-flight API requests."),
		flowRequests: NewCounterVec("ph_ai_flow_requests_total", "AI flow calls by flow/status.", []string{"flow", "status"}),
		flowLatency: NewHistogramVec(
			"ph_ai_flow_duration_seconds",
			"AI flow latency in seconds by flow.",
			[]string{"flow"},
			[]float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60, 120},
		),
		editOutcomes: NewCounterVec("ph_edit_rewrites_total", "Confirmed inline rewrites by outcome.", []string{"outcome"}),
		published:    NewCounterVec("ph_sites_published_total", "Publish attempts by status.", []string{"status"}),
	}
}

func (m *Metrics) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if m == nil {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_ = m.WritePrometheus(w)
	})
}

func (m *Metrics) WritePrometheus(w io.Writer) error {
	if m == nil {
		return nil
	}
	writers := []interface{ WritePrometheus(io.Writer) error }{
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.flowRequests, m.flowLatency,
		m.editOutcomes, m.published,
	}
	for _, mw := range writers {
		if err := mw.WritePrometheus(w); err != nil {
			return err
		}
	}
	return nil
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unknown"
	}
	m.apiRequests.Inc(method, route, strconv.Itoa(status))
	m.apiLatency.Observe(dur.Seconds(), method, route)
}

func (m *Metrics) APIInflightInc() {
	if m != nil {
		m.apiInflight.Inc()
	}
}

func (m *Metrics) APIInflightDec() {
	if m != nil {
		m.apiInflight.Dec()
	}
}

// ObserveFlow records one AI flow call; status is "ok" or "error".
func (m *Metrics) ObserveFlow(flow, status string, dur time.Duration) {
	if m == nil {
		return
	}
	m.flowRequests.Inc(flow, status)
	m.flowLatency.Observe(dur.Seconds(), flow)
}

// IncEditOutcome counts a confirmed rewrite: "applied", "failed" or "rejected".
func (m *Metrics) IncEditOutcome(outcome string) {
	if m != nil {
		m.editOutcomes.Inc(outcome)
	}
}

func (m *Metrics) IncPublished(status string) {
	if m != nil {
		m.published.Inc(status)
	}
}

func (m *Metrics) FlowCount(flow, status string) float64 {
	if m == nil {
		return 0
	}
	return m.flowRequests.Value(flow, status)
}
