package service

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// MetricsService encapsulates Prometheus instrumentation for the API and
// the batch runs.
type MetricsService struct {
	registry        *prometheus.Registry
	handler         http.Handler
	requestDuration *prometheus.HistogramVec
	requestTotal    *prometheus.CounterVec
	outcomeRuns     *prometheus.CounterVec
	outcomeRunTime  prometheus.Observer
	convocationRows prometheus.Counter
}

// NewMetricsService registers core Prometheus collectors.
func NewMetricsService() *MetricsService {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duration of HTTP requests in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "Total number of HTTP requests",
	}, []string{"method", "path", "status"})

	outcomeRuns := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "outcome_runs_total",
		Help: "Total outcome-processing runs by result",
	}, []string{"result"})

	outcomeRunTime := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "outcome_run_duration_seconds",
		Help:    "Duration of outcome-processing runs",
		Buckets: prometheus.DefBuckets,
	})

	convocationRows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "convocation_rows_inserted_total",
		Help: "Total convocation list rows inserted by generation runs",
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, outcomeRuns, outcomeRunTime, convocationRows, goroutines)

	handler := promhttp.HandlerFor(registry, promhttp.HandlerOpts{})

	return &MetricsService{
		registry:        registry,
		handler:         handler,
		requestDuration: requestDuration,
		requestTotal:    requestTotal,
		outcomeRuns:     outcomeRuns,
		outcomeRunTime:  outcomeRunTime,
		convocationRows: convocationRows,
	}
}

// Handler exposes the Prometheus HTTP handler.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records request metrics.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
}

// RecordOutcomeRun counts one outcome-processing run and its duration.
func (m *MetricsService) RecordOutcomeRun(success bool, duration time.Duration) {
	if m == nil {
		return
	}
	result := "success"
	if !success {
		result = "failure"
	}
	m.outcomeRuns.WithLabelValues(result).Inc()
	m.outcomeRunTime.Observe(duration.Seconds())
}

// AddConvocationRows counts rows inserted by a generation run.
func (m *MetricsService) AddConvocationRows(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.convocationRows.Add(float64(n))
}
