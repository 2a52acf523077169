package service

import (
	"context"
	"fmt"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campushq/timetable-api/internal/models"
	appErrors "github.com/campushq/timetable-api/pkg/errors"
)

// MetricsService encapsulates Prometheus instrumentation and exposes
// aggregated generation performance read from the attempt history.
type MetricsService struct {
	registry            *prometheus.Registry
	handler             http.Handler
	requestDuration     *prometheus.HistogramVec
	requestTotal        *prometheus.CounterVec
	generationTotal     *prometheus.CounterVec
	generationDuration  *prometheus.HistogramVec
	generationConflicts prometheus.Histogram

	attempts attemptStore

	requestCount         uint64
	requestDurationTotal uint64
}

// NewMetricsService registers core Prometheus collectors. attempts may be
// nil when no history store is wired.
func NewMetricsService(attempts attemptStore) *MetricsService {
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

	generationTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "timetable_generation_total",
		Help: "Total timetable generation runs by method and outcome",
	}, []string{"method", "outcome"})

	generationDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "timetable_generation_duration_seconds",
		Help:    "Duration of timetable generation runs",
		Buckets: []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120},
	}, []string{"method"})

	generationConflicts := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "timetable_generation_conflicts",
		Help:    "Conflicts detected per committed timetable",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})

	goroutines := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Name: "goroutines_total",
		Help: "Total number of goroutines",
	}, func() float64 {
		return float64(runtime.NumGoroutine())
	})

	registry.MustRegister(requestDuration, requestTotal, generationTotal, generationDuration, generationConflicts, goroutines)

	return &MetricsService{
		registry:            registry,
		handler:             promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		requestDuration:     requestDuration,
		requestTotal:        requestTotal,
		generationTotal:     generationTotal,
		generationDuration:  generationDuration,
		generationConflicts: generationConflicts,
		attempts:            attempts,
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

// ObserveHTTPRequest records request metrics and aggregates simple stats.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	labelStatus := fmt.Sprintf("%d", status)
	m.requestDuration.WithLabelValues(method, path, labelStatus).Observe(duration.Seconds())
	m.requestTotal.WithLabelValues(method, path, labelStatus).Inc()
	atomic.AddUint64(&m.requestCount, 1)
	atomic.AddUint64(&m.requestDurationTotal, uint64(duration.Nanoseconds()))
}

// ObserveGeneration records one generation run.
func (m *MetricsService) ObserveGeneration(method models.GenerationMethod, success bool, duration time.Duration, conflicts int) {
	if m == nil {
		return
	}
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	m.generationTotal.WithLabelValues(string(method), outcome).Inc()
	m.generationDuration.WithLabelValues(string(method)).Observe(duration.Seconds())
	if success {
		m.generationConflicts.Observe(float64(conflicts))
	}
}

// GetPerformanceMetrics returns per-method aggregates from the attempt
// history for comparing generation strategies.
func (m *MetricsService) GetPerformanceMetrics(ctx context.Context) ([]models.MethodMetrics, error) {
	if m == nil || m.attempts == nil {
		return []models.MethodMetrics{}, nil
	}
	metrics, err := m.attempts.AggregateByMethod(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to aggregate generation metrics")
	}
	if metrics == nil {
		metrics = []models.MethodMetrics{}
	}
	return metrics, nil
}
