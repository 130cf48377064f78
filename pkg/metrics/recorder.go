package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder owns a private registry so several instances can coexist in tests.
type Recorder struct {
	registry *prometheus.Registry

	httpRequests       *prometheus.CounterVec
	httpDuration       *prometheus.HistogramVec
	analysisRequests   *prometheus.CounterVec
	analysisDuration   *prometheus.HistogramVec
	preprocessFallback prometheus.Counter
	promptTokens       prometheus.Histogram
}

// NewRecorder registers every collector the service exports.
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		analysisRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "analysis_requests_total",
				Help: "Label analyses by entry point and outcome",
			},
			[]string{"source", "outcome"},
		),
		analysisDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "analysis_duration_seconds",
				Help:    "End to end analysis latency in seconds",
				Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30, 60},
			},
			[]string{"source"},
		),
		preprocessFallback: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "preprocess_fallbacks_total",
				Help: "Images that fell back to plain grayscale decoding",
			},
		),
		promptTokens: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "prompt_tokens",
				Help:    "Estimated prompt size in tokens",
				Buckets: prometheus.ExponentialBuckets(128, 2, 8),
			},
		),
	}
}

// ObserveHTTP records one served request.
func (r *Recorder) ObserveHTTP(method, route string, status int, elapsed time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	r.httpDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// ObserveAnalysis records the outcome of one pipeline run.
func (r *Recorder) ObserveAnalysis(source, outcome string, elapsed time.Duration) {
	r.analysisRequests.WithLabelValues(source, outcome).Inc()
	r.analysisDuration.WithLabelValues(source).Observe(elapsed.Seconds())
}

// ObservePromptTokens records the estimated size of a prompt.
func (r *Recorder) ObservePromptTokens(tokens int) {
	r.promptTokens.Observe(float64(tokens))
}

// IncPreprocessFallback counts a degraded preprocessing run.
func (r *Recorder) IncPreprocessFallback() {
	r.preprocessFallback.Inc()
}

// Registry exposes the underlying registry for tests and custom exporters.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}
