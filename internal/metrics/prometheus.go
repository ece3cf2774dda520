package metrics

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Analysis metrics
	AnalyzerCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotecompare_analyzer_calls_total",
			Help: "Total number of dimension analyzer calls",
		},
		[]string{"dimension", "status"}, // status: success|fallback
	)

	AnalyzerLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotecompare_analyzer_latency_seconds",
			Help:    "Dimension analyzer latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"dimension"},
	)

	SynthesisCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotecompare_synthesis_calls_total",
			Help: "Total number of synthesis calls",
		},
		[]string{"status"}, // status: success|fallback
	)

	ScoreAuditMismatches = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "quotecompare_score_audit_mismatches_total",
			Help: "Ranked quotes whose reported overall score disagrees with the weighted formula",
		},
	)

	CompletionFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotecompare_completion_failures_total",
			Help: "Completion failures by class",
		},
		[]string{"stage", "class"},
	)

	// Comparison metrics
	Comparisons = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotecompare_comparisons_total",
			Help: "Total number of deterministic comparisons",
		},
		[]string{"schema"}, // schema: registered|basic
	)

	// HTTP metrics
	HTTPRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "quotecompare_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"route", "code"},
	)

	HTTPDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "quotecompare_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)
)

var initOnce sync.Once

// Init registers all collectors with the default registry. Safe to call more
// than once.
func Init() {
	initOnce.Do(func() {
		prometheus.MustRegister(AnalyzerCalls)
		prometheus.MustRegister(AnalyzerLatency)
		prometheus.MustRegister(SynthesisCalls)
		prometheus.MustRegister(ScoreAuditMismatches)
		prometheus.MustRegister(CompletionFailures)
		prometheus.MustRegister(Comparisons)
		prometheus.MustRegister(HTTPRequests)
		prometheus.MustRegister(HTTPDuration)
	})
}

func Handler() http.Handler {
	return promhttp.Handler()
}

func statusOf(degraded bool) string {
	if degraded {
		return "fallback"
	}
	return "success"
}

func RecordAnalyzerCall(dimension string, latency time.Duration, degraded bool) {
	AnalyzerCalls.WithLabelValues(dimension, statusOf(degraded)).Inc()
	AnalyzerLatency.WithLabelValues(dimension).Observe(latency.Seconds())
}

func RecordSynthesis(degraded bool) {
	SynthesisCalls.WithLabelValues(statusOf(degraded)).Inc()
}

func RecordCompletionFailure(stage, class string) {
	CompletionFailures.WithLabelValues(stage, class).Inc()
}

func RecordComparison(registered bool) {
	label := "basic"
	if registered {
		label = "registered"
	}
	Comparisons.WithLabelValues(label).Inc()
}

func RecordHTTPRequest(route string, code int, duration time.Duration) {
	HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	HTTPDuration.WithLabelValues(route).Observe(duration.Seconds())
}
