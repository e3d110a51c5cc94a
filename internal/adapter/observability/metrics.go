package observability

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// HTTPRequestsTotal counts HTTP requests by route, method and status.
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"route", "method", "status"},
	)
	// HTTPRequestDuration observes request latency by route and method.
	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		},
		[]string{"route", "method"},
	)

	// AIRequestsTotal counts outbound AI calls by provider and operation.
	AIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ai_requests_total",
			Help: "Total number of AI requests by provider and operation",
		},
		[]string{"provider", "operation"},
	)
	// AIRequestDuration observes outbound AI call latency.
	AIRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ai_request_duration_seconds",
			Help:    "AI request duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"provider", "operation"},
	)

	// SessionsActive gauges live interview sessions.
	SessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "interview_sessions_active",
			Help: "Number of interview sessions currently running",
		},
	)
	// AnswersEvaluatedTotal counts evaluated answers by attempt number.
	AnswersEvaluatedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "answers_evaluated_total",
			Help: "Total number of answers evaluated",
		},
		[]string{"attempt"},
	)
	// FollowUpsEmittedTotal counts adaptive follow-ups by order in sequence.
	FollowUpsEmittedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "follow_ups_emitted_total",
			Help: "Total number of adaptive follow-up questions emitted",
		},
		[]string{"order"},
	)
	// InterviewsCompletedTotal counts interviews reaching a terminal state.
	InterviewsCompletedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "interviews_completed_total",
			Help: "Total number of interviews reaching a terminal state",
		},
		[]string{"status"},
	)
)

var registerOnce sync.Once

// InitMetrics registers all collectors with the default registry once per process.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HTTPRequestsTotal,
			HTTPRequestDuration,
			AIRequestsTotal,
			AIRequestDuration,
			SessionsActive,
			AnswersEvaluatedTotal,
			FollowUpsEmittedTotal,
			InterviewsCompletedTotal,
		)
	})
}

// ObserveAIRequest records one outbound AI call.
func ObserveAIRequest(provider, operation string, start time.Time) {
	AIRequestsTotal.WithLabelValues(provider, operation).Inc()
	AIRequestDuration.WithLabelValues(provider, operation).Observe(time.Since(start).Seconds())
}

// HTTPMetricsMiddleware instruments every request with counters and latency.
func HTTPMetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		if route == "" {
			route = r.URL.Path
		}
		HTTPRequestsTotal.WithLabelValues(route, r.Method, strconv.Itoa(ww.Status())).Inc()
		HTTPRequestDuration.WithLabelValues(route, r.Method).Observe(time.Since(start).Seconds())
	})
}
