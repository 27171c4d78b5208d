// Package metrics defines the Prometheus metrics exported by stratarefer.
//
// All metrics are registered with the default Prometheus registry and are
// served by Handler at /metrics.
//
// Naming:
//   - stratarefer_ prefix for all custom metrics
//   - _total suffix for counters
//   - _seconds suffix for duration histograms
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// GateDecisionsTotal counts access gate outcomes on admin paths.
	GateDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stratarefer_gate_decisions_total",
			Help: "Total access gate decisions by outcome, caller state and marker.",
		},
		[]string{"outcome", "state", "marker"},
	)

	// ReferralSubmissionsTotal counts referral submissions by result
	// (created, invalid, not_found, error).
	ReferralSubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stratarefer_referral_submissions_total",
			Help: "Total referral submissions by result.",
		},
		[]string{"result"},
	)

	// NotificationsTotal counts notification emails by kind and result.
	NotificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "stratarefer_notifications_total",
			Help: "Total notification emails by kind and result.",
		},
		[]string{"kind", "result"},
	)

	// RequestDurationSeconds is a histogram of HTTP request latency by route.
	RequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "stratarefer_http_request_duration_seconds",
			Help:    "HTTP request latency by method, route pattern and status.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

func init() {
	prometheus.MustRegister(
		GateDecisionsTotal,
		ReferralSubmissionsTotal,
		NotificationsTotal,
		RequestDurationSeconds,
	)
}

// RecordGateDecision records a single gate outcome.
func RecordGateDecision(outcome, state, marker string) {
	if marker == "" {
		marker = "none"
	}
	GateDecisionsTotal.WithLabelValues(outcome, state, marker).Inc()
}

// RecordReferralSubmission records the result of one referral submission.
func RecordReferralSubmission(result string) {
	ReferralSubmissionsTotal.WithLabelValues(result).Inc()
}

// RecordNotification records one notification attempt.
func RecordNotification(kind string, err error) {
	result := "sent"
	if err != nil {
		result = "failed"
	}
	NotificationsTotal.WithLabelValues(kind, result).Inc()
}

// Handler serves the default registry in the Prometheus exposition format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// Middleware observes request latency. The route label is the matched chi
// route pattern so that path parameters do not explode label cardinality.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		RequestDurationSeconds.
			WithLabelValues(r.Method, route, strconv.Itoa(status)).
			Observe(time.Since(start).Seconds())
	})
}
