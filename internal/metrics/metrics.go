package metrics

import (
	"encoding/json"
	"net/http"

	"github.com/abenov/coursehub/internal/health"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Session metrics

	AuthOperationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursehub",
		Name:      "auth_operations_total",
		Help:      "Session actions dispatched, by operation and outcome.",
	}, []string{"operation", "outcome"})

	HydrationDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "coursehub",
		Name:      "hydration_duration_seconds",
		Help:      "Time from startup to the render gate being released.",
		Buckets:   []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
	})

	SessionExpirySeconds = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "coursehub",
		Name:      "session_expiry_seconds",
		Help:      "Seconds until the stored credential expires. 0 when absent.",
	})

	TokenStoreEventsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursehub",
		Name:      "token_store_events_total",
		Help:      "Out-of-band token file changes seen by the watcher, by kind.",
	}, []string{"kind"})

	// API client metrics

	APIRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coursehub",
		Name:      "api_request_duration_seconds",
		Help:      "Latency of calls to the marketplace API.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"endpoint", "status"})

	APIRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursehub",
		Name:      "api_requests_total",
		Help:      "Total calls to the marketplace API.",
	}, []string{"endpoint", "status"})

	ForcedLogoutsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "coursehub",
		Name:      "forced_logouts_total",
		Help:      "Tokens removed after a server-confirmed 401.",
	})

	// Local UI metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coursehub",
		Name:      "ui_request_duration_seconds",
		Help:      "Local UI request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursehub",
		Name:      "ui_requests_total",
		Help:      "Total local UI requests.",
	}, []string{"method", "path", "status"})

	GuardRedirectsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coursehub",
		Name:      "guard_redirects_total",
		Help:      "Protected views denied by the route guard, by reason.",
	}, []string{"reason"})
)

func Register() {
	prometheus.MustRegister(
		AuthOperationsTotal,
		HydrationDuration,
		SessionExpirySeconds,
		TokenStoreEventsTotal,
		APIRequestDuration,
		APIRequestsTotal,
		ForcedLogoutsTotal,
		HTTPRequestDuration,
		HTTPRequestsTotal,
		GuardRedirectsTotal,
	)
}

func NewServer(addr string, checker *health.Checker) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz/live", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, checker.Liveness(r.Context()))
	})
	mux.HandleFunc("/healthz/ready", func(w http.ResponseWriter, r *http.Request) {
		res := checker.Readiness(r.Context())
		status := http.StatusOK
		if res.Status != "up" {
			status = http.StatusServiceUnavailable
		}
		writeJSON(w, status, res)
	})
	return &http.Server{Addr: addr, Handler: mux}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
