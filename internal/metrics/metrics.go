package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics

	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "todoapp",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"method", "path", "status"})

	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todoapp",
		Name:      "http_requests_total",
		Help:      "Total HTTP requests.",
	}, []string{"method", "path", "status"})

	// Domain metrics

	UsersRegisteredTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "todoapp",
		Name:      "users_registered_total",
		Help:      "Total successful registrations.",
	})

	LoginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "todoapp",
		Name:      "login_attempts_total",
		Help:      "Total login attempts, by outcome.",
	}, []string{"outcome"})

	TasksCreatedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "todoapp",
		Name:      "tasks_created_total",
		Help:      "Total tasks created.",
	})

	TasksDeletedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "todoapp",
		Name:      "tasks_deleted_total",
		Help:      "Total tasks deleted.",
	})
)

func Register() {
	prometheus.MustRegister(
		HTTPRequestDuration,
		HTTPRequestsTotal,
		UsersRegisteredTotal,
		LoginAttemptsTotal,
		TasksCreatedTotal,
		TasksDeletedTotal,
	)
}

// NewServer serves /metrics plus the liveness and readiness probes on a
// port separate from the API.
func NewServer(addr string, checker ProbeHandler) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	if checker != nil {
		mux.HandleFunc("/healthz", checker.LivenessHandler)
		mux.HandleFunc("/readyz", checker.ReadinessHandler)
	}
	return &http.Server{Addr: addr, Handler: mux}
}

// ProbeHandler is satisfied by *health.Checker.
type ProbeHandler interface {
	LivenessHandler(w http.ResponseWriter, r *http.Request)
	ReadinessHandler(w http.ResponseWriter, r *http.Request)
}
