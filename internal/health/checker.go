package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Pinger is satisfied by *mongodb.DB. It is nil when the in-memory backend
// is selected, which has no external dependency to probe.
type Pinger interface {
	Ping(ctx context.Context) error
}

// CheckResult represents the health of a single dependency.
type CheckResult struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// HealthResult is the top-level health response.
type HealthResult struct {
	Status string                 `json:"status"`
	Checks map[string]CheckResult `json:"checks,omitempty"`
}

// Checker verifies that all dependencies are reachable.
type Checker struct {
	db     Pinger
	logger *slog.Logger
	gauge  *prometheus.GaugeVec
}

// NewChecker creates a health checker and registers its Prometheus gauge.
func NewChecker(db Pinger, logger *slog.Logger, reg prometheus.Registerer) *Checker {
	gauge := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "todoapp",
		Name:      "health_check_up",
		Help:      "Whether a dependency is reachable. 1 = up, 0 = down.",
	}, []string{"dependency"})
	reg.MustRegister(gauge)

	return &Checker{
		db:     db,
		logger: logger.With("component", "health"),
		gauge:  gauge,
	}
}

// Liveness returns a simple "up" response if the process is running.
func (c *Checker) Liveness(_ context.Context) HealthResult {
	return HealthResult{Status: "up"}
}

// Readiness pings every dependency and reports per-check status.
func (c *Checker) Readiness(ctx context.Context) HealthResult {
	result := HealthResult{
		Status: "up",
		Checks: make(map[string]CheckResult),
	}
	if c.db == nil {
		return result
	}

	checkCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := c.db.Ping(checkCtx); err != nil {
		c.logger.Warn("mongodb health check failed", "error", err)
		result.Status = "down"
		result.Checks["mongodb"] = CheckResult{Status: "down", Error: err.Error()}
		c.gauge.WithLabelValues("mongodb").Set(0)
	} else {
		result.Checks["mongodb"] = CheckResult{Status: "up"}
		c.gauge.WithLabelValues("mongodb").Set(1)
	}

	return result
}

func (c *Checker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	writeResult(w, c.Liveness(r.Context()))
}

func (c *Checker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	writeResult(w, c.Readiness(r.Context()))
}

func writeResult(w http.ResponseWriter, result HealthResult) {
	w.Header().Set("Content-Type", "application/json")
	if result.Status != "up" {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(result)
}
