package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Pinger is a dependency the readiness probe checks
type Pinger interface {
	Ping(ctx context.Context) error
}

// Check names a dependency for the health report
type Check struct {
	Name     string
	Pinger   Pinger
	Critical bool // a failing critical check makes the service not ready
}

// Health serves liveness and readiness probes
type Health struct {
	checks []Check
}

// NewHealth creates probes over the given dependencies
func NewHealth(checks ...Check) *Health {
	return &Health{checks: checks}
}

// Liveness handles Kubernetes liveness probes.
// Returns 200 whenever the process is serving (doesn't check dependencies).
func (h *Health) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    "alive",
		"timestamp": time.Now().Unix(),
	})
}

// Readiness handles Kubernetes readiness probes and reports each dependency
func (h *Health) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]any, len(h.checks))

	for _, c := range h.checks {
		if err := c.Pinger.Ping(ctx); err != nil {
			checks[c.Name] = map[string]any{"status": "unhealthy", "error": err.Error()}
			if c.Critical {
				status = "not_ready"
				httpStatus = http.StatusServiceUnavailable
			}
			continue
		}
		checks[c.Name] = map[string]any{"status": "healthy"}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)
	json.NewEncoder(w).Encode(map[string]any{
		"status":    status,
		"timestamp": time.Now().Unix(),
		"checks":    checks,
	})
}

// PingFunc adapts a function to Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }
