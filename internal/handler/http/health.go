package http

import (
	"net/http"
	"time"

	"popstats/internal/handler/http/respond"
	"popstats/internal/resilience/circuitbreaker"
)

// HealthResponse represents the JSON response for the health check endpoint.
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp string                 `json:"timestamp"`
	Checks    map[string]CheckStatus `json:"checks"`
	Version   string                 `json:"version"`
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthHandler handles health check endpoint requests. The service has no
// local state to probe, so it reports the upstream circuit breaker state
// for operational visibility. An open circuit is degraded, not unhealthy:
// the server still answers and fetches degrade to missing records.
type HealthHandler struct {
	Version string
	Breaker *circuitbreaker.CircuitBreaker
}

// ServeHTTP returns the application health status. It always answers 200
// while the process is serving.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]CheckStatus)

	if h.Breaker != nil {
		check := CheckStatus{Status: "healthy"}
		if h.Breaker.IsOpen() {
			check.Status = "degraded"
			check.Message = "circuit breaker open, upstream fetches suspended"
		}
		checks["worldbank_circuit"] = check
	}

	respond.JSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
		Version:   h.Version,
	})
}
