package http

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"popstats/internal/handler/http/middleware"
	"popstats/internal/handler/http/requestid"
	"popstats/internal/observability/tracing"
	"popstats/internal/resilience/circuitbreaker"
)

// RouterConfig holds the dependencies for building the API handler.
type RouterConfig struct {
	Service PopulationService
	Logger  *slog.Logger
	Version string

	// Breaker is the World Bank client's circuit breaker, reported by the
	// health endpoint. Optional.
	Breaker *circuitbreaker.CircuitBreaker

	// RateLimiter limits requests per client IP. Optional; nil disables
	// request rate limiting.
	RateLimiter *middleware.IPRateLimiter
}

// maxBodyBytes caps request bodies. All endpoints are GET, so anything
// beyond a small allowance is noise.
const maxBodyBytes = 1 << 20

// NewRouter builds the HTTP handler with all routes and middleware.
//
// Middleware order, outermost first: request ID, IP rate limit, recovery,
// logging, body limit, tracing, metrics.
func NewRouter(cfg RouterConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	populationHandler := NewPopulationHandler(cfg.Service)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/population", populationHandler.Query)
	mux.HandleFunc("GET /api/population/export", populationHandler.Export)
	mux.Handle("GET /healthz", &HealthHandler{Version: cfg.Version, Breaker: cfg.Breaker})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Apply in reverse order (innermost to outermost).
	var handler http.Handler = mux
	handler = Metrics(handler)
	handler = tracing.Middleware(handler)
	handler = LimitRequestBody(maxBodyBytes)(handler)
	handler = Logging(logger)(handler)
	handler = Recover(logger)(handler)
	if cfg.RateLimiter != nil {
		handler = cfg.RateLimiter.Middleware()(handler)
	}
	handler = requestid.Middleware(handler)

	return handler
}
