package main

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	hhttp "popstats/internal/handler/http"
	"popstats/internal/handler/http/middleware"
	"popstats/internal/infra/worldbank"
	"popstats/internal/observability/logging"
	"popstats/internal/usecase/population"
	"popstats/pkg/config"
)

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	client := initWorldBankClient(logger)
	svc := population.NewService(client, logger)

	rateLimiter := initRateLimiter(logger)

	handler := hhttp.NewRouter(hhttp.RouterConfig{
		Service:     svc,
		Logger:      logger,
		Version:     getVersion(),
		Breaker:     client.Breaker(),
		RateLimiter: rateLimiter,
	})

	runServer(logger, handler, rateLimiter)
}

// initWorldBankClient builds the World Bank client from environment
// configuration, exiting on invalid configuration.
func initWorldBankClient(logger *slog.Logger) *worldbank.Client {
	cfg, err := worldbank.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid World Bank configuration", slog.Any("error", err))
		os.Exit(1)
	}
	client, err := worldbank.NewClient(cfg, logger)
	if err != nil {
		logger.Error("failed to initialize World Bank client", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("World Bank client initialized",
		slog.String("base_url", cfg.BaseURL),
		slog.Int("rate_limit", cfg.RateLimit),
		slog.Duration("time_window", cfg.TimeWindow))
	return client
}

// initRateLimiter builds the per-IP request limiter from environment
// configuration. Returns nil when rate limiting is disabled.
func initRateLimiter(logger *slog.Logger) *middleware.IPRateLimiter {
	if !config.GetEnvBool("API_RATE_LIMIT_ENABLED", true) {
		logger.Warn("API rate limiting is DISABLED - not recommended for production")
		return nil
	}

	cfg := middleware.DefaultIPRateLimiterConfig()
	cfg.RequestsPerSecond = float64(config.GetEnvInt("API_RATE_LIMIT_RPS", 10))
	cfg.Burst = config.GetEnvInt("API_RATE_LIMIT_BURST", 20)

	logger.Info("API rate limiting initialized",
		slog.Float64("requests_per_second", cfg.RequestsPerSecond),
		slog.Int("burst", cfg.Burst))
	return middleware.NewIPRateLimiter(cfg)
}

// getVersion returns the application version from environment or default.
func getVersion() string {
	return config.GetEnvString("VERSION", "dev")
}

// runServer starts the HTTP server and handles graceful shutdown.
func runServer(logger *slog.Logger, handler http.Handler, rateLimiter *middleware.IPRateLimiter) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if rateLimiter != nil {
		interval := config.GetEnvDuration("API_RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute)
		maxIdle := config.GetEnvDuration("API_RATE_LIMIT_MAX_IDLE", 10*time.Minute)
		go middleware.StartCleanup(ctx, rateLimiter, interval, maxIdle)
	}

	addr := config.GetEnvString("API_ADDR", ":8080")
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second, // Prevent Slowloris attacks
		BaseContext: func(_ net.Listener) context.Context {
			return ctx
		},
	}

	go func() {
		logger.Info("server starting",
			slog.String("addr", addr),
			slog.String("version", getVersion()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.Any("error", err))
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server...")

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", slog.Any("error", err))
	}
	logger.Info("server stopped")
}
