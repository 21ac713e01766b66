package worldbank

import (
	"fmt"
	"time"

	"popstats/pkg/config"
)

// DefaultBaseURL is the World Bank country API root.
const DefaultBaseURL = "https://api.worldbank.org/v2/country"

// Config holds the configuration for the World Bank API client.
//
// Rate limiting settings:
//   - RateLimit: bounds both the number of in-flight requests and the
//     number of request starts per TimeWindow
//   - TimeWindow: the fixed admission window for the rate limiter
//
// Request settings:
//   - Timeout: per-request HTTP timeout; the client does not impose a
//     deadline on a whole range fetch, callers do that via context
type Config struct {
	// BaseURL is the API root. Tests point this at an httptest server.
	// Default: DefaultBaseURL
	BaseURL string

	// RateLimit is the maximum number of requests per time window, and
	// also the maximum number of in-flight requests.
	// Default: 10
	RateLimit int

	// TimeWindow is the fixed window for the rate limiter.
	// Default: 1s
	TimeWindow time.Duration

	// Timeout is the maximum duration for a single HTTP request.
	// Default: 10s
	Timeout time.Duration

	// UserAgent is sent with every outbound request.
	// Default: "popstats"
	UserAgent string
}

// DefaultConfig returns the default configuration for the World Bank client.
func DefaultConfig() Config {
	return Config{
		BaseURL:    DefaultBaseURL,
		RateLimit:  10,
		TimeWindow: 1 * time.Second,
		Timeout:    10 * time.Second,
		UserAgent:  "popstats",
	}
}

// Validate checks if the configuration values are valid and safe.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("base URL must not be empty")
	}

	if c.RateLimit < 1 || c.RateLimit > 100 {
		return fmt.Errorf("rate limit must be between 1 and 100, got %d", c.RateLimit)
	}

	if err := config.ValidateDurationRange(c.TimeWindow, 100*time.Millisecond, 10*time.Minute); err != nil {
		return fmt.Errorf("invalid time window: %w", err)
	}

	if err := config.ValidatePositiveDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}

	return nil
}

// LoadConfigFromEnv loads configuration from environment variables.
// If a variable is not set or invalid, the default value is used.
// After loading, the configuration is validated.
//
// Environment variables:
//   - WORLDBANK_BASE_URL: API root (default: DefaultBaseURL)
//   - WORLDBANK_RATE_LIMIT: requests per window (default: 10)
//   - WORLDBANK_TIME_WINDOW: duration string, e.g., "1s" (default: 1s)
//   - WORLDBANK_TIMEOUT: per-request timeout (default: 10s)
//   - WORLDBANK_USER_AGENT: outbound User-Agent (default: "popstats")
func LoadConfigFromEnv() (Config, error) {
	cfg := DefaultConfig()

	cfg.BaseURL = config.GetEnvString("WORLDBANK_BASE_URL", cfg.BaseURL)
	cfg.RateLimit = config.GetEnvInt("WORLDBANK_RATE_LIMIT", cfg.RateLimit)
	cfg.TimeWindow = config.GetEnvDuration("WORLDBANK_TIME_WINDOW", cfg.TimeWindow)
	cfg.Timeout = config.GetEnvDuration("WORLDBANK_TIMEOUT", cfg.Timeout)
	cfg.UserAgent = config.GetEnvString("WORLDBANK_USER_AGENT", cfg.UserAgent)

	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}
