// Package worldbank provides a rate-limited client for the World Bank
// population API.
//
// The client never surfaces per-request failures to callers: any network,
// HTTP, or response-shape problem is logged and downgraded to a
// zero-population sentinel record. Failed requests are not retried.
package worldbank

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"
	"golang.org/x/sync/semaphore"

	"popstats/internal/domain/entity"
	"popstats/internal/observability/metrics"
	"popstats/internal/resilience/circuitbreaker"
	"popstats/pkg/ratelimit"
)

// indicator is the World Bank indicator code for total population.
const indicator = "SP.POP.TOTL"

// maxBodySize caps response reading; a single-year observation response
// is a few hundred bytes, so 1MB is generous.
const maxBodySize = 1 << 20

// Client fetches population observations from the World Bank API.
//
// Admission to the network is gated twice: a weighted semaphore bounds the
// number of in-flight requests, and a fixed-window limiter bounds the
// number of request starts per window. Both are sized by Config.RateLimit.
// A circuit breaker short-circuits requests while the API is failing
// persistently; rejected requests degrade to sentinel records like any
// other failure.
type Client struct {
	baseURL        string
	userAgent      string
	httpClient     *http.Client
	limiter        *ratelimit.FixedWindow
	sem            *semaphore.Weighted
	circuitBreaker *circuitbreaker.CircuitBreaker
	logger         *slog.Logger
}

// NewClient creates a World Bank client from the given configuration.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("worldbank client config: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}

	limiter, err := ratelimit.New(cfg.RateLimit, cfg.TimeWindow)
	if err != nil {
		return nil, fmt.Errorf("worldbank client limiter: %w", err)
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		userAgent:      cfg.UserAgent,
		httpClient:     &http.Client{Timeout: cfg.Timeout},
		limiter:        limiter,
		sem:            semaphore.NewWeighted(int64(cfg.RateLimit)),
		circuitBreaker: circuitbreaker.New(circuitbreaker.WorldBankConfig()),
		logger:         logger,
	}, nil
}

// Breaker exposes the client's circuit breaker for health reporting.
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.circuitBreaker
}

// Population fetches the population of a country for a single year.
//
// It never returns an error: on any failure the zero-population sentinel
// record for (countryCode, year) is returned after logging, so a range
// fetch always completes regardless of individual request outcomes.
// The returned record never has a growth rate set.
func (c *Client) Population(ctx context.Context, countryCode string, year int) entity.PopulationRecord {
	if err := c.sem.Acquire(ctx, 1); err != nil {
		c.logger.Warn("aborted while waiting for request slot",
			slog.String("country", countryCode),
			slog.Int("year", year),
			slog.Any("error", err))
		return entity.Sentinel(countryCode, year)
	}
	defer c.sem.Release(1)

	waitStart := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		c.logger.Warn("aborted while waiting for rate limiter admission",
			slog.String("country", countryCode),
			slog.Int("year", year),
			slog.Any("error", err))
		return entity.Sentinel(countryCode, year)
	}
	metrics.RecordRateLimitWait(time.Since(waitStart))

	start := time.Now()
	result, err := c.circuitBreaker.Execute(func() (interface{}, error) {
		return c.doFetch(ctx, countryCode, year)
	})
	duration := time.Since(start)

	if err != nil {
		outcome := metrics.OutcomeError
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			outcome = metrics.OutcomeCircuitOpen
		}
		metrics.RecordWorldBankRequest(outcome, duration)
		c.logger.Error("population fetch failed",
			slog.String("country", countryCode),
			slog.Int("year", year),
			slog.Duration("duration", duration),
			slog.Any("error", err))
		return entity.Sentinel(countryCode, year)
	}

	population := result.(int64)
	if population <= 0 {
		metrics.RecordWorldBankRequest(metrics.OutcomeNoData, duration)
		c.logger.Debug("no population observation",
			slog.String("country", countryCode),
			slog.Int("year", year))
		return entity.Sentinel(countryCode, year)
	}

	metrics.RecordWorldBankRequest(metrics.OutcomeSuccess, duration)
	return entity.PopulationRecord{
		Country:    countryCode,
		Year:       year,
		Population: population,
	}
}

// doFetch performs the actual HTTP request and response parsing.
//
// It returns the observed population, or 0 when the response is well
// formed but carries no observation ("no data" is not an error and must
// not count as a circuit breaker failure). Network errors, non-200
// statuses, and unparseable bodies are returned as errors.
func (c *Client) doFetch(ctx context.Context, countryCode string, year int) (int64, error) {
	reqURL := fmt.Sprintf("%s/%s/indicator/%s", c.baseURL, url.PathEscape(countryCode), indicator)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	q := url.Values{}
	q.Set("format", "json")
	q.Set("date", strconv.Itoa(year))
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request %s: %w", req.URL.Redacted(), err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Warn("failed to close response body", slog.Any("error", err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %d from %s", resp.StatusCode, req.URL.Redacted())
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return 0, fmt.Errorf("read response body: %w", err)
	}

	return parsePopulation(body), nil
}

// observation is one entry of the World Bank observation list. Value is a
// pointer because the API reports missing data as an explicit null.
type observation struct {
	Value *float64 `json:"value"`
}

// parsePopulation extracts the population from a World Bank response body.
//
// The expected shape is a two-element array [metadata, observations] where
// observations is a non-empty list of objects with a "value" field. Any
// deviation from that shape means "no data" and yields 0; it is never an
// error, matching the client's sentinel contract.
func parsePopulation(body []byte) int64 {
	var payload []json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0
	}
	if len(payload) < 2 {
		return 0
	}

	var observations []observation
	if err := json.Unmarshal(payload[1], &observations); err != nil {
		return 0
	}
	if len(observations) == 0 || observations[0].Value == nil {
		return 0
	}

	value := *observations[0].Value
	if value <= 0 {
		return 0
	}
	return int64(value)
}
