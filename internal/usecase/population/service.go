// Package population provides the population fetch use cases. It
// orchestrates per-year fetches against the World Bank client and derives
// growth-annotated series and trend summaries.
package population

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"popstats/internal/domain/entity"
	"popstats/internal/observability/metrics"
	"popstats/internal/observability/tracing"
	"popstats/internal/usecase/analysis"
)

// Fetcher is an interface for fetching a single population observation.
// Implementations never return an error; failures surface as sentinel
// records with zero population.
type Fetcher interface {
	Population(ctx context.Context, countryCode string, year int) entity.PopulationRecord
}

// Service provides the population fetch and analysis use cases.
type Service struct {
	fetcher Fetcher
	logger  *slog.Logger
}

// NewService creates a population Service backed by the given fetcher.
func NewService(fetcher Fetcher, logger *slog.Logger) Service {
	if logger == nil {
		logger = slog.Default()
	}
	return Service{fetcher: fetcher, logger: logger}
}

// FetchStats contains statistics about a range fetch operation.
type FetchStats struct {
	Country  string
	Years    int
	Fetched  int
	Missing  int
	Duration time.Duration
}

// FetchRange fetches population records for every year in [startYear,
// endYear], both bounds inclusive. Fetches for all years are admitted
// concurrently, subject to the client's rate-limit gate, and results are
// collected in COMPLETION ORDER, which is non-deterministic. Sentinel
// (zero-population) records are filtered out, so the result holds one
// record per successfully observed year.
//
// Callers that need chronology must sort by year afterward;
// FetchGrowthSeries does that and is what most consumers want.
//
// The only error conditions are invalid input and context cancellation:
// individual fetch failures never propagate.
func (s Service) FetchRange(ctx context.Context, countryCode string, startYear, endYear int) ([]entity.PopulationRecord, error) {
	if err := entity.ValidateCountryCode(countryCode); err != nil {
		return nil, err
	}
	if err := entity.ValidateYearRange(startYear, endYear); err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "population.fetch_range")
	defer span.End()

	start := time.Now()
	years := endYear - startYear + 1
	results := make(chan entity.PopulationRecord)

	eg, egCtx := errgroup.WithContext(ctx)
	for year := startYear; year <= endYear; year++ {
		eg.Go(func() error {
			record := s.fetcher.Population(egCtx, countryCode, year)
			select {
			case results <- record:
				return nil
			case <-egCtx.Done():
				return egCtx.Err()
			}
		})
	}

	collectDone := make(chan struct{})
	records := make([]entity.PopulationRecord, 0, years)
	missing := 0
	go func() {
		defer close(collectDone)
		for record := range results {
			if record.Valid() {
				records = append(records, record)
			} else {
				missing++
			}
		}
	}()

	err := eg.Wait()
	close(results)
	<-collectDone
	if err == nil {
		// Workers degrade to sentinels on cancellation, so surface it here.
		err = ctx.Err()
	}
	if err != nil {
		return nil, fmt.Errorf("fetch population range: %w", err)
	}

	stats := FetchStats{
		Country:  countryCode,
		Years:    years,
		Fetched:  len(records),
		Missing:  missing,
		Duration: time.Since(start),
	}
	metrics.RecordRangeFetch(stats.Country, stats.Duration, stats.Fetched, stats.Missing)
	s.logger.Info("population range fetch completed",
		slog.String("country", stats.Country),
		slog.Int("years", stats.Years),
		slog.Int("fetched", stats.Fetched),
		slog.Int("missing", stats.Missing),
		slog.Duration("duration", stats.Duration),
	)

	return records, nil
}

// FetchGrowthSeries fetches a year range and returns it as a chronological
// series with year-over-year growth rates annotated. The first record of
// the series never carries a growth rate.
func (s Service) FetchGrowthSeries(ctx context.Context, countryCode string, startYear, endYear int) ([]entity.PopulationRecord, error) {
	records, err := s.FetchRange(ctx, countryCode, startYear, endYear)
	if err != nil {
		return nil, err
	}

	analysis.SortByYear(records)
	analysis.AnnotateGrowthRates(records)
	return records, nil
}

// Analyze reduces records into a trend summary and records the outcome.
// It returns entity.ErrNoData when no valid records remain.
func (s Service) Analyze(records []entity.PopulationRecord) (entity.PopulationAnalysis, error) {
	result, err := analysis.Analyze(records)
	metrics.RecordAnalysis(err == nil)
	return result, err
}
