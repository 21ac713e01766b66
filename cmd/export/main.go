// Command export performs a one-shot population fetch and writes the
// growth-annotated series to a CSV or XLSX file.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"popstats/internal/domain/entity"
	"popstats/internal/infra/export"
	"popstats/internal/infra/worldbank"
	"popstats/internal/observability/logging"
	"popstats/internal/usecase/analysis"
	"popstats/internal/usecase/population"
)

func main() {
	var (
		country   = flag.String("country", "", "ISO country code (required)")
		startYear = flag.Int("start", 0, "first year of the range, inclusive (required)")
		endYear   = flag.Int("end", 0, "last year of the range, inclusive (required)")
		format    = flag.String("format", "csv", "output format: csv or xlsx")
		out       = flag.String("out", "", "output file path (default population_<country>_<start>_<end>.<format>)")
		minGrowth = flag.String("min-growth", "", "keep only records with growth rate >= this percentage")
		maxGrowth = flag.String("max-growth", "", "keep only records with growth rate <= this percentage")
	)
	flag.Parse()

	logger := logging.NewTextLogger()
	slog.SetDefault(logger)

	if err := run(logger, *country, *startYear, *endYear, *format, *out, *minGrowth, *maxGrowth); err != nil {
		logger.Error("export failed", slog.Any("error", err))
		os.Exit(1)
	}
}

func run(logger *slog.Logger, country string, startYear, endYear int, format, out, minGrowth, maxGrowth string) error {
	if country == "" {
		return errors.New("-country is required")
	}
	if format != "csv" && format != "xlsx" {
		return fmt.Errorf("unsupported format %q, want csv or xlsx", format)
	}

	minBound, err := parseBound(minGrowth, "min-growth")
	if err != nil {
		return err
	}
	maxBound, err := parseBound(maxGrowth, "max-growth")
	if err != nil {
		return err
	}

	if out == "" {
		out = fmt.Sprintf("population_%s_%d_%d.%s", country, startYear, endYear, format)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wbCfg, err := worldbank.LoadConfigFromEnv()
	if err != nil {
		return err
	}
	client, err := worldbank.NewClient(wbCfg, logger)
	if err != nil {
		return err
	}
	svc := population.NewService(client, logger)

	series, err := svc.FetchGrowthSeries(ctx, country, startYear, endYear)
	if err != nil {
		return err
	}
	records := analysis.FilterByGrowthRate(series, minBound, maxBound)

	var summary *entity.PopulationAnalysis
	if s, err := svc.Analyze(series); err == nil {
		summary = &s
		logger.Info("trend summary",
			slog.String("country", s.Country),
			slog.Int("start_year", s.StartYear),
			slog.Int("end_year", s.EndYear),
			slog.Float64("average_growth_rate", s.AverageGrowthRate),
			slog.Int64("total_change", s.TotalChange),
			slog.Float64("percentage_change", s.PercentageChange))
	} else if errors.Is(err, entity.ErrNoData) {
		logger.Warn("no valid observations in range, writing header-only file")
	} else {
		return err
	}

	if err := writeFile(out, format, records, summary); err != nil {
		return err
	}

	logger.Info("export written",
		slog.String("path", out),
		slog.String("format", format),
		slog.Int("rows", len(records)))
	return nil
}

// parseBound parses an optional growth-rate bound flag.
func parseBound(value, name string) (*float64, error) {
	if value == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return nil, fmt.Errorf("-%s must be a number, got %q", name, value)
	}
	return &f, nil
}

func writeFile(path, format string, records []entity.PopulationRecord, summary *entity.PopulationAnalysis) error {
	if format == "csv" {
		return export.CSVFile(path, records)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := export.WriteXLSX(f, records, summary); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close export file: %w", err)
	}
	return nil
}
