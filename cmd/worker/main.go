// Command worker periodically snapshots population series for a configured
// set of countries into export files.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"popstats/internal/domain/entity"
	"popstats/internal/infra/export"
	"popstats/internal/infra/worldbank"
	"popstats/internal/observability/logging"
	"popstats/internal/usecase/population"
	"popstats/pkg/config"
)

// snapshotConfig holds the worker's snapshot settings.
type snapshotConfig struct {
	Schedule   string
	Countries  []string
	StartYear  int
	EndYear    int
	Dir        string
	Format     string
	RunOnStart bool
}

// loadSnapshotConfig reads the snapshot settings from environment variables.
func loadSnapshotConfig() snapshotConfig {
	lastFullYear := time.Now().Year() - 1
	return snapshotConfig{
		Schedule:   config.GetEnvString("SNAPSHOT_SCHEDULE", "0 3 * * *"),
		Countries:  config.GetEnvStringList("SNAPSHOT_COUNTRIES", []string{"USA"}),
		StartYear:  config.GetEnvInt("SNAPSHOT_START_YEAR", 2000),
		EndYear:    config.GetEnvInt("SNAPSHOT_END_YEAR", lastFullYear),
		Dir:        config.GetEnvString("SNAPSHOT_DIR", "snapshots"),
		Format:     config.GetEnvString("SNAPSHOT_FORMAT", "csv"),
		RunOnStart: config.GetEnvBool("SNAPSHOT_RUN_ON_START", false),
	}
}

func main() {
	logger := logging.NewLogger()
	slog.SetDefault(logger)

	cfg := loadSnapshotConfig()
	if cfg.Format != "csv" && cfg.Format != "xlsx" {
		logger.Error("unsupported snapshot format", slog.String("format", cfg.Format))
		os.Exit(1)
	}
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		logger.Error("failed to create snapshot directory", slog.Any("error", err))
		os.Exit(1)
	}

	wbCfg, err := worldbank.LoadConfigFromEnv()
	if err != nil {
		logger.Error("invalid World Bank configuration", slog.Any("error", err))
		os.Exit(1)
	}
	client, err := worldbank.NewClient(wbCfg, logger)
	if err != nil {
		logger.Error("failed to initialize World Bank client", slog.Any("error", err))
		os.Exit(1)
	}
	svc := population.NewService(client, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metricsSrv := startMetricsServer(ctx, logger)

	if cfg.RunOnStart {
		snapshotAll(ctx, logger, svc, cfg)
	}

	scheduler := cron.New()
	_, err = scheduler.AddFunc(cfg.Schedule, func() {
		snapshotAll(ctx, logger, svc, cfg)
	})
	if err != nil {
		logger.Error("invalid snapshot schedule",
			slog.String("schedule", cfg.Schedule),
			slog.Any("error", err))
		os.Exit(1)
	}

	scheduler.Start()
	logger.Info("snapshot worker started",
		slog.String("schedule", cfg.Schedule),
		slog.Any("countries", cfg.Countries),
		slog.Int("start_year", cfg.StartYear),
		slog.Int("end_year", cfg.EndYear),
		slog.String("dir", cfg.Dir),
		slog.String("format", cfg.Format))

	<-ctx.Done()
	logger.Info("shutting down snapshot worker...")

	// Wait for a running snapshot to finish before exiting.
	<-scheduler.Stop().Done()
	shutdownMetricsServer(metricsSrv, logger)
	logger.Info("snapshot worker stopped")
}

// snapshotAll fetches and exports the configured range for every country.
// Failures are per-country; one bad country does not stop the rest.
func snapshotAll(ctx context.Context, logger *slog.Logger, svc population.Service, cfg snapshotConfig) {
	stamp := time.Now().UTC().Format("2006-01-02")
	for _, country := range cfg.Countries {
		if ctx.Err() != nil {
			return
		}
		if err := snapshotOne(ctx, svc, cfg, country, stamp); err != nil {
			logger.Error("snapshot failed",
				slog.String("country", country),
				slog.Any("error", err))
			continue
		}
		logger.Info("snapshot written", slog.String("country", country))
	}
}

// snapshotOne exports a single country's series to the snapshot directory.
func snapshotOne(ctx context.Context, svc population.Service, cfg snapshotConfig, country, stamp string) error {
	series, err := svc.FetchGrowthSeries(ctx, country, cfg.StartYear, cfg.EndYear)
	if err != nil {
		return err
	}

	path := filepath.Join(cfg.Dir,
		fmt.Sprintf("population_%s_%s.%s", country, stamp, cfg.Format))

	if cfg.Format == "csv" {
		return export.CSVFile(path, series)
	}

	var summary *entity.PopulationAnalysis
	if s, err := svc.Analyze(series); err == nil {
		summary = &s
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create snapshot file: %w", err)
	}
	if err := export.WriteXLSX(f, series, summary); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
