package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/ratingworks/ratings-pipeline/internal/app"
	"github.com/ratingworks/ratings-pipeline/internal/command"
	"github.com/ratingworks/ratings-pipeline/internal/datasources/csvfile"
	"github.com/ratingworks/ratings-pipeline/internal/datasources/sqlstore"
	"github.com/ratingworks/ratings-pipeline/internal/domain"
	"github.com/ratingworks/ratings-pipeline/internal/reports"

	_ "github.com/joho/godotenv/autoload"
)

func main() {
	ctx := context.Background()

	// Setup logger
	logLevel := slog.LevelInfo
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		if err := logLevel.UnmarshalText([]byte(lvl)); err != nil {
			fmt.Fprintf(os.Stderr, "invalid LOG_LEVEL: %s\n", lvl)
			os.Exit(1)
		}
	}

	runID := uuid.NewString()
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	})).With("run_id", runID)
	slog.SetDefault(logger)
	ctx = domain.ContextWithLogger(ctx, logger)
	ctx = domain.ContextWithRunID(ctx, runID)

	if err := run(ctx); err != nil {
		logger.ErrorContext(ctx, "rating analysis run failed", "error", err)
		os.Exit(1)
	}

	logger.InfoContext(ctx, "rating analysis run completed successfully")
}

func run(ctx context.Context) error {
	// The offset encodes the timezone and DST correction for this run; it is
	// deployment-specific, so there is deliberately no default.
	offsetSeconds := int64(app.MustGetEnvAsInt(ctx, "TIME_OFFSET_SECONDS"))

	db, flavor, err := sqlstore.Connect(ctx,
		app.MustGetEnvAsString(ctx, "DATASET_DRIVER"),
		app.MustGetEnvAsString(ctx, "DATASET_URI"),
	)
	if err != nil {
		return fmt.Errorf("connecting to dataset store: %w", err)
	}
	defer func() { _ = db.Close() }()

	store := sqlstore.New(db, flavor)

	partitions, err := csvfile.ParsePartitionSpec(app.MustGetEnvAsString(ctx, "RATINGS_CSV_PATHS"))
	if err != nil {
		return fmt.Errorf("parsing ratings partition spec: %w", err)
	}
	reader := csvfile.New(partitions)

	pipelineCmd := command.NewRunPipeline(reader, store, store, store)
	if _, err := pipelineCmd.Execute(ctx, command.RunPipelineRequest{
		OffsetSeconds: offsetSeconds,
	}); err != nil {
		return fmt.Errorf("running rating pipeline: %w", err)
	}

	catalogue, err := reports.Load(app.MustGetEnvAsString(ctx, "REPORTS_CONFIG"))
	if err != nil {
		return fmt.Errorf("loading report catalogue: %w", err)
	}

	reportsCmd := command.NewComputeReports(
		store,
		catalogue,
		&reports.Renderer{
			Out:       os.Stdout,
			OutputDir: app.GetEnvAsStringWithDefault("REPORTS_OUTPUT_DIR", app.DefaultReportsOutputDir),
		},
		app.DefaultComputeReportsConfig(),
	)
	if _, err := reportsCmd.Execute(ctx, command.ComputeReportsRequest{}); err != nil {
		return fmt.Errorf("computing reports: %w", err)
	}

	return nil
}
