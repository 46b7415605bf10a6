package command

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ratingworks/ratings-pipeline/internal/datasources"
	"github.com/ratingworks/ratings-pipeline/internal/domain"
	"github.com/ratingworks/ratings-pipeline/internal/reports"
)

// ComputeReportsRequest is the request for the ComputeReports command.
// The report catalogue is configured on the command itself.
type ComputeReportsRequest struct{}

// ComputeReportsResult reports the outcome of a report batch.
type ComputeReportsResult struct {
	ReportsRun int
	Artifacts  []string
}

// ComputeReportsConfig holds configuration for report computation.
type ComputeReportsConfig struct {
	// Concurrency bounds the number of aggregate queries in flight at once.
	// The enriched record set is read-only by the time reports run, so the
	// queries need no coordination beyond this bound.
	Concurrency int
}

// ComputeReports runs every report in the catalogue against the enriched
// record set and renders the results.
type ComputeReports struct {
	Aggregates datasources.AggregateComputer
	Catalogue  []reports.Report
	Renderer   *reports.Renderer
	Config     ComputeReportsConfig
}

// NewComputeReports creates a properly initialized ComputeReports command.
func NewComputeReports(
	aggregates datasources.AggregateComputer,
	catalogue []reports.Report,
	renderer *reports.Renderer,
	config ComputeReportsConfig,
) *ComputeReports {
	return &ComputeReports{
		Aggregates: aggregates,
		Catalogue:  catalogue,
		Renderer:   renderer,
		Config:     config,
	}
}

// Execute computes all reports concurrently, then renders them in catalogue
// order. Individual report failures are logged and counted; the command
// fails if any report failed.
func (c *ComputeReports) Execute(
	ctx context.Context, _ ComputeReportsRequest,
) (ComputeReportsResult, error) {
	logger := domain.LoggerFromContext(ctx)

	results := make([]domain.AggregateResult, len(c.Catalogue))
	errs := make([]error, len(c.Catalogue))

	grp, grpCtx := errgroup.WithContext(ctx)
	if c.Config.Concurrency > 0 {
		grp.SetLimit(c.Config.Concurrency)
	}
	for i, report := range c.Catalogue {
		i, report := i, report
		grp.Go(func() error {
			results[i], errs[i] = c.Aggregates.ComputeAggregate(grpCtx, report.Query())
			return nil
		})
	}
	_ = grp.Wait()

	var artifacts []string
	var failCount int
	for i, report := range c.Catalogue {
		if errs[i] != nil {
			logger.ErrorContext(ctx, "report failed",
				"report", report.Name, "error", errs[i])
			failCount++
			continue
		}

		artifact, err := c.Renderer.Render(report, results[i])
		if err != nil {
			logger.ErrorContext(ctx, "report rendering failed",
				"report", report.Name, "error", err)
			failCount++
			continue
		}
		if artifact != "" {
			artifacts = append(artifacts, artifact)
		}
	}

	succeeded := len(c.Catalogue) - failCount
	logger.InfoContext(ctx, "report computation complete",
		"success_count", succeeded, "fail_count", failCount)

	if failCount > 0 {
		return ComputeReportsResult{}, fmt.Errorf(
			"computing reports: %d of %d failed", failCount, len(c.Catalogue))
	}

	return ComputeReportsResult{
		ReportsRun: succeeded,
		Artifacts:  artifacts,
	}, nil
}
