package command

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/ratingworks/ratings-pipeline/internal/datasources"
	"github.com/ratingworks/ratings-pipeline/internal/domain"
)

// RunPipelineRequest is the request for the RunPipeline command.
type RunPipelineRequest struct {
	// OffsetSeconds shifts raw epoch timestamps so that a UTC read of the
	// shifted value yields the intended local calendar date. The value
	// encodes a timezone plus DST convention valid only for a particular
	// deployment and run date, so there is no default.
	OffsetSeconds int64
}

// RunPipelineResult reports row accounting for one pipeline run.
type RunPipelineResult struct {
	RowsRead   int
	RowsKept   int // rows remaining after deduplication
	RowsStored int
}

// RunPipeline transforms the raw rating feed into the enriched record set:
// read, deduplicate, derive calendar features, rank per user and per item,
// then persist. Deduplication runs strictly before the feature and rank
// stages; the two rank passes are independent of each other and of the
// feature stage and run concurrently.
type RunPipeline struct {
	Reader  datasources.RawRatingReader
	Schema  datasources.SchemaEnsurer
	Clearer datasources.EnrichedRatingClearer
	Writer  datasources.EnrichedRatingWriter
}

// NewRunPipeline creates a properly initialized RunPipeline command.
func NewRunPipeline(
	reader datasources.RawRatingReader,
	schema datasources.SchemaEnsurer,
	clearer datasources.EnrichedRatingClearer,
	writer datasources.EnrichedRatingWriter,
) *RunPipeline {
	return &RunPipeline{
		Reader:  reader,
		Schema:  schema,
		Clearer: clearer,
		Writer:  writer,
	}
}

// Execute runs the full transformation and stores the enriched record set.
// Once stored, the set is immutable for the rest of the analysis session;
// downstream aggregate reports read it without coordination.
func (c *RunPipeline) Execute(ctx context.Context, req RunPipelineRequest) (RunPipelineResult, error) {
	logger := domain.LoggerFromContext(ctx)

	raw, err := c.Reader.ReadRawRatings(ctx)
	if err != nil {
		return RunPipelineResult{}, fmt.Errorf("reading raw ratings: %w", err)
	}
	logger.InfoContext(ctx, "loaded raw ratings", "rows", len(raw))

	deduped := domain.Deduplicate(raw)
	logger.InfoContext(ctx, "deduplicated ratings",
		"rows", len(deduped),
		"dropped", len(raw)-len(deduped),
	)

	enriched := domain.DeriveTimeFeatures(deduped, req.OffsetSeconds)

	// The user and item passes write disjoint fields of the same records.
	grp, _ := errgroup.WithContext(ctx)
	grp.Go(func() error {
		domain.RankUserNth(enriched)
		return nil
	})
	grp.Go(func() error {
		domain.RankItemNth(enriched)
		return nil
	})
	if err := grp.Wait(); err != nil {
		return RunPipelineResult{}, fmt.Errorf("ranking ratings: %w", err)
	}

	if err := c.Schema.EnsureSchema(ctx); err != nil {
		return RunPipelineResult{}, fmt.Errorf("ensuring enriched ratings schema: %w", err)
	}

	if err := c.Clearer.DeleteEnrichedRatings(ctx); err != nil {
		return RunPipelineResult{}, fmt.Errorf("clearing previous enriched ratings: %w", err)
	}

	if err := c.Writer.WriteEnrichedRatings(ctx, enriched); err != nil {
		return RunPipelineResult{}, fmt.Errorf("storing enriched ratings: %w", err)
	}

	logger.InfoContext(ctx, "pipeline run complete", "rows_stored", len(enriched))

	return RunPipelineResult{
		RowsRead:   len(raw),
		RowsKept:   len(deduped),
		RowsStored: len(enriched),
	}, nil
}
