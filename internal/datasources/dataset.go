package datasources

import (
	"context"

	"github.com/ratingworks/ratings-pipeline/internal/domain"
)

// RawRatingReader loads the raw rating records from an ingestion source.
// The source is read once per pipeline run and never mutated.
type RawRatingReader interface {
	ReadRawRatings(ctx context.Context) ([]domain.RawRating, error)
}

// SchemaEnsurer creates the enriched-rating table if it does not exist.
type SchemaEnsurer interface {
	EnsureSchema(ctx context.Context) error
}

// EnrichedRatingClearer removes the enriched records left by a previous run.
type EnrichedRatingClearer interface {
	DeleteEnrichedRatings(ctx context.Context) error
}

// EnrichedRatingWriter persists a batch of enriched records.
type EnrichedRatingWriter interface {
	WriteEnrichedRatings(ctx context.Context, records []domain.EnrichedRating) error
}

// EnrichedRatingCounter reports the number of stored enriched records.
type EnrichedRatingCounter interface {
	CountEnrichedRatings(ctx context.Context) (int64, error)
}

// AggregateComputer runs a grouped aggregate over the stored enriched record
// set. The set is written once per run and read-only afterwards, so callers
// may issue aggregate queries concurrently.
type AggregateComputer interface {
	ComputeAggregate(ctx context.Context, query domain.AggregateQuery) (domain.AggregateResult, error)
}

// EnrichedRatingStore combines all operations on the enriched record set.
type EnrichedRatingStore interface {
	SchemaEnsurer
	EnrichedRatingClearer
	EnrichedRatingWriter
	EnrichedRatingCounter
	AggregateComputer
}

// NullEnrichedRatingStore discards writes and returns empty aggregates. Used
// for dry runs where the enriched set is derived but not persisted.
type NullEnrichedRatingStore struct{}

var _ EnrichedRatingStore = NullEnrichedRatingStore{}

func (NullEnrichedRatingStore) EnsureSchema(_ context.Context) error {
	return nil
}

func (NullEnrichedRatingStore) DeleteEnrichedRatings(_ context.Context) error {
	return nil
}

func (NullEnrichedRatingStore) WriteEnrichedRatings(_ context.Context, _ []domain.EnrichedRating) error {
	return nil
}

func (NullEnrichedRatingStore) CountEnrichedRatings(_ context.Context) (int64, error) {
	return 0, nil
}

func (NullEnrichedRatingStore) ComputeAggregate(
	_ context.Context, _ domain.AggregateQuery,
) (domain.AggregateResult, error) {
	return domain.AggregateResult{}, nil
}
