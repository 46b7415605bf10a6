package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"time"

	"github.com/huandu/go-sqlbuilder"

	"github.com/ratingworks/ratings-pipeline/internal/datasources"
	"github.com/ratingworks/ratings-pipeline/internal/domain"
)

const enrichedRatingsTable = "enriched_ratings"

// insertBatchSize bounds the rows per INSERT so statements stay within the
// engines' placeholder limits.
const insertBatchSize = 500

var enrichedRatingsColumns = []string{
	"user_id", "item_id", "rating", "ts", "category",
	"local_ts", "hour", "day_of_week", "month", "year",
	"user_nth", "item_nth",
}

// local_ts is stored as shifted epoch seconds rather than an engine
// timestamp type so the schema is identical across drivers; the calendar
// components the reports group on are materialized alongside it.
const enrichedRatingsSchema = `CREATE TABLE IF NOT EXISTS enriched_ratings (
	user_id VARCHAR(64) NOT NULL,
	item_id VARCHAR(64) NOT NULL,
	rating INTEGER NOT NULL,
	ts BIGINT NOT NULL,
	category VARCHAR(64) NOT NULL,
	local_ts BIGINT NOT NULL,
	hour INTEGER NOT NULL,
	day_of_week VARCHAR(16) NOT NULL,
	month INTEGER NOT NULL,
	year INTEGER NOT NULL,
	user_nth INTEGER NOT NULL,
	item_nth INTEGER NOT NULL
)`

var _ datasources.EnrichedRatingStore = (*Repository)(nil)

type Repository struct {
	db     *sql.DB
	flavor sqlbuilder.Flavor
}

func New(db *sql.DB, flavor sqlbuilder.Flavor) *Repository {
	return &Repository{db: db, flavor: flavor}
}

func (r *Repository) EnsureSchema(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, enrichedRatingsSchema); err != nil {
		return fmt.Errorf("creating enriched ratings table: %w", err)
	}
	return nil
}

func (r *Repository) DeleteEnrichedRatings(ctx context.Context) error {
	db := r.flavor.NewDeleteBuilder()
	db.DeleteFrom(enrichedRatingsTable)

	query, args := db.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("deleting enriched ratings: %w", err)
	}
	return nil
}

func (r *Repository) WriteEnrichedRatings(ctx context.Context, records []domain.EnrichedRating) error {
	for start := 0; start < len(records); start += insertBatchSize {
		end := min(start+insertBatchSize, len(records))
		if err := r.insertBatch(ctx, records[start:end]); err != nil {
			return fmt.Errorf("writing enriched ratings batch at offset %d: %w", start, err)
		}
	}
	return nil
}

func (r *Repository) insertBatch(ctx context.Context, records []domain.EnrichedRating) error {
	ib := r.flavor.NewInsertBuilder()
	ib.InsertInto(enrichedRatingsTable)
	ib.Cols(enrichedRatingsColumns...)

	for _, rec := range records {
		ib.Values(
			rec.UserID, rec.ItemID, rec.Rating, rec.Timestamp, rec.Category,
			rec.LocalTimestamp.Unix(), rec.Hour, rec.DayOfWeek, rec.Month, rec.Year,
			rec.UserNth, rec.ItemNth,
		)
	}

	query, args := ib.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting enriched ratings: %w", err)
	}
	return nil
}

func (r *Repository) CountEnrichedRatings(ctx context.Context) (int64, error) {
	sb := r.flavor.NewSelectBuilder()
	sb.Select("COUNT(*)")
	sb.From(enrichedRatingsTable)

	query, args := sb.Build()

	var count int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("counting enriched ratings: %w", err)
	}
	return count, nil
}

func (r *Repository) ComputeAggregate(
	ctx context.Context,
	q domain.AggregateQuery,
) (domain.AggregateResult, error) {
	for _, col := range q.GroupBy {
		if !domain.IsAggregateColumn(col) {
			return domain.AggregateResult{}, fmt.Errorf("unknown group by column [%s]", col)
		}
	}

	metricExpr, err := buildMetricExpr(q.Metric)
	if err != nil {
		return domain.AggregateResult{}, err
	}

	sb := r.flavor.NewSelectBuilder()
	selectCols := append(append([]string{}, q.GroupBy...), metricExpr)
	sb.Select(selectCols...)
	sb.From(enrichedRatingsTable)

	conds := buildReportConditions(sb, q)
	if len(conds) > 0 {
		sb.Where(conds...)
	}

	if len(q.GroupBy) > 0 {
		sb.GroupBy(q.GroupBy...)
		sb.OrderBy(q.GroupBy...)
	}
	if q.Limit > 0 {
		sb.Limit(q.Limit)
	}

	query, args := sb.Build()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.AggregateResult{}, fmt.Errorf("running aggregate query: %w", err)
	}
	defer func() { _ = rows.Close() }()

	columns := append(append([]string{}, q.GroupBy...), string(q.Metric))

	result := domain.AggregateResult{Columns: columns, Rows: [][]string{}}
	for rows.Next() {
		values := make([]any, len(columns))
		scanTargets := make([]any, len(columns))
		for i := range values {
			scanTargets[i] = &values[i]
		}
		if err := rows.Scan(scanTargets...); err != nil {
			return domain.AggregateResult{}, fmt.Errorf("scanning aggregate row: %w", err)
		}

		row := make([]string, len(values))
		for i, v := range values {
			row[i] = formatValue(v)
		}
		result.Rows = append(result.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return domain.AggregateResult{}, fmt.Errorf("iterating aggregate rows: %w", err)
	}

	return result, nil
}

func buildMetricExpr(metric domain.AggregateMetric) (string, error) {
	switch metric {
	case domain.MetricCount:
		return "COUNT(*)", nil
	case domain.MetricMeanRating:
		return "AVG(rating)", nil
	default:
		return "", fmt.Errorf("unknown aggregate metric [%s]", metric)
	}
}

func buildReportConditions(sb *sqlbuilder.SelectBuilder, q domain.AggregateQuery) []string {
	var conds []string

	if q.MaxUserNth > 0 {
		conds = append(conds, sb.LessEqualThan("user_nth", q.MaxUserNth))
	}

	if q.MaxItemNth > 0 {
		conds = append(conds, sb.LessEqualThan("item_nth", q.MaxItemNth))
	}

	if len(q.Categories) > 0 {
		allowed := make([]interface{}, 0, len(q.Categories))
		for _, category := range q.Categories {
			allowed = append(allowed, category)
		}
		conds = append(conds, sb.In("category", allowed...))
	}

	return conds
}

// formatValue renders a scanned aggregate value for table and CSV output.
// Drivers differ in what they hand back: SQLite returns Go numerics, the
// MySQL driver returns []byte for non-integer expressions such as AVG.
func formatValue(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case []byte:
		return string(val)
	case string:
		return val
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
