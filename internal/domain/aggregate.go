package domain

// AggregateMetric selects the value computed per group in an aggregate query.
type AggregateMetric string

const (
	// MetricCount counts the rows in each group.
	MetricCount AggregateMetric = "count"
	// MetricMeanRating averages the rating over each group.
	MetricMeanRating AggregateMetric = "mean_rating"
)

var ValidAggregateMetrics = []AggregateMetric{
	MetricCount,
	MetricMeanRating,
}

// AggregateColumns are the enriched-record fields an aggregate query may
// group or filter on. The raw timestamp is deliberately absent: it is day
// granular in the source feed and every useful calendar grouping is already
// a derived column.
var AggregateColumns = []string{
	"user_id",
	"item_id",
	"rating",
	"category",
	"hour",
	"day_of_week",
	"month",
	"year",
	"user_nth",
	"item_nth",
}

// IsAggregateColumn reports whether name is a groupable enriched-record column.
func IsAggregateColumn(name string) bool {
	for _, col := range AggregateColumns {
		if col == name {
			return true
		}
	}
	return false
}

// AggregateQuery describes one grouped aggregate over the enriched record
// set. The enriched set is immutable once a pipeline run has written it, so
// any number of aggregate queries may run against it concurrently.
type AggregateQuery struct {
	Metric  AggregateMetric
	GroupBy []string

	// MaxUserNth and MaxItemNth keep only rows with a rank at or below the
	// bound when positive; zero disables the filter.
	MaxUserNth int
	MaxItemNth int

	// Categories restricts rows to the listed categories when non-empty.
	Categories []string

	// Limit caps the number of result rows when positive.
	Limit int
}

// AggregateResult is one grouped aggregate: Columns holds the group-by
// column names followed by the metric name, and each row carries its values
// in the same order, rendered as strings for table and CSV output.
type AggregateResult struct {
	Columns []string
	Rows    [][]string
}
