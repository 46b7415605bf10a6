// Package reports defines the aggregate report catalogue and renders report
// results as tables and CSV artifacts for downstream charting.
package reports

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ratingworks/ratings-pipeline/internal/domain"
)

// Report defines one aggregate report computed over the enriched record set.
type Report struct {
	// Name identifies the report; the CSV artifact is written as <name>.csv.
	Name string `yaml:"name"`

	// Metric is one of: count | mean_rating.
	Metric string `yaml:"metric"`

	// GroupBy lists the enriched-record columns to group on. Empty produces
	// a single grand-total row.
	GroupBy []string `yaml:"group_by"`

	// MaxUserNth keeps only rows with user_nth <= N when set.
	MaxUserNth int `yaml:"max_user_nth"`

	// MaxItemNth keeps only rows with item_nth <= N when set.
	MaxItemNth int `yaml:"max_item_nth"`

	// Categories restricts the report to the listed categories when set.
	Categories []string `yaml:"categories"`

	// Limit caps the number of result rows when set.
	Limit int `yaml:"limit"`
}

// Catalogue is the top-level structure of a reports config file.
type Catalogue struct {
	Reports []Report `yaml:"reports"`
}

// Load reads and validates a report catalogue from a YAML file.
func Load(path string) ([]Report, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading reports config %s: %w", path, err)
	}

	var catalogue Catalogue
	if err := yaml.Unmarshal(raw, &catalogue); err != nil {
		return nil, fmt.Errorf("parsing reports config %s: %w", path, err)
	}

	if len(catalogue.Reports) == 0 {
		return nil, fmt.Errorf("reports config %s defines no reports", path)
	}

	seen := make(map[string]bool, len(catalogue.Reports))
	for i, report := range catalogue.Reports {
		if err := report.Validate(); err != nil {
			return nil, fmt.Errorf("report %d: %w", i, err)
		}
		if seen[report.Name] {
			return nil, fmt.Errorf("duplicate report name [%s]", report.Name)
		}
		seen[report.Name] = true
	}

	return catalogue.Reports, nil
}

// Validate checks the report definition against the enriched output schema.
func (r Report) Validate() error {
	if r.Name == "" {
		return fmt.Errorf("report name is required")
	}

	validMetric := false
	for _, m := range domain.ValidAggregateMetrics {
		if domain.AggregateMetric(r.Metric) == m {
			validMetric = true
			break
		}
	}
	if !validMetric {
		return fmt.Errorf("report [%s] has unknown metric [%s]", r.Name, r.Metric)
	}

	for _, col := range r.GroupBy {
		if !domain.IsAggregateColumn(col) {
			return fmt.Errorf("report [%s] groups by unknown column [%s]", r.Name, col)
		}
	}

	if r.MaxUserNth < 0 || r.MaxItemNth < 0 || r.Limit < 0 {
		return fmt.Errorf("report [%s] has a negative bound", r.Name)
	}

	return nil
}

// Query converts the report definition to an aggregate query.
func (r Report) Query() domain.AggregateQuery {
	return domain.AggregateQuery{
		Metric:     domain.AggregateMetric(r.Metric),
		GroupBy:    r.GroupBy,
		MaxUserNth: r.MaxUserNth,
		MaxItemNth: r.MaxItemNth,
		Categories: r.Categories,
		Limit:      r.Limit,
	}
}
