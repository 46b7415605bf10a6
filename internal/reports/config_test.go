package reports

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ratingworks/ratings-pipeline/internal/domain"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "reports.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
reports:
  - name: ratings_by_year
    metric: count
    group_by: [year]
  - name: mean_rating_by_user_nth
    metric: mean_rating
    group_by: [user_nth]
    max_user_nth: 50
  - name: books_by_weekday
    metric: count
    group_by: [day_of_week]
    categories: [Books]
    limit: 7
`)

	reports, err := Load(path)
	require.NoError(t, err)
	require.Len(t, reports, 3)

	assert.Equal(t, Report{
		Name:    "ratings_by_year",
		Metric:  "count",
		GroupBy: []string{"year"},
	}, reports[0])

	assert.Equal(t, 50, reports[1].MaxUserNth)
	assert.Equal(t, []string{"Books"}, reports[2].Categories)
	assert.Equal(t, 7, reports[2].Limit)
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name    string
		content string
		wantErr string
	}{
		{
			name:    "empty_catalogue",
			content: "reports: []\n",
			wantErr: "defines no reports",
		},
		{
			name: "missing_name",
			content: `
reports:
  - metric: count
    group_by: [year]
`,
			wantErr: "name is required",
		},
		{
			name: "unknown_metric",
			content: `
reports:
  - name: r1
    metric: median
`,
			wantErr: "unknown metric",
		},
		{
			name: "unknown_group_by_column",
			content: `
reports:
  - name: r1
    metric: count
    group_by: [favourite_colour]
`,
			wantErr: "unknown column",
		},
		{
			name: "duplicate_names",
			content: `
reports:
  - name: r1
    metric: count
  - name: r1
    metric: count
`,
			wantErr: "duplicate report name",
		},
		{
			name: "negative_bound",
			content: `
reports:
  - name: r1
    metric: count
    max_user_nth: -1
`,
			wantErr: "negative bound",
		},
		{
			name:    "not_yaml",
			content: "{{{",
			wantErr: "parsing reports config",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "reading reports config")
}

func TestReportQuery(t *testing.T) {
	report := Report{
		Name:       "top_users",
		Metric:     "mean_rating",
		GroupBy:    []string{"user_nth"},
		MaxUserNth: 50,
		Categories: []string{"Books", "Music"},
		Limit:      100,
	}

	assert.Equal(t, domain.AggregateQuery{
		Metric:     domain.MetricMeanRating,
		GroupBy:    []string{"user_nth"},
		MaxUserNth: 50,
		Categories: []string{"Books", "Music"},
		Limit:      100,
	}, report.Query())
}
