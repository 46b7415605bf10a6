package reports

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/ratingworks/ratings-pipeline/internal/domain"
)

// Renderer writes report results as human-readable tables and as CSV
// artifacts for downstream charting.
type Renderer struct {
	// Out receives the rendered tables; nil disables table output.
	Out io.Writer

	// OutputDir receives one <report name>.csv artifact per report; empty
	// disables artifact files.
	OutputDir string
}

// Render emits the result of one report. It returns the path of the CSV
// artifact written, or "" when artifact output is disabled.
func (r *Renderer) Render(report Report, result domain.AggregateResult) (string, error) {
	if r.Out != nil {
		if _, err := fmt.Fprintf(r.Out, "\n%s\n%s\n", report.Name, renderTable(result)); err != nil {
			return "", fmt.Errorf("rendering table for report [%s]: %w", report.Name, err)
		}
	}

	if r.OutputDir == "" {
		return "", nil
	}

	path := filepath.Join(r.OutputDir, report.Name+".csv")
	if err := writeArtifact(path, result); err != nil {
		return "", fmt.Errorf("writing artifact for report [%s]: %w", report.Name, err)
	}
	return path, nil
}

func renderTable(result domain.AggregateResult) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, len(result.Columns))
	for i, col := range result.Columns {
		header[i] = col
	}
	tw.AppendHeader(header)

	for _, row := range result.Rows {
		r := make(table.Row, len(row))
		for i, cell := range row {
			r[i] = cell
		}
		tw.AppendRow(r)
	}

	// The metric is always the last column; right-align it.
	if len(result.Columns) > 0 {
		tw.SetColumnConfigs([]table.ColumnConfig{{
			Number:      len(result.Columns),
			Align:       text.AlignRight,
			AlignHeader: text.AlignLeft,
		}})
	}

	return tw.Render()
}

func writeArtifact(path string, result domain.AggregateResult) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating artifact dir: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating artifact file: %w", err)
	}
	defer func() { _ = file.Close() }()

	w := csv.NewWriter(file)
	if err := w.Write(result.Columns); err != nil {
		return fmt.Errorf("writing artifact header: %w", err)
	}
	for _, row := range result.Rows {
		if err := w.Write(row); err != nil {
			return fmt.Errorf("writing artifact row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing artifact: %w", err)
	}
	return file.Close()
}
