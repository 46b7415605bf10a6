package app

import "github.com/ratingworks/ratings-pipeline/internal/command"

// DefaultReportsOutputDir is where report CSV artifacts land unless
// REPORTS_OUTPUT_DIR overrides it.
const DefaultReportsOutputDir = "reports-out"

// DefaultComputeReportsConfig returns the default config for report computation.
func DefaultComputeReportsConfig() command.ComputeReportsConfig {
	return command.ComputeReportsConfig{
		Concurrency: 4,
	}
}
