package domain

import (
	"context"
	"log/slog"
)

type contextKey string

const loggerContextKey contextKey = "logger"

func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerContextKey, logger)
}

func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger := ctx.Value(loggerContextKey)
	if logger == nil {
		logger = slog.Default()
	}

	return logger.(*slog.Logger)
}

const runContextKey contextKey = "run"

// ContextWithRunID attaches the pipeline run identifier to the context so
// every stage can tag its logs and artifacts with the run it belongs to.
func ContextWithRunID(ctx context.Context, runID string) context.Context {
	return context.WithValue(ctx, runContextKey, runID)
}

func RunIDFromContext(ctx context.Context) string {
	runID := ctx.Value(runContextKey)
	if runID == nil {
		runID = ""
	}
	return runID.(string)
}
