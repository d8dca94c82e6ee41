package logger_test

import (
	"log/slog"

	"github.com/soundprediction/go-hybridstore/pkg/logger"
)

func ExampleNewDefaultLogger() {
	// Create a logger with default settings
	log := logger.NewDefaultLogger(slog.LevelDebug)

	// Log different levels
	log.Debug("This is a debug message")
	log.Info("This is an info message")
	log.Info("Persisting data points to collection") // Will be green in terminal
	log.Warn("This is a warning message")            // Will be yellow in terminal
	log.Error("This is an error message")            // Will be red in terminal
}

func ExampleNewLogger() {
	// Create a logger with custom configuration
	log := logger.NewDefaultLogger(slog.LevelInfo)

	// Log with attributes
	log.Info("Processing search", "collection", "docs", "limit", 10)
	log.Info("Persisting batch", "count", 42, "collection", "chunks")          // Green
	log.Warn("Embedding batch retried", "attempt", 2, "max", 3)                // Yellow
	log.Error("Embedding gateway failed", "error", "timeout", "retry_count", 3) // Red
}
