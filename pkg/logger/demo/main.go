package main

import (
	"log/slog"

	"github.com/soundprediction/go-hybridstore/pkg/logger"
)

func main() {
	// Create a colored logger
	log := logger.NewDefaultLogger(slog.LevelDebug)

	log.Info("============================================")
	log.Info("    Hybridstore Colored Logger Demo")
	log.Info("============================================")
	log.Info("")

	log.Debug("Debug message - standard color")
	log.Info("Info message - standard color")
	log.Info("Persisting data points to collection - green!")
	log.Info("Batch committed successfully - also green!")
	log.Warn("Warning message - yellow!")
	log.Error("Error message - red!")

	log.Info("")
	log.Info("Durable writes are highlighted in green:")
	log.Info("Persisting embedded batch", "count", 42, "collection", "chunks")
	log.Info("Batch committed", "duration", "2.5s")
	log.Info("Pruning store", "collections", 3)

	log.Info("")
	log.Warn("Warnings appear in yellow for attention")
	log.Error("Errors appear in red for immediate visibility")

	log.Info("")
	log.Info("Demo complete!")
}
