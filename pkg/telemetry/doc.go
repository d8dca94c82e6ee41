// Package telemetry provides slog handlers that persist error-level log
// records for later analysis.
//
// Two sinks are available:
//
//   - ParquetHandler buffers error records and flushes them in batches to
//     parquet files. This is the sink hybridstore.Open assembles when
//     telemetry is enabled in configuration.
//   - SQLHandler writes each error record into a telemetry_logs table on a
//     database handle supplied by the caller. It is not wired by
//     hybridstore.Open: the store holds its single guarded connection
//     privately, so callers who want SQL telemetry pass their own handle
//     (typically a separate telemetry database file).
//
// Both handlers forward every record to a wrapped next handler first, so
// they compose with normal console logging.
package telemetry
