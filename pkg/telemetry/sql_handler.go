package telemetry

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"runtime"

	"github.com/google/uuid"

	"github.com/soundprediction/go-hybridstore/pkg/types"
)

// SQLHandler is a slog.Handler that writes error logs into a SQL table,
// typically the same embedded database the store runs on, so error history
// travels with the data file.
type SQLHandler struct {
	next      slog.Handler
	db        *sql.DB
	tableName string
}

// NewSQLHandler creates a new SQLHandler using an existing DB connection.
// This sink is caller-wired: hybridstore.Open assembles only the parquet
// sink, and the db handle here is the caller's own.
func NewSQLHandler(next slog.Handler, db *sql.DB) (*SQLHandler, error) {
	h := &SQLHandler{
		next:      next,
		db:        db,
		tableName: "telemetry_logs",
	}

	if err := h.ensureTable(); err != nil {
		return nil, fmt.Errorf("failed to ensure telemetry table: %w", err)
	}

	return h, nil
}

func (h *SQLHandler) ensureTable() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id TEXT PRIMARY KEY,
			timestamp TIMESTAMP,
			level TEXT,
			message TEXT,
			operation TEXT,
			collection TEXT,
			source_file TEXT,
			line_number INTEGER,
			attributes TEXT
		)
	`, h.tableName)

	_, err := h.db.Exec(query)
	return err
}

// Enabled implements slog.Handler
func (h *SQLHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.next.Enabled(ctx, level)
}

// Handle implements slog.Handler
func (h *SQLHandler) Handle(ctx context.Context, r slog.Record) error {
	// Always pass to next handler first
	if err := h.next.Handle(ctx, r); err != nil {
		return err
	}

	// Only errors (and above) are persisted, same as ParquetHandler
	if r.Level < slog.LevelError {
		return nil
	}

	var operation, collection string
	if v, ok := ctx.Value(types.ContextKeyOperation).(string); ok {
		operation = v
	}
	if v, ok := ctx.Value(types.ContextKeyCollection).(string); ok {
		collection = v
	}

	attrs := make(map[string]interface{})
	r.Attrs(func(a slog.Attr) bool {
		attrs[a.Key] = a.Value.Any()
		return true
	})

	attrsJson, _ := json.Marshal(attrs)

	fs := runtime.CallersFrames([]uintptr{r.PC})
	f, _ := fs.Next()

	query := fmt.Sprintf(`
		INSERT INTO %s (id, timestamp, level, message, operation, collection, source_file, line_number, attributes)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, h.tableName)

	_, err := h.db.Exec(query,
		uuid.New().String(),
		r.Time.UTC(),
		r.Level.String(),
		r.Message,
		operation,
		collection,
		f.File,
		f.Line,
		string(attrsJson),
	)

	if err != nil {
		// Never block the logging chain on a database error.
		fmt.Fprintf(os.Stderr, "failed to write log to SQL: %v\n", err)
	}

	return nil
}

// WithAttrs implements slog.Handler
func (h *SQLHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &SQLHandler{
		next:      h.next.WithAttrs(attrs),
		db:        h.db,
		tableName: h.tableName,
	}
}

// WithGroup implements slog.Handler
func (h *SQLHandler) WithGroup(name string) slog.Handler {
	return &SQLHandler{
		next:      h.next.WithGroup(name),
		db:        h.db,
		tableName: h.tableName,
	}
}
