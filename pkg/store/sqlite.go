package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/soundprediction/go-hybridstore/pkg/embedder"
	"github.com/soundprediction/go-hybridstore/pkg/types"
)

// collectionSchema is the fixed record schema shared by every collection.
// The schema is immutable after creation; re-creating an existing collection
// is a no-op.
const collectionSchema = `
	CREATE TABLE IF NOT EXISTS %s (
		id TEXT PRIMARY KEY,
		text TEXT,
		vector TEXT,
		payload TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	)
`

// statement is one parameterized statement in a transactional batch.
type statement struct {
	query string
	args  []any
}

// Adapter is the hybrid vector + graph store over one embedded SQLite
// database. A single connection is shared by all operations and every
// statement or transaction runs under one mutual-exclusion gate, so
// concurrent callers are logically serialized.
type Adapter struct {
	db       *sql.DB
	mu       sync.Mutex
	embedder embedder.Client
	logger   *slog.Logger

	closeMu sync.RWMutex
	closed  bool
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithEmbedder wires the embedding client used to vectorize text. Without
// it, operations that need embeddings fail with ErrEmbedderNotConfigured.
func WithEmbedder(client embedder.Client) Option {
	return func(a *Adapter) { a.embedder = client }
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Adapter) { a.logger = logger }
}

// Open opens (or creates) the database at path and prepares the graph
// tables. An empty path opens an in-memory database.
func Open(path string, opts ...Option) (*Adapter, error) {
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// The embedded engine is single-writer; keep exactly one connection so
	// the mutex gate below is the only ordering that matters.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	a := &Adapter{
		db:     db,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}

	if err := a.ensureGraphSchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize graph schema: %w", err)
	}

	return a, nil
}

// Close releases the connection. Subsequent operations fail with
// ErrStoreClosed.
func (a *Adapter) Close() error {
	a.closeMu.Lock()
	if a.closed {
		a.closeMu.Unlock()
		return nil
	}
	a.closed = true
	a.closeMu.Unlock()

	a.mu.Lock()
	defer a.mu.Unlock()
	return a.db.Close()
}

func (a *Adapter) isClosed() bool {
	a.closeMu.RLock()
	defer a.closeMu.RUnlock()
	return a.closed
}

// query runs one statement under the gate and returns every matching row as
// a column-name keyed map.
func (a *Adapter) query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	if a.isClosed() {
		return nil, ErrStoreClosed
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	rows, err := a.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanRows(rows)
}

// queryOne runs one statement under the gate and returns the first row, or
// nil when there is no match. Used for existence probes.
func (a *Adapter) queryOne(ctx context.Context, query string, args ...any) (map[string]any, error) {
	results, err := a.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

// exec runs one write statement under the gate and reports affected rows.
func (a *Adapter) exec(ctx context.Context, query string, args ...any) (int64, error) {
	if a.isClosed() {
		return 0, ErrStoreClosed
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	result, err := a.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return affected, nil
}

// execTransaction executes the statements in order inside one transaction:
// commit on success, rollback and re-raise on the first failure. The whole
// batch holds the gate, so its effects become visible all at once.
func (a *Adapter) execTransaction(ctx context.Context, statements []statement) error {
	if a.isClosed() {
		return ErrStoreClosed
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	tx, err := a.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	for _, stmt := range statements {
		if _, err := tx.ExecContext(ctx, stmt.query, stmt.args...); err != nil {
			if rollErr := tx.Rollback(); rollErr != nil {
				a.logger.Error("transaction rollback failed", "error", rollErr)
			}
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// scanRows converts a result set into column-name keyed maps. BLOB values
// come back as strings so downstream JSON decoding sees text either way.
func scanRows(rows *sql.Rows) ([]map[string]any, error) {
	columns, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var results []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err := rows.Scan(pointers...); err != nil {
			return nil, err
		}

		row := make(map[string]any, len(columns))
		for i, column := range columns {
			if b, ok := values[i].([]byte); ok {
				row[column] = string(b)
			} else {
				row[column] = values[i]
			}
		}
		results = append(results, row)
	}

	return results, rows.Err()
}

// HasCollection reports whether a collection exists. A missing table is the
// false case; engine faults on the catalog probe still surface as errors
// rather than being folded into "not found".
func (a *Adapter) HasCollection(ctx context.Context, name string) (bool, error) {
	row, err := a.queryOne(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?",
		SanitizeCollectionName(name))
	if err != nil {
		return false, fmt.Errorf("collection existence check failed: %w", err)
	}
	return row != nil, nil
}

// CreateCollection idempotently creates the named collection with the fixed
// record schema. No-op if it already exists.
func (a *Adapter) CreateCollection(ctx context.Context, name string) error {
	table := SanitizeCollectionName(name)
	if _, err := a.exec(ctx, fmt.Sprintf(collectionSchema, quoteIdentifier(table))); err != nil {
		return fmt.Errorf("failed to create collection %q: %w", table, err)
	}
	return nil
}

// Prune drops every user table, vector collections and graph storage alike,
// resetting the store. Each drop is independent: one failure is logged and
// the rest still run.
func (a *Adapter) Prune(ctx context.Context) error {
	ctx = types.WithOperation(ctx, "prune", "")
	rows, err := a.query(ctx,
		"SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%'")
	if err != nil {
		return fmt.Errorf("failed to enumerate collections: %w", err)
	}

	for _, row := range rows {
		name, ok := row["name"].(string)
		if !ok {
			continue
		}
		if _, err := a.exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", quoteIdentifier(SanitizeCollectionName(name)))); err != nil {
			a.logger.Error("failed to drop collection during prune", "collection", name, "error", err)
		}
	}
	return nil
}

// Query is the raw pass-through for callers that need direct SQL against
// the shared connection. It runs under the same gate as everything else.
func (a *Adapter) Query(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	results, err := a.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	return results, nil
}
