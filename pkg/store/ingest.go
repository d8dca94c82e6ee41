package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/soundprediction/go-hybridstore/pkg/types"
)

// EmbedData converts texts to vectors through the configured embedding
// client, one vector per input text in input order.
func (a *Adapter) EmbedData(ctx context.Context, texts []string) ([][]float32, error) {
	if a.embedder == nil {
		return nil, ErrEmbedderNotConfigured
	}
	vectors, err := a.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("failed to embed data: %w", err)
	}
	return vectors, nil
}

// CreateDataPoints embeds, serializes, and upserts the points into the
// collection inside a single transaction. The collection must already
// exist; this entry point never creates it implicitly (IndexDataPoints
// does). If embedding or serialization fails for any point, nothing is
// written.
func (a *Adapter) CreateDataPoints(ctx context.Context, collection string, points []*types.DataPoint) error {
	ctx = types.WithOperation(ctx, "create_data_points", collection)

	has, err := a.HasCollection(ctx, collection)
	if err != nil {
		return err
	}
	if !has {
		return fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	if len(points) == 0 {
		return nil
	}

	texts := make([]string, len(points))
	for i, point := range points {
		texts[i] = point.EmbeddableText()
	}

	// points[i] pairs with vectors[i]; the gateway preserves order.
	vectors, err := a.EmbedData(ctx, texts)
	if err != nil {
		return err
	}
	if len(vectors) != len(points) {
		return fmt.Errorf("embedding count mismatch: %d points, %d vectors", len(points), len(vectors))
	}

	table := SanitizeCollectionName(collection)
	upsert := fmt.Sprintf(
		"INSERT OR REPLACE INTO %s (id, text, vector, payload, created_at) VALUES (?, ?, ?, ?, ?)",
		quoteIdentifier(table))

	statements := make([]statement, 0, len(points))
	for i, point := range points {
		payloadJSON, err := marshalPayload(pointSnapshot(point))
		if err != nil {
			return fmt.Errorf("failed to serialize point %q: %w", point.ID, err)
		}
		vectorJSON, err := json.Marshal(vectors[i])
		if err != nil {
			return fmt.Errorf("failed to serialize vector for point %q: %w", point.ID, err)
		}

		createdAt := point.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}

		statements = append(statements, statement{
			query: upsert,
			args:  []any{point.ID, texts[i], string(vectorJSON), payloadJSON, createdAt.Format(time.RFC3339Nano)},
		})
	}

	if err := a.execTransaction(ctx, statements); err != nil {
		return fmt.Errorf("failed to write data points to %q: %w", table, err)
	}
	return nil
}

// CreateVectorIndex creates the collection backing a vector index on one
// property. Idempotent.
func (a *Adapter) CreateVectorIndex(ctx context.Context, indexName, propertyName string) error {
	return a.CreateCollection(ctx, IndexCollectionName(indexName, propertyName))
}

// IndexDataPoints makes arbitrary typed entities searchable on one field:
// it derives the physical collection from indexName and propertyName,
// creates it if missing, and forwards reduced points carrying only the id
// and the text named by each point's first index field.
func (a *Adapter) IndexDataPoints(ctx context.Context, indexName, propertyName string, points []*types.DataPoint) error {
	collection := IndexCollectionName(indexName, propertyName)

	has, err := a.HasCollection(ctx, collection)
	if err != nil {
		return err
	}
	if !has {
		if err := a.CreateCollection(ctx, collection); err != nil {
			return err
		}
	}

	reduced := make([]*types.DataPoint, len(points))
	for i, point := range points {
		reduced[i] = &types.DataPoint{
			ID:          point.ID,
			IndexFields: []string{"text"},
			Payload:     map[string]any{"text": point.EmbeddableText()},
			CreatedAt:   point.CreatedAt,
		}
	}

	return a.CreateDataPoints(ctx, collection, reduced)
}

// Retrieve fetches data points by id from a collection that must exist.
func (a *Adapter) Retrieve(ctx context.Context, collection string, ids []string) ([]*types.DataPoint, error) {
	has, err := a.HasCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !has {
		return nil, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	if len(ids) == 0 {
		return []*types.DataPoint{}, nil
	}

	table := SanitizeCollectionName(collection)
	query := fmt.Sprintf(
		"SELECT id, text, payload, created_at FROM %s WHERE id IN (%s)",
		quoteIdentifier(table), placeholders(len(ids)))

	rows, err := a.query(ctx, query, stringArgs(ids)...)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve from %q: %w", table, err)
	}

	points := make([]*types.DataPoint, 0, len(rows))
	for _, row := range rows {
		id, _ := types.AsString(row["id"])

		payload, err := a.parsePayload(row["payload"])
		if err != nil {
			a.logger.Warn("skipping data point with malformed payload", "collection", table, "id", id, "error", err)
			continue
		}

		point := &types.DataPoint{ID: id, Payload: payload}
		if name, ok := types.AsString(payload["name"]); ok {
			point.Name = name
		}
		if pointType, ok := types.AsString(payload["type"]); ok {
			point.Type = pointType
		}
		if createdAt, ok := parseTimestamp(row["created_at"]); ok {
			point.CreatedAt = createdAt
		}
		points = append(points, point)
	}
	return points, nil
}

// DeleteDataPoints removes points by id and reports how many rows were
// deleted. The collection must exist.
func (a *Adapter) DeleteDataPoints(ctx context.Context, collection string, ids []string) (int64, error) {
	has, err := a.HasCollection(ctx, collection)
	if err != nil {
		return 0, err
	}
	if !has {
		return 0, fmt.Errorf("%w: %s", ErrCollectionNotFound, collection)
	}
	if len(ids) == 0 {
		return 0, nil
	}

	table := SanitizeCollectionName(collection)
	query := fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)", quoteIdentifier(table), placeholders(len(ids)))

	deleted, err := a.exec(ctx, query, stringArgs(ids)...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete from %q: %w", table, err)
	}
	return deleted, nil
}

// pointSnapshot is the JSON-safe full snapshot persisted in the payload
// column and handed back by search results.
func pointSnapshot(point *types.DataPoint) map[string]any {
	snapshot := make(map[string]any, len(point.Payload)+3)
	for k, v := range point.Payload {
		snapshot[k] = v
	}
	snapshot["id"] = point.ID
	if point.Type != "" {
		snapshot["type"] = point.Type
	}
	if point.Name != "" {
		snapshot["name"] = point.Name
	}
	return snapshot
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func stringArgs(values []string) []any {
	args := make([]any, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}

// parseTimestamp accepts the formats the engine hands back for TIMESTAMP
// columns.
func parseTimestamp(v any) (time.Time, bool) {
	if t, ok := v.(time.Time); ok {
		return t, true
	}
	s, ok := types.AsString(v)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02 15:04:05.999999999-07:00"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
