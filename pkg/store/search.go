package store

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"

	jsonrepair "github.com/kaptinlin/jsonrepair"
	"golang.org/x/sync/errgroup"

	"github.com/soundprediction/go-hybridstore/pkg/types"
)

// DefaultSearchLimit is the result cap applied by DefaultSearchOptions.
const DefaultSearchLimit = 10

// batchRelevanceFloor filters batch-search groups to results that are
// actually similar, independent of top-k truncation.
const batchRelevanceFloor = 0.7

// SearchOptions parameterizes a similarity search. Exactly one of QueryText
// and QueryVector is required; QueryVector wins when both are set.
type SearchOptions struct {
	QueryText   string
	QueryVector []float32
	Limit       int
	WithVector  bool
}

// DefaultSearchOptions returns options with the default result limit.
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{Limit: DefaultSearchLimit}
}

// Search scans every row of the collection, ranks by cosine similarity to
// the query, and returns the top results in descending score order.
//
// A missing collection yields an empty result, not an error: "no data yet"
// is an expected steady state. A limit of zero or less also yields an empty
// result. Rows with malformed stored vectors or payloads are logged and
// skipped; a single corrupt row never aborts the search.
func (a *Adapter) Search(ctx context.Context, collection string, opts SearchOptions) ([]types.ScoredResult, error) {
	if opts.QueryText == "" && opts.QueryVector == nil {
		return nil, ErrMissingQueryParameter
	}
	ctx = types.WithOperation(ctx, "search", collection)

	has, err := a.HasCollection(ctx, collection)
	if err != nil {
		return nil, err
	}
	if !has || opts.Limit <= 0 {
		return []types.ScoredResult{}, nil
	}

	queryVector := opts.QueryVector
	if queryVector == nil {
		vectors, err := a.EmbedData(ctx, []string{opts.QueryText})
		if err != nil {
			return nil, err
		}
		if len(vectors) == 0 {
			return nil, fmt.Errorf("embedding gateway returned no vector for query")
		}
		queryVector = vectors[0]
	}

	table := SanitizeCollectionName(collection)
	rows, err := a.query(ctx, fmt.Sprintf("SELECT id, vector, payload FROM %s", quoteIdentifier(table)))
	if err != nil {
		return nil, fmt.Errorf("failed to scan collection %q: %w", table, err)
	}

	results := make([]types.ScoredResult, 0, len(rows))
	for _, row := range rows {
		id, _ := types.AsString(row["id"])

		vector, err := parseVector(row["vector"])
		if err != nil {
			a.logger.Warn("skipping row with malformed vector", "collection", table, "id", id, "error", err)
			continue
		}
		payload, err := a.parsePayload(row["payload"])
		if err != nil {
			a.logger.Warn("skipping row with malformed payload", "collection", table, "id", id, "error", err)
			continue
		}

		result := types.ScoredResult{
			ID:      id,
			Score:   CosineSimilarity(queryVector, vector),
			Payload: payload,
		}
		if opts.WithVector {
			result.Vector = vector
		}
		results = append(results, result)
	}

	// Stable: ties keep scan order, which callers must not rely on.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > opts.Limit {
		results = results[:opts.Limit]
	}
	return results, nil
}

// BatchSearch embeds all query texts in one gateway call and runs the
// per-query searches concurrently (they still serialize at the connection
// gate). Each result group keeps only hits scoring above the relevance
// floor of 0.7.
func (a *Adapter) BatchSearch(ctx context.Context, collection string, queryTexts []string, limit int, withVectors bool) ([][]types.ScoredResult, error) {
	if len(queryTexts) == 0 {
		return [][]types.ScoredResult{}, nil
	}

	vectors, err := a.EmbedData(ctx, queryTexts)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(queryTexts) {
		return nil, fmt.Errorf("embedding count mismatch: %d queries, %d vectors", len(queryTexts), len(vectors))
	}

	groups := make([][]types.ScoredResult, len(queryTexts))
	g, gctx := errgroup.WithContext(ctx)
	for i := range queryTexts {
		g.Go(func() error {
			results, err := a.Search(gctx, collection, SearchOptions{
				QueryVector: vectors[i],
				Limit:       limit,
				WithVector:  withVectors,
			})
			if err != nil {
				return err
			}

			filtered := make([]types.ScoredResult, 0, len(results))
			for _, result := range results {
				if result.Score > batchRelevanceFloor {
					filtered = append(filtered, result)
				}
			}
			groups[i] = filtered
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return groups, nil
}

// CosineSimilarity computes dot(a, b) / (||a|| * ||b||). A zero-magnitude
// vector has no direction, so the similarity is defined as 0 instead of
// dividing by zero.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// parseVector decodes a stored vector column.
func parseVector(v any) ([]float32, error) {
	s, ok := types.AsString(v)
	if !ok || s == "" {
		return nil, fmt.Errorf("stored vector is not text")
	}
	var vector []float32
	if err := json.Unmarshal([]byte(s), &vector); err != nil {
		return nil, fmt.Errorf("failed to decode stored vector: %w", err)
	}
	return vector, nil
}

// parsePayload decodes a stored payload column, first as-is and then after
// a repair pass for almost-JSON, so lightly corrupted rows are salvaged
// instead of skipped.
func (a *Adapter) parsePayload(v any) (map[string]any, error) {
	s, ok := types.AsString(v)
	if !ok {
		return nil, fmt.Errorf("stored payload is not text")
	}
	if s == "" {
		return map[string]any{}, nil
	}

	var payload map[string]any
	if err := json.Unmarshal([]byte(s), &payload); err == nil {
		return payload, nil
	}

	repaired, repairErr := jsonrepair.JSONRepair(s)
	if repairErr != nil {
		return nil, fmt.Errorf("failed to decode stored payload: %w", repairErr)
	}
	if err := json.Unmarshal([]byte(repaired), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode stored payload: %w", err)
	}
	return payload, nil
}
