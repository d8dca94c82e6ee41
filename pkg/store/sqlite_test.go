package store_test

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/go-hybridstore/pkg/store"
	"github.com/soundprediction/go-hybridstore/pkg/types"
)

// stubEmbedder returns fixed vectors by text so similarity ordering in tests
// is fully deterministic. Unknown texts get a far-away default; texts in
// failOn abort the batch.
type stubEmbedder struct {
	vectors map[string][]float32
	failOn  map[string]bool
}

func newStubEmbedder() *stubEmbedder {
	return &stubEmbedder{
		vectors: map[string][]float32{},
		failOn:  map[string]bool{},
	}
}

func (s *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, text := range texts {
		if s.failOn[text] {
			return nil, fmt.Errorf("embedding backend rejected %q", text)
		}
		if v, ok := s.vectors[text]; ok {
			out[i] = v
			continue
		}
		out[i] = []float32{0.01, 0.01, 0.98}
	}
	return out, nil
}

func (s *stubEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vectors, err := s.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (s *stubEmbedder) Dimensions() int { return 3 }
func (s *stubEmbedder) Close() error    { return nil }

func openTestStore(t *testing.T, opts ...store.Option) (*store.Adapter, *stubEmbedder) {
	t.Helper()
	emb := newStubEmbedder()
	opts = append([]store.Option{store.WithEmbedder(emb)}, opts...)
	a, err := store.Open("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a, emb
}

func textPoint(id, text string) *types.DataPoint {
	return &types.DataPoint{
		ID:          id,
		IndexFields: []string{"text"},
		Payload:     map[string]any{"text": text},
	}
}

func TestOpenOnDisk(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hybrid.db")
	a, err := store.Open(path, store.WithEmbedder(newStubEmbedder()))
	require.NoError(t, err)

	require.NoError(t, a.CreateCollection(context.Background(), "docs"))
	require.NoError(t, a.Close())

	// Reopen and find the collection persisted.
	a, err = store.Open(path)
	require.NoError(t, err)
	defer a.Close()

	has, err := a.HasCollection(context.Background(), "docs")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCreateCollectionIdempotent(t *testing.T) {
	a, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, a.CreateCollection(ctx, "docs"))
	require.NoError(t, a.CreateCollection(ctx, "docs"))

	has, err := a.HasCollection(ctx, "docs")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHasCollection(t *testing.T) {
	a, _ := openTestStore(t)
	ctx := context.Background()

	has, err := a.HasCollection(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, a.CreateCollection(ctx, "My Docs"))

	// Lookup goes through the same sanitization as creation.
	has, err = a.HasCollection(ctx, "My Docs")
	require.NoError(t, err)
	assert.True(t, has)

	has, err = a.HasCollection(ctx, "my_docs")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestHyphenatedCollectionRoundTrip(t *testing.T) {
	a, _ := openTestStore(t)
	ctx := context.Background()

	// Hyphens are part of the sanitizer's safe charset, so a hyphenated name
	// must work in every identifier position, not just in the catalog probe.
	const name = "chunk-index"
	require.NoError(t, a.CreateCollection(ctx, name))

	has, err := a.HasCollection(ctx, name)
	require.NoError(t, err)
	assert.True(t, has)

	require.NoError(t, a.CreateDataPoints(ctx, name, []*types.DataPoint{textPoint("p1", "hello")}))

	results, err := a.Search(ctx, name, store.SearchOptions{QueryText: "hello", Limit: 5})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "p1", results[0].ID)

	points, err := a.Retrieve(ctx, name, []string{"p1"})
	require.NoError(t, err)
	require.Len(t, points, 1)

	deleted, err := a.DeleteDataPoints(ctx, name, []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	require.NoError(t, a.Prune(ctx))
	has, err = a.HasCollection(ctx, name)
	require.NoError(t, err)
	assert.False(t, has)
}

func TestCreateDataPointsRequiresCollection(t *testing.T) {
	a, _ := openTestStore(t)

	err := a.CreateDataPoints(context.Background(), "missing", []*types.DataPoint{textPoint("p1", "hello")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrCollectionNotFound))
}

func TestCreateDataPointsUpsert(t *testing.T) {
	a, _ := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, a.CreateCollection(ctx, "docs"))

	require.NoError(t, a.CreateDataPoints(ctx, "docs", []*types.DataPoint{textPoint("p1", "first version")}))
	require.NoError(t, a.CreateDataPoints(ctx, "docs", []*types.DataPoint{textPoint("p1", "second version")}))

	points, err := a.Retrieve(ctx, "docs", []string{"p1"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "p1", points[0].ID)
	assert.Equal(t, "second version", points[0].Payload["text"])

	rows, err := a.Query(ctx, "SELECT COUNT(*) AS n FROM docs")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	n, ok := types.AsInt64(rows[0]["n"])
	require.True(t, ok)
	assert.Equal(t, int64(1), n)
}

func TestCreateDataPointsAllOrNothing(t *testing.T) {
	a, emb := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, a.CreateCollection(ctx, "docs"))

	emb.failOn["poison"] = true
	err := a.CreateDataPoints(ctx, "docs", []*types.DataPoint{
		textPoint("p1", "fine"),
		textPoint("p2", "poison"),
	})
	require.Error(t, err)

	rows, err := a.Query(ctx, "SELECT COUNT(*) AS n FROM docs")
	require.NoError(t, err)
	n, ok := types.AsInt64(rows[0]["n"])
	require.True(t, ok)
	assert.Equal(t, int64(0), n, "a failed batch must leave no partial writes")
}

func TestCreateDataPointsWithoutEmbedder(t *testing.T) {
	a, err := store.Open("")
	require.NoError(t, err)
	defer a.Close()
	ctx := context.Background()

	require.NoError(t, a.CreateCollection(ctx, "docs"))
	err = a.CreateDataPoints(ctx, "docs", []*types.DataPoint{textPoint("p1", "hello")})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrEmbedderNotConfigured))
}

func TestIndexDataPointsCreatesCollection(t *testing.T) {
	a, _ := openTestStore(t)
	ctx := context.Background()

	points := []*types.DataPoint{
		{ID: "e1", Type: "Entity", Name: "alice", IndexFields: []string{"name"}, Payload: map[string]any{"name": "alice"}},
	}
	require.NoError(t, a.IndexDataPoints(ctx, "Entity", "name", points))

	has, err := a.HasCollection(ctx, store.IndexCollectionName("Entity", "name"))
	require.NoError(t, err)
	assert.True(t, has)

	got, err := a.Retrieve(ctx, "entity_name", []string{"e1"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].Payload["text"])
}

func TestRetrieveMissingCollection(t *testing.T) {
	a, _ := openTestStore(t)

	_, err := a.Retrieve(context.Background(), "missing", []string{"p1"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrCollectionNotFound))
}

func TestDeleteDataPoints(t *testing.T) {
	a, _ := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, a.CreateCollection(ctx, "docs"))
	require.NoError(t, a.CreateDataPoints(ctx, "docs", []*types.DataPoint{
		textPoint("p1", "one"),
		textPoint("p2", "two"),
		textPoint("p3", "three"),
	}))

	deleted, err := a.DeleteDataPoints(ctx, "docs", []string{"p1", "p3", "nope"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), deleted)

	points, err := a.Retrieve(ctx, "docs", []string{"p1", "p2", "p3"})
	require.NoError(t, err)
	require.Len(t, points, 1)
	assert.Equal(t, "p2", points[0].ID)
}

func TestPruneResetsStore(t *testing.T) {
	a, _ := openTestStore(t)
	ctx := context.Background()

	require.NoError(t, a.CreateCollection(ctx, "docs"))
	require.NoError(t, a.CreateCollection(ctx, "chunks"))
	require.NoError(t, a.AddNode(ctx, &types.Node{ID: "n1", Name: "node one", Type: "Entity"}))

	require.NoError(t, a.Prune(ctx))

	for _, name := range []string{"docs", "chunks"} {
		has, err := a.HasCollection(ctx, name)
		require.NoError(t, err)
		assert.False(t, has, "collection %q should be gone after prune", name)
	}

	// Graph storage comes back empty on the next use.
	nodes, edges, err := a.GetGraphData(ctx)
	require.NoError(t, err)
	assert.Empty(t, nodes)
	assert.Empty(t, edges)
}

func TestOperationsAfterClose(t *testing.T) {
	a, _ := openTestStore(t)
	require.NoError(t, a.Close())

	_, err := a.HasCollection(context.Background(), "docs")
	require.Error(t, err)
	assert.True(t, errors.Is(err, store.ErrStoreClosed))

	// Close is idempotent.
	assert.NoError(t, a.Close())
}

func TestQueryPassThrough(t *testing.T) {
	a, _ := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, a.CreateCollection(ctx, "docs"))

	rows, err := a.Query(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", "docs")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	name, ok := types.AsString(rows[0]["name"])
	require.True(t, ok)
	assert.Equal(t, "docs", name)
}
