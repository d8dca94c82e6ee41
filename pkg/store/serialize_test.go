package store_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/go-hybridstore/pkg/store"
)

func TestJSONSafeScalars(t *testing.T) {
	id := uuid.MustParse("11111111-2222-3333-4444-555555555555")
	ts := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, "11111111-2222-3333-4444-555555555555", store.JSONSafe(id))
	assert.Equal(t, "2024-06-01T12:00:00Z", store.JSONSafe(ts))
	assert.Equal(t, "hello", store.JSONSafe("hello"))
	assert.Equal(t, int64(42), store.JSONSafe(42))
	assert.Equal(t, true, store.JSONSafe(true))
	assert.Nil(t, store.JSONSafe(nil))
}

func TestJSONSafeNested(t *testing.T) {
	payload := map[string]any{
		"id":   uuid.MustParse("11111111-2222-3333-4444-555555555555"),
		"tags": []any{"a", "b"},
		"meta": map[string]any{
			"created": time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		},
	}

	safe := store.JSONSafe(payload)
	out, ok := safe.(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "11111111-2222-3333-4444-555555555555", out["id"])
	meta, ok := out["meta"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2024-06-01T00:00:00Z", meta["created"])

	// The result must be marshalable as-is.
	_, err := json.Marshal(safe)
	require.NoError(t, err)
}

func TestJSONSafeStructFields(t *testing.T) {
	type record struct {
		Name    string `json:"name"`
		Skipped string `json:"-"`
		Plain   int
	}

	safe := store.JSONSafe(record{Name: "n", Skipped: "s", Plain: 7})
	out, ok := safe.(map[string]any)
	require.True(t, ok)

	assert.Equal(t, "n", out["name"])
	assert.Equal(t, int64(7), out["Plain"])
	assert.NotContains(t, out, "Skipped")
	assert.NotContains(t, out, "-")
}

func TestJSONSafeCutsCycles(t *testing.T) {
	cyclic := map[string]any{"name": "root"}
	cyclic["self"] = cyclic

	safe := store.JSONSafe(cyclic)
	out, ok := safe.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "root", out["name"])
	assert.Nil(t, out["self"])

	// The cut result must serialize without error.
	_, err := json.Marshal(safe)
	require.NoError(t, err)
}

func TestJSONSafeSliceCycle(t *testing.T) {
	type node struct {
		Name string `json:"name"`
		Next *node  `json:"next"`
	}
	first := &node{Name: "first"}
	second := &node{Name: "second", Next: first}
	first.Next = second

	safe := store.JSONSafe(first)
	_, err := json.Marshal(safe)
	require.NoError(t, err)

	out, ok := safe.(map[string]any)
	require.True(t, ok)
	inner, ok := out["next"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "second", inner["name"])
	assert.Nil(t, inner["next"])
}
