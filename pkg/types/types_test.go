package types_test

import (
	"testing"

	"github.com/soundprediction/go-hybridstore/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDataPoint(t *testing.T) {
	point := types.NewDataPoint("document", "readme", map[string]any{"text": "hello"}, "text")

	require.NotEmpty(t, point.ID)
	assert.Equal(t, "document", point.Type)
	assert.Equal(t, "readme", point.Name)
	assert.Equal(t, []string{"text"}, point.IndexFields)
	assert.False(t, point.CreatedAt.IsZero())

	other := types.NewDataPoint("document", "readme", nil)
	assert.NotEqual(t, point.ID, other.ID)
}

func TestDataPointEmbeddableText(t *testing.T) {
	tests := []struct {
		name  string
		point types.DataPoint
		want  string
	}{
		{
			name: "first index field wins",
			point: types.DataPoint{
				Name:        "fallback",
				IndexFields: []string{"text", "summary"},
				Payload:     map[string]any{"text": "primary", "summary": "secondary"},
			},
			want: "primary",
		},
		{
			name: "missing first field falls through to second",
			point: types.DataPoint{
				Name:        "fallback",
				IndexFields: []string{"text", "summary"},
				Payload:     map[string]any{"summary": "secondary"},
			},
			want: "secondary",
		},
		{
			name: "no index fields falls back to name",
			point: types.DataPoint{
				Name:    "fallback",
				Payload: map[string]any{"text": "ignored"},
			},
			want: "fallback",
		},
		{
			name: "non-string field value falls back to name",
			point: types.DataPoint{
				Name:        "fallback",
				IndexFields: []string{"count"},
				Payload:     map[string]any{"count": 3},
			},
			want: "fallback",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.point.EmbeddableText())
		})
	}
}

func TestNewNode(t *testing.T) {
	node := types.NewNode("person", "Alice", map[string]any{"role": "engineer"})

	require.NotEmpty(t, node.ID)
	assert.Equal(t, "person", node.Type)
	assert.Equal(t, "Alice", node.Name)
	assert.Equal(t, "engineer", node.Payload["role"])
}

func TestSafeConversions(t *testing.T) {
	s, ok := types.AsString("hello")
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	_, ok = types.AsString(42)
	assert.False(t, ok)

	_, ok = types.AsString(nil)
	assert.False(t, ok)

	n, ok := types.AsInt64(int64(7))
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	n, ok = types.AsInt64(7)
	assert.True(t, ok)
	assert.Equal(t, int64(7), n)

	f, ok := types.AsFloat64(float32(1.5))
	assert.True(t, ok)
	assert.Equal(t, 1.5, f)

	m, ok := types.AsMap(map[string]any{"a": 1})
	assert.True(t, ok)
	assert.Len(t, m, 1)
}

func TestMustStringError(t *testing.T) {
	_, err := types.MustString(42, "id")
	require.Error(t, err)

	var convErr *types.TypeConversionError
	require.ErrorAs(t, err, &convErr)
	assert.Equal(t, "id", convErr.Field)
	assert.Contains(t, err.Error(), "expected string")
}
