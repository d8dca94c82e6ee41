package store_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/soundprediction/go-hybridstore/pkg/store"
)

func TestSanitizeCollectionName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"already clean", "documents", "documents"},
		{"uppercase folded", "Documents", "documents"},
		{"spaces replaced", "my documents", "my_documents"},
		{"punctuation replaced", "docs;DROP TABLE users", "docs_drop_table_users"},
		{"hyphen and underscore kept", "chunk-index_v2", "chunk-index_v2"},
		{"leading digit prefixed", "2024_docs", "c_2024_docs"},
		{"leading underscore prefixed", "_hidden", "c__hidden"},
		{"empty becomes placeholder", "", "c"},
		{"unicode replaced", "döcs", "d_cs"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, store.SanitizeCollectionName(tt.input))
		})
	}
}

func TestIndexCollectionName(t *testing.T) {
	assert.Equal(t, "chunks_text", store.IndexCollectionName("Chunks", "text"))
	assert.Equal(t, "entity_name", store.IndexCollectionName("Entity", "name"))

	t.Run("stable for equal inputs", func(t *testing.T) {
		first := store.IndexCollectionName("Summary", "content")
		second := store.IndexCollectionName("Summary", "content")
		assert.Equal(t, first, second)
	})
}
