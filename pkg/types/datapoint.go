package types

import (
	"time"

	"github.com/google/uuid"
)

// DataPoint is the unit of storage for the vector side of the store.
//
// IndexFields names the payload fields that carry embeddable text; the first
// entry is the one used when the point is indexed. Payload is the full
// JSON-safe snapshot of the entity and is what search results hand back to
// callers.
type DataPoint struct {
	ID          string         `json:"id"`
	Type        string         `json:"type,omitempty"`
	Name        string         `json:"name,omitempty"`
	IndexFields []string       `json:"index_fields,omitempty"`
	Payload     map[string]any `json:"payload,omitempty"`
	CreatedAt   time.Time      `json:"created_at,omitempty"`
}

// NewDataPoint builds a data point with a generated ID.
func NewDataPoint(pointType, name string, payload map[string]any, indexFields ...string) *DataPoint {
	return &DataPoint{
		ID:          uuid.New().String(),
		Type:        pointType,
		Name:        name,
		IndexFields: indexFields,
		Payload:     payload,
		CreatedAt:   time.Now().UTC(),
	}
}

// EmbeddableText resolves the text that represents this point in vector
// space: the payload value named by the first index field, falling back to
// Name when no index field is declared or the field is absent.
func (p *DataPoint) EmbeddableText() string {
	for _, field := range p.IndexFields {
		if v, ok := p.Payload[field]; ok {
			if s, ok := AsString(v); ok && s != "" {
				return s
			}
		}
	}
	return p.Name
}

// ScoredResult is one ranked similarity-search hit. Score is cosine
// similarity, higher is more similar. Vector is populated only when the
// caller asked for it.
type ScoredResult struct {
	ID      string         `json:"id"`
	Score   float64        `json:"score"`
	Payload map[string]any `json:"payload,omitempty"`
	Vector  []float32      `json:"vector,omitempty"`
}
