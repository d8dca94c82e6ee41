package embedder

import (
	"context"
	"errors"
)

// ErrNoEmbeddings is returned when a provider responds without any vectors.
var ErrNoEmbeddings = errors.New("no embeddings returned")

// Client generates vector embeddings for text.
type Client interface {
	// Embed generates embeddings for the given texts, one vector per input
	// text, preserving input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates an embedding for a single text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the dimensionality of the vectors this client
	// produces.
	Dimensions() int

	// Close cleans up any resources.
	Close() error
}

// Config holds provider-agnostic embedder settings.
type Config struct {
	Model      string
	BaseURL    string
	Dimensions int
	BatchSize  int
}
