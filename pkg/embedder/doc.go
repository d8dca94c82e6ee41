// Package embedder provides text embedding clients for vector representations.
//
// This package defines the Client interface and provides implementations for
// OpenAI-compatible APIs and the local embed-everything runtime.
//
// # Usage
//
//	client := embedder.NewOpenAIEmbedder(apiKey, embedder.Config{
//	    Model: "text-embedding-3-small",
//	})
//
//	vectors, err := client.Embed(ctx, []string{"hello world"})
//
// The Client interface supports batch embedding for efficiency: Embed takes
// multiple texts in one request and returns one vector per text in input
// order; EmbedSingle is a convenience wrapper for a single text.
//
// Clients that talk to a remote API can be wrapped with
// NewCircuitBreakerClient to stop hammering an endpoint that is failing.
package embedder
