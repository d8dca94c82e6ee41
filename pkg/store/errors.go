package store

import "errors"

var (
	// ErrCollectionNotFound is returned by operations that require their
	// target collection to pre-exist (CreateDataPoints, Retrieve,
	// DeleteDataPoints). Search deliberately does not return it: querying a
	// not-yet-created collection is a normal "no data yet" condition.
	ErrCollectionNotFound = errors.New("collection not found")

	// ErrMissingQueryParameter is returned when a search is given neither
	// query text nor a query vector.
	ErrMissingQueryParameter = errors.New("either query text or query vector is required")

	// ErrEmbedderNotConfigured is returned when an operation needs text
	// embeddings but no embedding client was wired into the adapter.
	ErrEmbedderNotConfigured = errors.New("embedding engine not configured")

	// ErrStoreClosed is returned for any operation after Close.
	ErrStoreClosed = errors.New("store is closed")
)
