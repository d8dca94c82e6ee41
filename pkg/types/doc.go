// Package types defines the core data structures shared by the hybrid store.
//
// The central type is DataPoint, the unit of storage for the vector side of
// the store: a typed record with a stable ID, a JSON-safe payload snapshot,
// and a declarative IndexFields descriptor naming which payload field is
// embedded for similarity search.
//
// Node and Edge are the graph-side row shapes built on the same storage
// engine. ScoredResult is the ephemeral output of similarity queries and is
// never persisted.
//
// The package also provides safe type-conversion helpers (AsString, AsMap,
// MustString, ...) for decoding database records without panicking on
// unexpected shapes.
package types
