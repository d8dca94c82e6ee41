// Package store implements the hybrid vector + graph store on an embedded
// SQLite engine.
//
// The Adapter owns a single database connection and serializes every
// statement and transaction through one mutual-exclusion gate, matching the
// single-writer model of the embedded engine. On top of that connection it
// layers three row shapes:
//
//   - collections: one table per collection with a fixed
//     (id, text, vector, payload, created_at) schema, written by the
//     ingestion path and scanned exhaustively by similarity search;
//   - graph_nodes / graph_edges: the graph primitive layer (node/edge CRUD,
//     single-hop traversal, nodeset-scoped subgraph extraction);
//   - raw Query pass-through for callers that need direct SQL.
//
// Similarity search is intentionally brute force: every row of the target
// collection is scanned and ranked by cosine similarity. There is no ANN
// index and no distributed coordination.
//
// Writes fail loudly; existence checks and searches degrade to false/empty
// for the ordinary "no data yet" state of a freshly configured dataset.
package store
