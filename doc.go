// Package hybridstore provides an embedded hybrid vector and graph store
// for Go.
//
// One database file (or an in-memory database) holds both halves: vector
// collections of embedded data points searched by brute-force cosine
// similarity, and a property graph of nodes and directed labeled edges.
// Everything runs over a single connection guarded by a mutex, so the store
// is safe for concurrent use and needs no server.
//
// # Basic Usage
//
// Open a store from configuration:
//
//	cfg := config.Default()
//	cfg.Database.Path = "knowledge.db"
//	cfg.Embedding.Provider = "openai"
//	cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
//
//	client, err := hybridstore.Open(cfg)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer client.Close()
//
// # Ingesting Data Points
//
// Data points are embedded and written transactionally; a batch either
// lands whole or not at all:
//
//	err = client.CreateCollection(ctx, "documents")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	points := []*types.DataPoint{
//		types.NewDataPoint("Document", "intro",
//			map[string]any{"text": "An introduction to hybrid stores."}, "text"),
//	}
//	err = client.CreateDataPoints(ctx, "documents", points)
//
// # Searching
//
// Search embeds the query and ranks every stored vector:
//
//	results, err := client.Search(ctx, "documents", store.SearchOptions{
//		QueryText: "what is a hybrid store?",
//		Limit:     5,
//	})
//	for _, r := range results {
//		fmt.Printf("%s: %.3f\n", r.ID, r.Score)
//	}
//
// # Graph Primitives
//
// The graph half stores nodes and edges next to the vectors:
//
//	_ = client.AddNode(ctx, types.NewNode("person", "Alice", nil))
//	_ = client.AddEdge(ctx, aliceID, bobID, "knows", nil)
//	neighbors, _ := client.GetNeighbors(ctx, aliceID)
//
// See the examples directory for complete programs.
package hybridstore
