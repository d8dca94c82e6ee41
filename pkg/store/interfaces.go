package store

import (
	"context"

	"github.com/soundprediction/go-hybridstore/pkg/types"
)

// VectorStore is the vector half of the adapter: collection management,
// transactional ingestion, and brute-force similarity search.
type VectorStore interface {
	HasCollection(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, name string) error
	CreateDataPoints(ctx context.Context, collection string, points []*types.DataPoint) error
	CreateVectorIndex(ctx context.Context, indexName, propertyName string) error
	IndexDataPoints(ctx context.Context, indexName, propertyName string, points []*types.DataPoint) error
	Retrieve(ctx context.Context, collection string, ids []string) ([]*types.DataPoint, error)
	DeleteDataPoints(ctx context.Context, collection string, ids []string) (int64, error)
	Search(ctx context.Context, collection string, opts SearchOptions) ([]types.ScoredResult, error)
	BatchSearch(ctx context.Context, collection string, queryTexts []string, limit int, withVectors bool) ([][]types.ScoredResult, error)
	EmbedData(ctx context.Context, texts []string) ([][]float32, error)
	Prune(ctx context.Context) error
	Close() error
}

// GraphStore is the graph half: node and edge primitives, traversal, and
// whole-graph operations.
type GraphStore interface {
	AddNode(ctx context.Context, node *types.Node) error
	AddNodes(ctx context.Context, nodes []*types.Node) error
	HasNode(ctx context.Context, nodeID string) (bool, error)
	ExtractNode(ctx context.Context, nodeID string) (*types.Node, error)
	ExtractNodes(ctx context.Context, nodeIDs []string) ([]*types.Node, error)
	DeleteNode(ctx context.Context, nodeID string) error
	DeleteNodes(ctx context.Context, nodeIDs []string) error
	HasEdge(ctx context.Context, sourceID, targetID, label string) (bool, error)
	HasEdges(ctx context.Context, keys []types.EdgeKey) ([]bool, error)
	AddEdge(ctx context.Context, sourceID, targetID, label string, properties map[string]any) error
	AddEdges(ctx context.Context, edges []*types.Edge) error
	GetEdges(ctx context.Context, nodeID string) ([]*types.Edge, error)
	GetNeighbors(ctx context.Context, nodeID string) ([]*types.Node, error)
	GetPredecessors(ctx context.Context, nodeID, label string) ([]*types.Node, error)
	GetSuccessors(ctx context.Context, nodeID, label string) ([]*types.Node, error)
	GetNodesetSubgraph(ctx context.Context, nodeType string, nodeNames []string) ([]*types.Node, []*types.Edge, error)
	GetGraphData(ctx context.Context) ([]*types.Node, []*types.Edge, error)
	GetGraphMetrics(ctx context.Context) (*types.GraphMetrics, error)
	GetDisconnectedNodes(ctx context.Context) ([]string, error)
	RemoveConnectionToPredecessorsOf(ctx context.Context, nodeIDs []string, label string) error
	RemoveConnectionToSuccessorsOf(ctx context.Context, nodeIDs []string, label string) error
	DeleteGraph(ctx context.Context) error
}

// HybridStore is the full adapter surface.
type HybridStore interface {
	VectorStore
	GraphStore
	Query(ctx context.Context, query string, args ...any) ([]map[string]any, error)
}

var (
	_ VectorStore = (*Adapter)(nil)
	_ GraphStore  = (*Adapter)(nil)
	_ HybridStore = (*Adapter)(nil)
)
