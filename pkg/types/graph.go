package types

import (
	"time"

	"github.com/google/uuid"
)

// Node is a graph vertex. Type is the entity discriminator ("person",
// "developer_rule", ...) and, together with Name, is what nodeset-scoped
// subgraph extraction matches on. Payload carries the full entity snapshot.
type Node struct {
	ID        string         `json:"id"`
	Name      string         `json:"name"`
	Type      string         `json:"type"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at,omitempty"`
}

// NewNode builds a node with a generated ID.
func NewNode(nodeType, name string, payload map[string]any) *Node {
	return &Node{
		ID:        uuid.New().String(),
		Name:      name,
		Type:      nodeType,
		Payload:   payload,
		CreatedAt: time.Now().UTC(),
	}
}

// Edge is a directed, labeled relationship between two nodes. Edges are
// keyed by the (SourceID, TargetID, Label) triple: re-adding the same triple
// replaces Properties instead of duplicating the edge.
type Edge struct {
	SourceID   string         `json:"source_id"`
	TargetID   string         `json:"target_id"`
	Label      string         `json:"label"`
	Properties map[string]any `json:"properties,omitempty"`
	CreatedAt  time.Time      `json:"created_at,omitempty"`
}

// EdgeKey identifies an edge for bulk existence probes.
type EdgeKey struct {
	SourceID string `json:"source_id"`
	TargetID string `json:"target_id"`
	Label    string `json:"label"`
}

// GraphMetrics summarizes the stored graph for introspection and tests.
type GraphMetrics struct {
	NodeCount       int64            `json:"node_count"`
	EdgeCount       int64            `json:"edge_count"`
	NodesByType     map[string]int64 `json:"nodes_by_type"`
	EdgesByLabel    map[string]int64 `json:"edges_by_label"`
	MeanDegree      float64          `json:"mean_degree"`
	DegreeHistogram map[int64]int64  `json:"degree_histogram"`
	SelfLoops       int64            `json:"self_loops"`
	CollectedAt     time.Time        `json:"collected_at"`
}
