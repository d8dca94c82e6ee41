package store

import (
	"context"
	"fmt"
	"time"

	"github.com/soundprediction/go-hybridstore/pkg/types"
)

const (
	graphNodesTable = "graph_nodes"
	graphEdgesTable = "graph_edges"
)

// graphSchema holds the two fixed tables backing the graph primitive layer.
// Edges are keyed by the (source, target, label) triple so re-adding an
// identical triple overwrites properties instead of duplicating.
const graphSchema = `
	CREATE TABLE IF NOT EXISTS graph_nodes (
		id TEXT PRIMARY KEY,
		name TEXT,
		type TEXT,
		payload TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	CREATE TABLE IF NOT EXISTS graph_edges (
		source_id TEXT,
		target_id TEXT,
		label TEXT,
		properties TEXT,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (source_id, target_id, label)
	);
`

// ensureGraphSchema re-creates the graph tables if needed; they can vanish
// via DeleteGraph or Prune and come back on the next write.
func (a *Adapter) ensureGraphSchema(ctx context.Context) error {
	if _, err := a.exec(ctx, graphSchema); err != nil {
		return fmt.Errorf("failed to ensure graph schema: %w", err)
	}
	return nil
}

// AddNode inserts or replaces one node row.
func (a *Adapter) AddNode(ctx context.Context, node *types.Node) error {
	return a.AddNodes(ctx, []*types.Node{node})
}

// AddNodes upserts the nodes in a single transaction.
func (a *Adapter) AddNodes(ctx context.Context, nodes []*types.Node) error {
	if len(nodes) == 0 {
		return nil
	}
	if err := a.ensureGraphSchema(ctx); err != nil {
		return err
	}

	statements := make([]statement, 0, len(nodes))
	for _, node := range nodes {
		if node == nil {
			return fmt.Errorf("cannot add nil node")
		}
		payloadJSON, err := marshalPayload(node.Payload)
		if err != nil {
			return fmt.Errorf("failed to serialize node %q: %w", node.ID, err)
		}
		createdAt := node.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		statements = append(statements, statement{
			query: "INSERT OR REPLACE INTO graph_nodes (id, name, type, payload, created_at) VALUES (?, ?, ?, ?, ?)",
			args:  []any{node.ID, node.Name, node.Type, payloadJSON, createdAt.Format(time.RFC3339Nano)},
		})
	}

	if err := a.execTransaction(ctx, statements); err != nil {
		return fmt.Errorf("failed to add nodes: %w", err)
	}
	return nil
}

// HasNode reports whether a node row exists.
func (a *Adapter) HasNode(ctx context.Context, nodeID string) (bool, error) {
	if err := a.ensureGraphSchema(ctx); err != nil {
		return false, err
	}
	row, err := a.queryOne(ctx, "SELECT id FROM graph_nodes WHERE id = ?", nodeID)
	if err != nil {
		return false, fmt.Errorf("node existence check failed: %w", err)
	}
	return row != nil, nil
}

// ExtractNode fetches one node by id, or nil when absent.
func (a *Adapter) ExtractNode(ctx context.Context, nodeID string) (*types.Node, error) {
	nodes, err := a.ExtractNodes(ctx, []string{nodeID})
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}
	return nodes[0], nil
}

// ExtractNodes fetches nodes by id; absent ids are simply missing from the
// result.
func (a *Adapter) ExtractNodes(ctx context.Context, nodeIDs []string) ([]*types.Node, error) {
	if len(nodeIDs) == 0 {
		return []*types.Node{}, nil
	}
	if err := a.ensureGraphSchema(ctx); err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		"SELECT id, name, type, payload, created_at FROM graph_nodes WHERE id IN (%s)",
		placeholders(len(nodeIDs)))
	rows, err := a.query(ctx, query, stringArgs(nodeIDs)...)
	if err != nil {
		return nil, fmt.Errorf("failed to extract nodes: %w", err)
	}
	return a.rowsToNodes(rows), nil
}

// DeleteNode removes one node row. Edges referencing the node are left in
// place; orphaned edges are tolerated.
func (a *Adapter) DeleteNode(ctx context.Context, nodeID string) error {
	return a.DeleteNodes(ctx, []string{nodeID})
}

// DeleteNodes removes node rows by id.
func (a *Adapter) DeleteNodes(ctx context.Context, nodeIDs []string) error {
	if len(nodeIDs) == 0 {
		return nil
	}
	if err := a.ensureGraphSchema(ctx); err != nil {
		return err
	}
	query := fmt.Sprintf("DELETE FROM graph_nodes WHERE id IN (%s)", placeholders(len(nodeIDs)))
	if _, err := a.exec(ctx, query, stringArgs(nodeIDs)...); err != nil {
		return fmt.Errorf("failed to delete nodes: %w", err)
	}
	return nil
}

// HasEdge reports whether the (source, target, label) triple exists.
func (a *Adapter) HasEdge(ctx context.Context, sourceID, targetID, label string) (bool, error) {
	if err := a.ensureGraphSchema(ctx); err != nil {
		return false, err
	}
	row, err := a.queryOne(ctx,
		"SELECT source_id FROM graph_edges WHERE source_id = ? AND target_id = ? AND label = ?",
		sourceID, targetID, label)
	if err != nil {
		return false, fmt.Errorf("edge existence check failed: %w", err)
	}
	return row != nil, nil
}

// HasEdges probes the triples in bulk, one bool per key in input order.
func (a *Adapter) HasEdges(ctx context.Context, keys []types.EdgeKey) ([]bool, error) {
	results := make([]bool, len(keys))
	for i, key := range keys {
		has, err := a.HasEdge(ctx, key.SourceID, key.TargetID, key.Label)
		if err != nil {
			return nil, err
		}
		results[i] = has
	}
	return results, nil
}

// AddEdge inserts or replaces one directed labeled edge.
func (a *Adapter) AddEdge(ctx context.Context, sourceID, targetID, label string, properties map[string]any) error {
	return a.AddEdges(ctx, []*types.Edge{{
		SourceID:   sourceID,
		TargetID:   targetID,
		Label:      label,
		Properties: properties,
	}})
}

// AddEdges upserts the edges in a single transaction.
func (a *Adapter) AddEdges(ctx context.Context, edges []*types.Edge) error {
	if len(edges) == 0 {
		return nil
	}
	if err := a.ensureGraphSchema(ctx); err != nil {
		return err
	}

	statements := make([]statement, 0, len(edges))
	for _, edge := range edges {
		if edge == nil {
			return fmt.Errorf("cannot add nil edge")
		}
		propertiesJSON, err := marshalPayload(edge.Properties)
		if err != nil {
			return fmt.Errorf("failed to serialize edge %s-[%s]->%s: %w", edge.SourceID, edge.Label, edge.TargetID, err)
		}
		createdAt := edge.CreatedAt
		if createdAt.IsZero() {
			createdAt = time.Now().UTC()
		}
		statements = append(statements, statement{
			query: "INSERT OR REPLACE INTO graph_edges (source_id, target_id, label, properties, created_at) VALUES (?, ?, ?, ?, ?)",
			args:  []any{edge.SourceID, edge.TargetID, edge.Label, propertiesJSON, createdAt.Format(time.RFC3339Nano)},
		})
	}

	if err := a.execTransaction(ctx, statements); err != nil {
		return fmt.Errorf("failed to add edges: %w", err)
	}
	return nil
}

// GetEdges returns every edge incident to the node, in either direction.
func (a *Adapter) GetEdges(ctx context.Context, nodeID string) ([]*types.Edge, error) {
	if err := a.ensureGraphSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := a.query(ctx,
		"SELECT source_id, target_id, label, properties, created_at FROM graph_edges WHERE source_id = ? OR target_id = ?",
		nodeID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get edges: %w", err)
	}
	return a.rowsToEdges(rows), nil
}

// GetNeighbors returns the distinct nodes one hop away from nodeID, in
// either direction. A self-loop edge makes the node its own neighbor,
// consistent with self loops contributing two to its degree.
func (a *Adapter) GetNeighbors(ctx context.Context, nodeID string) ([]*types.Node, error) {
	if err := a.ensureGraphSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := a.query(ctx, `
		SELECT DISTINCT n.id, n.name, n.type, n.payload, n.created_at
		FROM graph_nodes n
		JOIN graph_edges e
		  ON (n.id = e.target_id AND e.source_id = ?)
		  OR (n.id = e.source_id AND e.target_id = ?)`,
		nodeID, nodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to get neighbors: %w", err)
	}
	return a.rowsToNodes(rows), nil
}

// GetPredecessors returns nodes with an edge into nodeID, optionally
// restricted to one edge label (empty label matches any).
func (a *Adapter) GetPredecessors(ctx context.Context, nodeID, label string) ([]*types.Node, error) {
	return a.traverse(ctx, nodeID, label, true)
}

// GetSuccessors returns nodes nodeID has an edge into, optionally
// restricted to one edge label (empty label matches any).
func (a *Adapter) GetSuccessors(ctx context.Context, nodeID, label string) ([]*types.Node, error) {
	return a.traverse(ctx, nodeID, label, false)
}

func (a *Adapter) traverse(ctx context.Context, nodeID, label string, predecessors bool) ([]*types.Node, error) {
	if err := a.ensureGraphSchema(ctx); err != nil {
		return nil, err
	}

	join, filter := "n.id = e.source_id", "e.target_id = ?"
	if !predecessors {
		join, filter = "n.id = e.target_id", "e.source_id = ?"
	}

	query := fmt.Sprintf(`
		SELECT DISTINCT n.id, n.name, n.type, n.payload, n.created_at
		FROM graph_nodes n
		JOIN graph_edges e ON %s
		WHERE %s`, join, filter)
	args := []any{nodeID}
	if label != "" {
		query += " AND e.label = ?"
		args = append(args, label)
	}

	rows, err := a.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to traverse edges: %w", err)
	}
	return a.rowsToNodes(rows), nil
}

// GetNodesetSubgraph returns every node matching the type discriminator and
// one of the names, plus all edges with both endpoints inside that node
// set. This scopes retrieval to a logical partition without a separate
// index.
func (a *Adapter) GetNodesetSubgraph(ctx context.Context, nodeType string, nodeNames []string) ([]*types.Node, []*types.Edge, error) {
	if len(nodeNames) == 0 {
		return []*types.Node{}, []*types.Edge{}, nil
	}
	if err := a.ensureGraphSchema(ctx); err != nil {
		return nil, nil, err
	}

	query := fmt.Sprintf(
		"SELECT id, name, type, payload, created_at FROM graph_nodes WHERE type = ? AND name IN (%s)",
		placeholders(len(nodeNames)))
	args := append([]any{nodeType}, stringArgs(nodeNames)...)
	rows, err := a.query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get nodeset nodes: %w", err)
	}
	nodes := a.rowsToNodes(rows)
	if len(nodes) == 0 {
		return nodes, []*types.Edge{}, nil
	}

	ids := make([]string, len(nodes))
	for i, node := range nodes {
		ids[i] = node.ID
	}
	edgeQuery := fmt.Sprintf(`
		SELECT source_id, target_id, label, properties, created_at
		FROM graph_edges
		WHERE source_id IN (%s) AND target_id IN (%s)`,
		placeholders(len(ids)), placeholders(len(ids)))
	edgeArgs := append(stringArgs(ids), stringArgs(ids)...)
	edgeRows, err := a.query(ctx, edgeQuery, edgeArgs...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get nodeset edges: %w", err)
	}

	return nodes, a.rowsToEdges(edgeRows), nil
}

// GetGraphData returns all nodes and all edges.
func (a *Adapter) GetGraphData(ctx context.Context) ([]*types.Node, []*types.Edge, error) {
	if err := a.ensureGraphSchema(ctx); err != nil {
		return nil, nil, err
	}

	nodeRows, err := a.query(ctx, "SELECT id, name, type, payload, created_at FROM graph_nodes")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get graph nodes: %w", err)
	}
	edgeRows, err := a.query(ctx, "SELECT source_id, target_id, label, properties, created_at FROM graph_edges")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get graph edges: %w", err)
	}
	return a.rowsToNodes(nodeRows), a.rowsToEdges(edgeRows), nil
}

// GetDisconnectedNodes returns the ids of nodes with no incident edges.
func (a *Adapter) GetDisconnectedNodes(ctx context.Context) ([]string, error) {
	if err := a.ensureGraphSchema(ctx); err != nil {
		return nil, err
	}
	rows, err := a.query(ctx, `
		SELECT id FROM graph_nodes
		WHERE id NOT IN (SELECT source_id FROM graph_edges)
		  AND id NOT IN (SELECT target_id FROM graph_edges)`)
	if err != nil {
		return nil, fmt.Errorf("failed to get disconnected nodes: %w", err)
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		if id, ok := types.AsString(row["id"]); ok {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// RemoveConnectionToPredecessorsOf deletes edges pointing into the given
// nodes, optionally restricted to one label.
func (a *Adapter) RemoveConnectionToPredecessorsOf(ctx context.Context, nodeIDs []string, label string) error {
	return a.removeConnections(ctx, nodeIDs, label, "target_id")
}

// RemoveConnectionToSuccessorsOf deletes edges leaving the given nodes,
// optionally restricted to one label.
func (a *Adapter) RemoveConnectionToSuccessorsOf(ctx context.Context, nodeIDs []string, label string) error {
	return a.removeConnections(ctx, nodeIDs, label, "source_id")
}

func (a *Adapter) removeConnections(ctx context.Context, nodeIDs []string, label, column string) error {
	if len(nodeIDs) == 0 {
		return nil
	}
	if err := a.ensureGraphSchema(ctx); err != nil {
		return err
	}

	query := fmt.Sprintf("DELETE FROM graph_edges WHERE %s IN (%s)", column, placeholders(len(nodeIDs)))
	args := stringArgs(nodeIDs)
	if label != "" {
		query += " AND label = ?"
		args = append(args, label)
	}
	if _, err := a.exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to remove connections: %w", err)
	}
	return nil
}

// GetGraphMetrics summarizes the stored graph: counts, per-type and
// per-label breakdowns, and the degree distribution.
func (a *Adapter) GetGraphMetrics(ctx context.Context) (*types.GraphMetrics, error) {
	nodes, edges, err := a.GetGraphData(ctx)
	if err != nil {
		return nil, err
	}

	metrics := &types.GraphMetrics{
		NodeCount:       int64(len(nodes)),
		EdgeCount:       int64(len(edges)),
		NodesByType:     make(map[string]int64),
		EdgesByLabel:    make(map[string]int64),
		DegreeHistogram: make(map[int64]int64),
		CollectedAt:     time.Now().UTC(),
	}

	degrees := make(map[string]int64, len(nodes))
	for _, node := range nodes {
		metrics.NodesByType[node.Type]++
		degrees[node.ID] = 0
	}
	for _, edge := range edges {
		metrics.EdgesByLabel[edge.Label]++
		if edge.SourceID == edge.TargetID {
			metrics.SelfLoops++
			degrees[edge.SourceID] += 2
			continue
		}
		degrees[edge.SourceID]++
		degrees[edge.TargetID]++
	}

	var total int64
	for _, degree := range degrees {
		metrics.DegreeHistogram[degree]++
		total += degree
	}
	if len(degrees) > 0 {
		metrics.MeanDegree = float64(total) / float64(len(degrees))
	}
	return metrics, nil
}

// DeleteGraph drops all node and edge storage. Vector collections are left
// alone; Prune removes everything.
func (a *Adapter) DeleteGraph(ctx context.Context) error {
	for _, table := range []string{graphEdgesTable, graphNodesTable} {
		if _, err := a.exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s", table)); err != nil {
			return fmt.Errorf("failed to drop %s: %w", table, err)
		}
	}
	return nil
}

func (a *Adapter) rowsToNodes(rows []map[string]any) []*types.Node {
	nodes := make([]*types.Node, 0, len(rows))
	for _, row := range rows {
		id, _ := types.AsString(row["id"])

		payload, err := a.parsePayload(row["payload"])
		if err != nil {
			a.logger.Warn("skipping node with malformed payload", "id", id, "error", err)
			continue
		}

		node := &types.Node{ID: id, Payload: payload}
		node.Name, _ = types.AsString(row["name"])
		node.Type, _ = types.AsString(row["type"])
		if createdAt, ok := parseTimestamp(row["created_at"]); ok {
			node.CreatedAt = createdAt
		}
		nodes = append(nodes, node)
	}
	return nodes
}

func (a *Adapter) rowsToEdges(rows []map[string]any) []*types.Edge {
	edges := make([]*types.Edge, 0, len(rows))
	for _, row := range rows {
		edge := &types.Edge{}
		edge.SourceID, _ = types.AsString(row["source_id"])
		edge.TargetID, _ = types.AsString(row["target_id"])
		edge.Label, _ = types.AsString(row["label"])

		properties, err := a.parsePayload(row["properties"])
		if err != nil {
			a.logger.Warn("skipping edge with malformed properties",
				"source", edge.SourceID, "target", edge.TargetID, "label", edge.Label, "error", err)
			continue
		}
		edge.Properties = properties
		if createdAt, ok := parseTimestamp(row["created_at"]); ok {
			edge.CreatedAt = createdAt
		}
		edges = append(edges, edge)
	}
	return edges
}
