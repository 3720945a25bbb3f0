package diagram

import (
	"fmt"

	"github.com/flowlens/flowlens/pkg/schema"
)

// Build constructs a DiagramModel from a validated FlowGraph. The renderer
// does not re-run the extractor's invariant checks, but it must not crash on
// a dangling edge reference either: such a graph fails with a RENDER_ERROR.
// Build is a pure function of its input; the same graph always yields a
// structurally identical model.
func Build(graph *schema.FlowGraph) (*DiagramModel, error) {
	nodes := make([]*Node, 0, len(graph.Nodes))
	index := make(map[string]*Node, len(graph.Nodes))
	for _, n := range graph.Nodes {
		node := &Node{ID: n.ID, Label: n.Label, Kind: n.Kind}
		nodes = append(nodes, node)
		index[n.ID] = node
	}

	edges := make([]Edge, 0, len(graph.Edges))
	for _, e := range graph.Edges {
		if index[e.FromID] == nil || index[e.ToID] == nil {
			return nil, schema.NewErrorf(schema.ErrCodeRender,
				"edge %s -> %s references a missing node", e.FromID, e.ToID).
				WithDetails(map[string]any{"from_id": e.FromID, "to_id": e.ToID})
		}
		edges = append(edges, Edge{From: e.FromID, To: e.ToID, Label: e.ConditionLabel})
	}

	return &DiagramModel{
		Title:  "Code Flowchart",
		Nodes:  nodes,
		Edges:  edges,
		Levels: buildLevels(nodes, edges),
	}, nil
}

// buildLevels assigns each node a depth via BFS from the start node. Edges
// into already-placed nodes (loop back-edges, reconvergence) don't move a
// node deeper. Nodes unreachable from start land in one trailing level so
// every node appears exactly once.
func buildLevels(nodes []*Node, edges []Edge) [][]string {
	adjacency := make(map[string][]string, len(nodes))
	for _, e := range edges {
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	var start *Node
	for _, n := range nodes {
		if n.Kind == schema.NodeKindStart {
			start = n
			break
		}
	}
	if start == nil && len(nodes) > 0 {
		start = nodes[0]
	}
	if start == nil {
		return nil
	}

	depth := map[string]int{start.ID: 0}
	queue := []string{start.ID}
	maxDepth := 0
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur] {
			if _, seen := depth[next]; seen {
				continue
			}
			depth[next] = depth[cur] + 1
			if depth[next] > maxDepth {
				maxDepth = depth[next]
			}
			queue = append(queue, next)
		}
	}

	levels := make([][]string, maxDepth+1)
	var orphans []string
	for _, n := range nodes {
		d, ok := depth[n.ID]
		if !ok {
			orphans = append(orphans, n.ID)
			continue
		}
		levels[d] = append(levels[d], n.ID)
	}
	if len(orphans) > 0 {
		levels = append(levels, orphans)
	}
	return levels
}

// EdgeKey returns a stable identity for an edge, used by tests to compare
// submitted node/edge sets across renders.
func EdgeKey(e Edge) string {
	return fmt.Sprintf("%s->%s[%s]", e.From, e.To, e.Label)
}
