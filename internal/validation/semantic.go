package validation

import (
	"fmt"

	"github.com/flowlens/flowlens/pkg/schema"
)

// validateSemantic checks the FlowGraph invariants that JSON Schema cannot
// express: node ID uniqueness, edge reference integrity, start node
// cardinality, and branch structure around decision and loop nodes.
// Unreachable nodes are accepted output and reported only as warnings.
func validateSemantic(graph *schema.FlowGraph) *schema.ValidationResult {
	result := &schema.ValidationResult{}

	nodeIDs := make(map[string]bool, len(graph.Nodes))
	startCount := 0
	for i, n := range graph.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		if nodeIDs[n.ID] {
			result.AddError(path+".id", fmt.Sprintf("duplicate node id %q", n.ID))
		}
		nodeIDs[n.ID] = true
		if !n.Kind.Valid() {
			result.AddError(path+".kind", fmt.Sprintf("unknown node kind %q", n.Kind))
		}
		if n.Kind == schema.NodeKindStart {
			startCount++
		}
	}

	if startCount == 0 {
		result.AddError("nodes", "missing start node")
	} else if startCount > 1 {
		result.AddError("nodes", fmt.Sprintf("expected exactly one start node, found %d", startCount))
	}

	outgoing := make(map[string][]schema.FlowEdge, len(graph.Nodes))
	for i, e := range graph.Edges {
		path := fmt.Sprintf("edges[%d]", i)
		if !nodeIDs[e.FromID] {
			result.AddError(path+".from_id", fmt.Sprintf("references non-existent node %q", e.FromID))
		}
		if !nodeIDs[e.ToID] {
			result.AddError(path+".to_id", fmt.Sprintf("references non-existent node %q", e.ToID))
		}
		outgoing[e.FromID] = append(outgoing[e.FromID], e)
	}

	for i, n := range graph.Nodes {
		path := fmt.Sprintf("nodes[%d]", i)
		out := outgoing[n.ID]

		switch n.Kind {
		case schema.NodeKindDecision:
			validateDecisionBranches(path, n, out, result)
		case schema.NodeKindLoop:
			// continue + exit at most
			if len(out) > 2 {
				result.AddWarning(path, fmt.Sprintf("loop node %q has %d outgoing edges, expected at most 2", n.ID, len(out)))
			}
		case schema.NodeKindEnd:
			if len(out) > 0 {
				result.AddWarning(path, fmt.Sprintf("end node %q has outgoing edges", n.ID))
			}
		default:
			if len(out) > 1 {
				result.AddWarning(path, fmt.Sprintf("%s node %q has %d outgoing edges, expected at most 1", n.Kind, n.ID, len(out)))
			}
		}
	}

	warnUnreachable(graph, nodeIDs, result)

	return result
}

// validateDecisionBranches enforces exactly two outgoing edges with distinct,
// non-empty condition labels.
func validateDecisionBranches(path string, n schema.FlowNode, out []schema.FlowEdge, result *schema.ValidationResult) {
	if len(out) != 2 {
		result.AddError(path, fmt.Sprintf("decision node %q has %d outgoing edges, expected exactly 2", n.ID, len(out)))
		return
	}
	if out[0].ConditionLabel == "" || out[1].ConditionLabel == "" {
		result.AddError(path, fmt.Sprintf("decision node %q has an unlabeled branch", n.ID))
		return
	}
	if out[0].ConditionLabel == out[1].ConditionLabel {
		result.AddError(path, fmt.Sprintf("decision node %q branches share the label %q", n.ID, out[0].ConditionLabel))
	}
}

// warnUnreachable flags nodes not reachable from the start node. Incoherent
// but structurally valid graphs are accepted, so this never fails validation.
func warnUnreachable(graph *schema.FlowGraph, nodeIDs map[string]bool, result *schema.ValidationResult) {
	start := graph.StartNode()
	if start == nil {
		return
	}

	adjacency := make(map[string][]string, len(graph.Nodes))
	for _, e := range graph.Edges {
		adjacency[e.FromID] = append(adjacency[e.FromID], e.ToID)
	}

	reached := map[string]bool{start.ID: true}
	queue := []string{start.ID}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, next := range adjacency[cur] {
			if !reached[next] && nodeIDs[next] {
				reached[next] = true
				queue = append(queue, next)
			}
		}
	}

	for _, n := range graph.Nodes {
		if !reached[n.ID] {
			result.AddWarning("nodes", fmt.Sprintf("node %q is unreachable from the start node", n.ID))
		}
	}
}
