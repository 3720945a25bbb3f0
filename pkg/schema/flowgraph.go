package schema

// NodeKind classifies a flow node by the kind of step it represents.
type NodeKind string

const (
	NodeKindStart    NodeKind = "start"
	NodeKindEnd      NodeKind = "end"
	NodeKindProcess  NodeKind = "process"
	NodeKindDecision NodeKind = "decision"
	NodeKindLoop     NodeKind = "loop"
	NodeKindCall     NodeKind = "call"
	NodeKindReturn   NodeKind = "return"
)

// KnownNodeKinds lists every NodeKind the model is allowed to emit.
var KnownNodeKinds = []NodeKind{
	NodeKindStart, NodeKindEnd, NodeKindProcess,
	NodeKindDecision, NodeKindLoop, NodeKindCall, NodeKindReturn,
}

// Valid reports whether k is one of the known node kinds.
func (k NodeKind) Valid() bool {
	for _, known := range KnownNodeKinds {
		if k == known {
			return true
		}
	}
	return false
}

// FlowNode is one logical step of the analyzed code.
type FlowNode struct {
	ID    string   `json:"id"`
	Kind  NodeKind `json:"kind"`
	Label string   `json:"label"`
}

// FlowEdge is a possible transition between two steps. ConditionLabel
// distinguishes the branches out of a decision node ("true"/"false").
type FlowEdge struct {
	FromID         string `json:"from_id"`
	ToID           string `json:"to_id"`
	ConditionLabel string `json:"condition_label,omitempty"`
}

// FlowGraph is the structured control-flow description returned by the model
// for one analysis request. It is built fresh per request, validated once,
// then handed to the renderer; nothing mutates it afterwards.
type FlowGraph struct {
	Nodes       []FlowNode `json:"nodes"`
	Edges       []FlowEdge `json:"edges"`
	Explanation string     `json:"explanation"`
}

// Node returns the node with the given ID, or nil if absent.
func (g *FlowGraph) Node(id string) *FlowNode {
	for i := range g.Nodes {
		if g.Nodes[i].ID == id {
			return &g.Nodes[i]
		}
	}
	return nil
}

// StartNode returns the start node, or nil if the graph has none.
func (g *FlowGraph) StartNode() *FlowNode {
	for i := range g.Nodes {
		if g.Nodes[i].Kind == NodeKindStart {
			return &g.Nodes[i]
		}
	}
	return nil
}

// OutgoingEdges returns the edges leaving the given node, in declaration order.
func (g *FlowGraph) OutgoingEdges(nodeID string) []FlowEdge {
	var out []FlowEdge
	for _, e := range g.Edges {
		if e.FromID == nodeID {
			out = append(out, e)
		}
	}
	return out
}
