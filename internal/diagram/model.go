package diagram

import (
	"strings"

	"github.com/flowlens/flowlens/pkg/schema"
)

// DiagramModel is the intermediate representation shared by all renderers.
// Levels groups node IDs by their breadth-first depth from the start node;
// loop back-edges are ignored when computing depth so cyclic graphs still
// get a usable top-to-bottom layout.
type DiagramModel struct {
	Title  string
	Nodes  []*Node
	Edges  []Edge
	Levels [][]string
}

// Node represents a single step in the diagram.
type Node struct {
	ID    string
	Label string
	Kind  schema.NodeKind
}

// Edge represents a directed transition between two nodes.
type Edge struct {
	From  string
	To    string
	Label string
}

// firstLine returns only the first line of a multi-line label.
func firstLine(s string) string {
	if i := strings.Index(s, "\n"); i >= 0 {
		return s[:i]
	}
	return s
}

// findNode looks up a node by ID in the model's node list.
func findNode(nodes []*Node, id string) *Node {
	for _, n := range nodes {
		if n.ID == id {
			return n
		}
	}
	return nil
}
