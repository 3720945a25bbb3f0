package diagram

import (
	"fmt"
	"strings"

	"github.com/flowlens/flowlens/pkg/schema"
)

// RenderMermaid renders a DiagramModel as a Mermaid flowchart string, the
// text companion to the PNG renderer (usable directly in markdown).
func RenderMermaid(model *DiagramModel) string {
	var b strings.Builder

	b.WriteString("graph TD\n")

	if model.Title != "" {
		b.WriteString(fmt.Sprintf("    %%%% %s\n", model.Title))
	}

	for _, node := range model.Nodes {
		b.WriteString(fmt.Sprintf("    %s\n", mermaidNodeDef(node)))
	}

	for _, edge := range model.Edges {
		label := ""
		if edge.Label != "" {
			label = fmt.Sprintf("|%s|", edge.Label)
		}
		b.WriteString(fmt.Sprintf("    %s -->%s %s\n",
			mermaidSafeID(edge.From), label, mermaidSafeID(edge.To)))
	}

	// Kind class definitions, mirroring the PNG palette.
	b.WriteString("\n")
	b.WriteString("    classDef start fill:#32CD32,color:#fff\n")
	b.WriteString("    classDef terminal fill:#8A2BE2,color:#fff\n")
	b.WriteString("    classDef branch fill:#FFD700,color:#000\n")
	b.WriteString("    classDef call fill:#FF6347,color:#fff\n")
	b.WriteString("    classDef process fill:#1E90FF,color:#fff\n")

	for _, node := range model.Nodes {
		b.WriteString(fmt.Sprintf("    class %s %s\n",
			mermaidSafeID(node.ID), mermaidKindClass(node.Kind)))
	}

	return b.String()
}

// mermaidNodeDef returns a Mermaid node definition with the appropriate shape.
func mermaidNodeDef(node *Node) string {
	id := mermaidSafeID(node.ID)
	label := firstLine(node.Label)

	switch node.Kind {
	case schema.NodeKindStart, schema.NodeKindEnd, schema.NodeKindReturn:
		return fmt.Sprintf("%s([%q])", id, label)
	case schema.NodeKindDecision, schema.NodeKindLoop:
		return fmt.Sprintf("%s{%q}", id, label)
	case schema.NodeKindCall:
		return fmt.Sprintf("%s[[%q]]", id, label)
	default: // process
		return fmt.Sprintf("%s[%q]", id, label)
	}
}

// mermaidSafeID converts a node ID to a Mermaid-safe identifier.
func mermaidSafeID(id string) string {
	r := strings.NewReplacer(".", "_", "-", "_", " ", "_")
	return r.Replace(id)
}

// mermaidKindClass maps a node kind to one of the defined classes.
func mermaidKindClass(kind schema.NodeKind) string {
	switch kind {
	case schema.NodeKindStart:
		return "start"
	case schema.NodeKindEnd, schema.NodeKindReturn:
		return "terminal"
	case schema.NodeKindDecision, schema.NodeKindLoop:
		return "branch"
	case schema.NodeKindCall:
		return "call"
	default:
		return "process"
	}
}
