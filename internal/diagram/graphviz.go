package diagram

import (
	"bytes"
	"context"
	"strings"

	"github.com/goccy/go-graphviz"
	"github.com/goccy/go-graphviz/cgraph"

	"github.com/flowlens/flowlens/pkg/schema"
)

// RenderImage renders a DiagramModel as a PNG image using graphviz and the
// DOT layout engine. The whole node/edge set is submitted in one pass; any
// backend rejection surfaces as a RENDER_ERROR. Cycles are valid input and
// must render (loops are part of the domain).
func RenderImage(model *DiagramModel) ([]byte, error) {
	ctx := context.Background()

	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeRender, "create graphviz").WithCause(err)
	}
	defer gv.Close()

	gv.SetLayout(graphviz.DOT)

	graph, err := gv.Graph()
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeRender, "create graph").WithCause(err)
	}
	defer graph.Close()

	graph.SetRankDir(cgraph.TBRank)
	if model.Title != "" {
		graph.SetLabel(model.Title)
	}

	gvNodes := make(map[string]*cgraph.Node, len(model.Nodes))
	for _, node := range model.Nodes {
		gvNode, nErr := graph.CreateNodeByName(node.ID)
		if nErr != nil {
			return nil, schema.NewErrorf(schema.ErrCodeRender, "create node %s", node.ID).WithCause(nErr)
		}
		gvNode.SetLabel(firstLine(node.Label))
		gvNode.SetTooltip(node.Label)
		applyNodeStyle(gvNode, node.Kind)
		gvNodes[node.ID] = gvNode
	}

	for _, edge := range model.Edges {
		fromGV, toGV := gvNodes[edge.From], gvNodes[edge.To]
		if fromGV == nil || toGV == nil {
			return nil, schema.NewErrorf(schema.ErrCodeRender,
				"edge %s -> %s references a missing node", edge.From, edge.To)
		}
		e, eErr := graph.CreateEdgeByName("", fromGV, toGV)
		if eErr != nil {
			return nil, schema.NewErrorf(schema.ErrCodeRender, "create edge %s -> %s", edge.From, edge.To).WithCause(eErr)
		}
		if edge.Label != "" {
			e.SetLabel(edge.Label)
		}
		e.SetColor(edgeColor(edge.Label))
		e.SetPenWidth(2.0)
	}

	var buf bytes.Buffer
	if err := gv.Render(ctx, graph, graphviz.PNG, &buf); err != nil {
		return nil, schema.NewError(schema.ErrCodeRender, "render PNG").WithCause(err)
	}

	return buf.Bytes(), nil
}

// applyNodeStyle sets the shape and fill for a node kind: rounded terminals
// for start/end/return, diamonds for decisions and loops, boxes for
// processes and calls.
func applyNodeStyle(gvNode *cgraph.Node, kind schema.NodeKind) {
	gvNode.SetStyle(cgraph.FilledNodeStyle)

	switch kind {
	case schema.NodeKindStart:
		gvNode.SetShape(cgraph.EllipseShape)
		gvNode.SetFillColor("#32CD32")
		gvNode.SetFontColor("white")
	case schema.NodeKindEnd, schema.NodeKindReturn:
		gvNode.SetShape(cgraph.EllipseShape)
		gvNode.SetFillColor("#8A2BE2")
		gvNode.SetFontColor("white")
	case schema.NodeKindDecision, schema.NodeKindLoop:
		gvNode.SetShape(cgraph.DiamondShape)
		gvNode.SetFillColor("#FFD700")
		gvNode.SetFontColor("black")
	case schema.NodeKindCall:
		gvNode.SetShape(cgraph.BoxShape)
		gvNode.SetFillColor("#FF6347")
		gvNode.SetFontColor("white")
	default: // process
		gvNode.SetShape(cgraph.BoxShape)
		gvNode.SetFillColor("#1E90FF")
		gvNode.SetFontColor("white")
	}
}

// edgeColor picks the connector color from the condition label: green for
// true/yes branches, red for false/no, blue for loop-back edges, gray
// otherwise.
func edgeColor(label string) string {
	l := strings.ToLower(label)
	switch {
	case l == "yes" || strings.Contains(l, "true"):
		return "#32CD32"
	case l == "no" || strings.Contains(l, "false"):
		return "#FF6347"
	case strings.Contains(l, "iteration") || strings.Contains(l, "loop"):
		return "#0000FF"
	default:
		return "#666666"
	}
}
