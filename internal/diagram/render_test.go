package diagram

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngMagic = []byte{0x89, 0x50, 0x4E, 0x47}

func TestRenderImagePNG(t *testing.T) {
	model, err := Build(branchGraph())
	require.NoError(t, err)

	png, err := RenderImage(model)
	require.NoError(t, err)
	require.Greater(t, len(png), 4)
	assert.Equal(t, pngMagic, png[:4])
}

func TestRenderImageCycle(t *testing.T) {
	// Loop back-edges form a cycle; the layout must still produce output.
	model, err := Build(loopGraph())
	require.NoError(t, err)

	png, err := RenderImage(model)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, png[:4])
}

func TestRenderImageSingleNode(t *testing.T) {
	model := &DiagramModel{
		Title:  "Code Flowchart",
		Nodes:  []*Node{{ID: "only", Label: "Start"}},
		Levels: [][]string{{"only"}},
	}

	png, err := RenderImage(model)
	require.NoError(t, err)
	assert.Equal(t, pngMagic, png[:4])
}

func TestRenderMermaidShapesAndClasses(t *testing.T) {
	model, err := Build(branchGraph())
	require.NoError(t, err)

	out := RenderMermaid(model)
	assert.True(t, strings.HasPrefix(out, "graph TD\n"))
	assert.Contains(t, out, `start(["Start"])`)
	assert.Contains(t, out, `check{"x > 0?"}`)
	assert.Contains(t, out, `pos["print positive"]`)
	assert.Contains(t, out, "check -->|true| pos")
	assert.Contains(t, out, "check -->|false| neg")
	assert.Contains(t, out, "class start start")
	assert.Contains(t, out, "class check branch")
	assert.Contains(t, out, "class done terminal")
}

func TestRenderMermaidSanitizesIDs(t *testing.T) {
	model := &DiagramModel{
		Nodes: []*Node{
			{ID: "my node.1", Label: "one"},
			{ID: "my-node-2", Label: "two"},
		},
		Edges:  []Edge{{From: "my node.1", To: "my-node-2"}},
		Levels: [][]string{{"my node.1"}, {"my-node-2"}},
	}

	out := RenderMermaid(model)
	assert.Contains(t, out, "my_node_1 --> my_node_2")
	assert.NotContains(t, out, "my node.1 -->")
}

func TestRenderASCII(t *testing.T) {
	model, err := Build(branchGraph())
	require.NoError(t, err)

	out := RenderASCII(model)
	assert.Contains(t, out, "=== Code Flowchart ===")
	assert.Contains(t, out, "Start")
	assert.Contains(t, out, "[START]")
	assert.Contains(t, out, "[?]")
	assert.Contains(t, out, "--- branches ---")
	assert.Contains(t, out, "(true)")
	assert.Contains(t, out, "(false)")
}

func TestFirstLineTruncatesMultiline(t *testing.T) {
	assert.Equal(t, "line one", firstLine("line one\nline two"))
	assert.Equal(t, "plain", firstLine("plain"))
}
