package query

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/pkg/schema"
)

func graphDoc() map[string]any {
	return map[string]any{
		"nodes": []any{
			map[string]any{"id": "s", "kind": "start", "label": "Start"},
			map[string]any{"id": "d", "kind": "decision", "label": "ok?"},
			map[string]any{"id": "e", "kind": "end", "label": "End"},
		},
		"edges": []any{
			map[string]any{"from_id": "s", "to_id": "d"},
		},
		"explanation": "branch",
	}
}

func TestEvaluateEmptyExpressionReturnsDocument(t *testing.T) {
	e := NewEngine()
	doc := graphDoc()

	got, err := e.Evaluate(context.Background(), "", doc)
	require.NoError(t, err)
	assert.Equal(t, doc, got)
}

func TestEvaluateSingleOutput(t *testing.T) {
	e := NewEngine()

	got, err := e.Evaluate(context.Background(), ".explanation", graphDoc())
	require.NoError(t, err)
	assert.Equal(t, "branch", got)
}

func TestEvaluateMultipleOutputs(t *testing.T) {
	e := NewEngine()

	got, err := e.Evaluate(context.Background(), ".nodes[].id", graphDoc())
	require.NoError(t, err)
	assert.Equal(t, []any{"s", "d", "e"}, got)
}

func TestEvaluateSelectFilter(t *testing.T) {
	e := NewEngine()

	got, err := e.Evaluate(context.Background(), `.nodes[] | select(.kind == "decision") | .label`, graphDoc())
	require.NoError(t, err)
	assert.Equal(t, "ok?", got)
}

func TestEvaluateNoOutput(t *testing.T) {
	e := NewEngine()

	got, err := e.Evaluate(context.Background(), `.nodes[] | select(.kind == "call")`, graphDoc())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEvaluateInvalidExpression(t *testing.T) {
	e := NewEngine()

	_, err := e.Evaluate(context.Background(), ".[unclosed", graphDoc())
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeSchemaValidation, schema.ErrorCode(err))
}

func TestEvaluateRuntimeError(t *testing.T) {
	e := NewEngine()

	_, err := e.Evaluate(context.Background(), ".nodes + 1", graphDoc())
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeSchemaValidation, schema.ErrorCode(err))
}

func TestEvaluateReusesCompiledQueries(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()

	_, err := e.Evaluate(ctx, ".explanation", graphDoc())
	require.NoError(t, err)
	_, err = e.Evaluate(ctx, ".explanation", graphDoc())
	require.NoError(t, err)

	e.mu.RLock()
	defer e.mu.RUnlock()
	assert.Len(t, e.cache, 1)
}
