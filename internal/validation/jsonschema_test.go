package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/pkg/schema"
)

func newValidator(t *testing.T) *FlowGraphValidator {
	t.Helper()
	v, err := NewFlowGraphValidator()
	require.NoError(t, err)
	return v
}

func validateDoc(t *testing.T, raw string) error {
	t.Helper()
	v := newValidator(t)
	doc, err := DecodeJSON(raw)
	require.NoError(t, err)
	return v.ValidateDocument(doc)
}

func TestValidateDocumentAccepts(t *testing.T) {
	err := validateDoc(t, `{
		"nodes": [
			{"id": "s", "kind": "start", "label": "Start"},
			{"id": "e", "kind": "end", "label": "End"}
		],
		"edges": [{"from_id": "s", "to_id": "e"}],
		"explanation": "Trivial flow."
	}`)
	assert.NoError(t, err)
}

func TestValidateDocumentToleratesExtraTopLevelFields(t *testing.T) {
	err := validateDoc(t, `{
		"nodes": [{"id": "s", "kind": "start", "label": "Start"}],
		"edges": [],
		"explanation": "x",
		"confidence": 0.9
	}`)
	assert.NoError(t, err)
}

func TestValidateDocumentRejections(t *testing.T) {
	cases := []struct {
		name string
		raw  string
	}{
		{
			name: "missing edges",
			raw:  `{"nodes": [{"id": "s", "kind": "start", "label": "x"}], "explanation": "x"}`,
		},
		{
			name: "missing explanation",
			raw:  `{"nodes": [{"id": "s", "kind": "start", "label": "x"}], "edges": []}`,
		},
		{
			name: "empty nodes",
			raw:  `{"nodes": [], "edges": [], "explanation": "x"}`,
		},
		{
			name: "unknown node kind",
			raw:  `{"nodes": [{"id": "s", "kind": "subroutine", "label": "x"}], "edges": [], "explanation": "x"}`,
		},
		{
			name: "empty node id",
			raw:  `{"nodes": [{"id": "", "kind": "start", "label": "x"}], "edges": [], "explanation": "x"}`,
		},
		{
			name: "node missing label",
			raw:  `{"nodes": [{"id": "s", "kind": "start"}], "edges": [], "explanation": "x"}`,
		},
		{
			name: "edge missing to_id",
			raw:  `{"nodes": [{"id": "s", "kind": "start", "label": "x"}], "edges": [{"from_id": "s"}], "explanation": "x"}`,
		},
		{
			name: "extra edge field",
			raw:  `{"nodes": [{"id": "s", "kind": "start", "label": "x"}], "edges": [{"from_id": "s", "to_id": "s", "weight": 1}], "explanation": "x"}`,
		},
		{
			name: "nodes not an array",
			raw:  `{"nodes": {"id": "s"}, "edges": [], "explanation": "x"}`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := validateDoc(t, tc.raw)
			require.Error(t, err)
			assert.Equal(t, schema.ErrCodeSchemaValidation, schema.ErrorCode(err))
		})
	}
}

func TestValidateDocumentReportsViolationDetails(t *testing.T) {
	err := validateDoc(t, `{"nodes": [{"id": "s", "kind": "bogus", "label": "x"}], "edges": [], "explanation": "x"}`)
	require.Error(t, err)

	var ferr *schema.FlowError
	require.ErrorAs(t, err, &ferr)
	assert.NotEmpty(t, ferr.Details["violations"])
}
