package validation

import (
	"fmt"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/flowlens/flowlens/pkg/schema"
)

// flowGraphSchemaJSON is the JSON Schema the model's response must satisfy.
// Embedded as a constant to avoid filesystem dependencies. Top-level extra
// fields are tolerated: models often attach free-text keys alongside the
// declared ones.
const flowGraphSchemaJSON = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "$id": "https://flowlens.dev/schemas/flowgraph.json",
  "type": "object",
  "required": ["nodes", "edges", "explanation"],
  "properties": {
    "nodes": {
      "type": "array",
      "minItems": 1,
      "items": { "$ref": "#/$defs/node" }
    },
    "edges": {
      "type": "array",
      "items": { "$ref": "#/$defs/edge" }
    },
    "explanation": {
      "type": "string"
    }
  },
  "$defs": {
    "node": {
      "type": "object",
      "required": ["id", "kind", "label"],
      "properties": {
        "id": {
          "type": "string",
          "minLength": 1
        },
        "kind": {
          "type": "string",
          "enum": ["start", "end", "process", "decision", "loop", "call", "return"]
        },
        "label": {
          "type": "string"
        }
      },
      "additionalProperties": false
    },
    "edge": {
      "type": "object",
      "required": ["from_id", "to_id"],
      "properties": {
        "from_id": {
          "type": "string",
          "minLength": 1
        },
        "to_id": {
          "type": "string",
          "minLength": 1
        },
        "condition_label": {
          "type": "string"
        }
      },
      "additionalProperties": false
    }
  }
}`

// FlowGraphValidator validates decoded model responses against the FlowGraph
// JSON Schema and the semantic invariants the schema cannot express.
// It is safe for concurrent use.
type FlowGraphValidator struct {
	compiled *jsonschema.Schema
}

// NewFlowGraphValidator compiles the embedded FlowGraph schema.
func NewFlowGraphValidator() (*FlowGraphValidator, error) {
	c := jsonschema.NewCompiler()
	c.AssertFormat()

	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(flowGraphSchemaJSON))
	if err != nil {
		return nil, fmt.Errorf("unmarshal flowgraph schema: %w", err)
	}
	if err := c.AddResource("https://flowlens.dev/schemas/flowgraph.json", doc); err != nil {
		return nil, fmt.Errorf("add flowgraph schema resource: %w", err)
	}

	compiled, err := c.Compile("https://flowlens.dev/schemas/flowgraph.json")
	if err != nil {
		return nil, fmt.Errorf("compile flowgraph schema: %w", err)
	}

	return &FlowGraphValidator{compiled: compiled}, nil
}

// ValidateDocument checks a raw JSON document (the span located in the model
// response) against the FlowGraph schema. The doc must come from
// jsonschema.UnmarshalJSON so numbers are json.Number.
func (v *FlowGraphValidator) ValidateDocument(doc any) error {
	if err := v.compiled.Validate(doc); err != nil {
		return toFlowError(err)
	}
	return nil
}

// ValidateGraph runs the semantic invariant checks on a schema-conformant graph.
func (v *FlowGraphValidator) ValidateGraph(graph *schema.FlowGraph) error {
	return validateSemantic(graph).ToError()
}

// DecodeJSON parses raw JSON text into a document suitable for ValidateDocument.
func DecodeJSON(raw string) (any, error) {
	return jsonschema.UnmarshalJSON(strings.NewReader(raw))
}

// toFlowError converts a jsonschema.ValidationError into a FlowError with
// one message per leaf violation.
func toFlowError(err error) *schema.FlowError {
	verr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return schema.NewError(schema.ErrCodeSchemaValidation, err.Error())
	}

	violations := collectViolations(verr)
	if len(violations) == 0 {
		return schema.NewError(schema.ErrCodeSchemaValidation, verr.Error())
	}

	msg := violations[0]
	if len(violations) > 1 {
		msg = fmt.Sprintf("validation failed with %d errors", len(violations))
	}
	return schema.NewError(schema.ErrCodeSchemaValidation, msg).
		WithDetails(map[string]any{"violations": violations})
}

// collectViolations walks a ValidationError tree and collects leaf error
// messages with their instance locations.
func collectViolations(verr *jsonschema.ValidationError) []string {
	if len(verr.Causes) == 0 {
		loc := "/"
		if len(verr.InstanceLocation) > 0 {
			loc = "/" + strings.Join(verr.InstanceLocation, "/")
		}
		return []string{fmt.Sprintf("%s: %s", loc, verr.Error())}
	}

	var violations []string
	for _, cause := range verr.Causes {
		violations = append(violations, collectViolations(cause)...)
	}
	return violations
}
