package extract

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"github.com/flowlens/flowlens/internal/validation"
	"github.com/flowlens/flowlens/pkg/schema"
)

// defaultTemperature matches the original tuning: low enough for stable JSON,
// high enough for readable labels.
const defaultTemperature = 0.3

// Extractor turns pasted source code into a validated FlowGraph via exactly
// one chat completion call. No retries: any failure is terminal for the
// submission and the caller reports it to the user.
type Extractor struct {
	client      ChatClient
	validator   *validation.FlowGraphValidator
	model       string
	temperature float32
	logger      *slog.Logger
}

// NewExtractor wires an Extractor. model is the default used when a request
// does not choose one. The API key lives inside the client; the extractor
// never reads configuration itself.
func NewExtractor(client ChatClient, validator *validation.FlowGraphValidator, model string, logger *slog.Logger) *Extractor {
	return &Extractor{
		client:      client,
		validator:   validator,
		model:       model,
		temperature: defaultTemperature,
		logger:      logger,
	}
}

// DefaultModel returns the model used when a request does not choose one.
func (x *Extractor) DefaultModel() string {
	return x.model
}

// Extract analyzes source with the given model (or the default when model is
// empty) and returns the validated FlowGraph.
func (x *Extractor) Extract(ctx context.Context, source, model string) (*schema.FlowGraph, error) {
	if strings.TrimSpace(source) == "" {
		return nil, schema.NewError(schema.ErrCodeEmptyInput, "source code is empty")
	}
	if model == "" {
		model = x.model
	}

	start := time.Now()
	raw, err := x.client.Complete(ctx, model, systemPrompt, BuildPrompt(source), x.temperature)
	if err != nil {
		return nil, err
	}
	x.logger.InfoContext(ctx, "model response received",
		"model", model,
		"duration_ms", time.Since(start).Milliseconds(),
		"response_len", len(raw))

	return x.parse(ctx, raw)
}

// parse runs the two-stage defensive decode: locate a candidate JSON span,
// then parse and validate it. The stages keep the two failure kinds apart:
// no parseable object is MALFORMED_RESPONSE, a parseable object that breaks
// the declared schema or the graph invariants is SCHEMA_VALIDATION.
func (x *Extractor) parse(ctx context.Context, raw string) (*schema.FlowGraph, error) {
	span, ok := LocateJSON(raw)
	if !ok {
		return nil, schema.NewError(schema.ErrCodeMalformedResponse, "no JSON object found in model response")
	}

	doc, err := validation.DecodeJSON(span)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeMalformedResponse, "model response is not valid JSON").WithCause(err)
	}

	if err := x.validator.ValidateDocument(doc); err != nil {
		return nil, err
	}

	var graph schema.FlowGraph
	if err := json.Unmarshal([]byte(span), &graph); err != nil {
		return nil, schema.NewError(schema.ErrCodeMalformedResponse, "model response could not be decoded").WithCause(err)
	}

	if err := x.validator.ValidateGraph(&graph); err != nil {
		return nil, err
	}

	x.logger.DebugContext(ctx, "flow graph extracted",
		"nodes", len(graph.Nodes), "edges", len(graph.Edges))
	return &graph, nil
}
