package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/flowlens/flowlens/internal/diagram"
	"github.com/flowlens/flowlens/internal/extract"
	"github.com/flowlens/flowlens/internal/logging"
	"github.com/flowlens/flowlens/internal/store"
)

// Service composes the extractor and the renderers into the full pipeline:
// source → FlowGraph → diagram model → PNG + Mermaid, persisted as one
// Analysis row. Each call owns its FlowGraph exclusively; nothing is shared
// across concurrent requests.
type Service struct {
	extractor *extract.Extractor
	store     store.Store
	logger    *slog.Logger
}

// NewService wires the analysis pipeline.
func NewService(extractor *extract.Extractor, st store.Store, logger *slog.Logger) *Service {
	return &Service{extractor: extractor, store: st, logger: logger}
}

// Analyze runs one full analysis of the pasted source. model may be empty to
// use the configured default. All errors are terminal for the submission;
// nothing retries.
func (s *Service) Analyze(ctx context.Context, source, model string) (*store.Analysis, error) {
	id := uuid.New().String()
	ctx = logging.WithAnalysisID(ctx, id)
	if model == "" {
		model = s.extractor.DefaultModel()
	}

	graph, err := s.extractor.Extract(ctx, source, model)
	if err != nil {
		s.logger.WarnContext(ctx, "extraction failed", "error", err)
		return nil, err
	}

	dm, err := diagram.Build(graph)
	if err != nil {
		s.logger.WarnContext(ctx, "diagram build failed", "error", err)
		return nil, err
	}

	png, err := diagram.RenderImage(dm)
	if err != nil {
		s.logger.WarnContext(ctx, "diagram render failed", "error", err)
		return nil, err
	}

	a := &store.Analysis{
		ID:          id,
		Model:       model,
		Source:      source,
		Graph:       *graph,
		Explanation: graph.Explanation,
		Mermaid:     diagram.RenderMermaid(dm),
		PNG:         png,
		CreatedAt:   time.Now().UTC(),
	}

	if err := s.store.SaveAnalysis(ctx, a); err != nil {
		// The user already has a result; losing the history row shouldn't
		// fail the submission.
		s.logger.ErrorContext(ctx, "save analysis failed", "error", err)
	}

	s.logger.InfoContext(ctx, "analysis completed",
		"nodes", len(graph.Nodes), "edges", len(graph.Edges), "png_bytes", len(png))
	return a, nil
}

// Get returns a stored analysis by ID.
func (s *Service) Get(ctx context.Context, id string) (*store.Analysis, error) {
	return s.store.GetAnalysis(ctx, id)
}

// List returns stored analyses newest-first.
func (s *Service) List(ctx context.Context, filter store.AnalysisFilter) ([]*store.Analysis, error) {
	return s.store.ListAnalyses(ctx, filter)
}

// Rerender rebuilds the PNG for a stored analysis from its graph. Rendering
// is a pure function of the graph, so the result is structurally equivalent
// to the original submission's diagram.
func (s *Service) Rerender(ctx context.Context, id string) ([]byte, error) {
	a, err := s.store.GetAnalysis(ctx, id)
	if err != nil {
		return nil, err
	}
	if len(a.PNG) > 0 {
		return a.PNG, nil
	}
	dm, err := diagram.Build(&a.Graph)
	if err != nil {
		return nil, err
	}
	return diagram.RenderImage(dm)
}
