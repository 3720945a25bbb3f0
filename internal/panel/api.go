package panel

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/flowlens/flowlens/internal/extract"
	"github.com/flowlens/flowlens/internal/store"
	"github.com/flowlens/flowlens/pkg/schema"
)

// analyzeResponse is the API shape of a completed analysis. The PNG travels
// over its own endpoint; this payload stays text-only.
type analyzeResponse struct {
	ID          string           `json:"id"`
	Model       string           `json:"model,omitempty"`
	Graph       schema.FlowGraph `json:"graph"`
	Explanation string           `json:"explanation"`
	Mermaid     string           `json:"mermaid"`
	DiagramURL  string           `json:"diagram_url"`
}

// handleAnalyze runs the full pipeline for one pasted snippet.
func (s *PanelServer) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var body struct {
		Source string `json:"source"`
		Model  string `json:"model"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	a, err := s.deps.Analyzer.Analyze(ctx, body.Source, body.Model)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, analyzeResponse{
		ID:          a.ID,
		Model:       a.Model,
		Graph:       a.Graph,
		Explanation: a.Explanation,
		Mermaid:     a.Mermaid,
		DiagramURL:  "/api/analyses/" + a.ID + "/diagram.png",
	})
}

// handleModels returns the upstream model list, falling back to the static
// defaults when discovery fails.
func (s *PanelServer) handleModels(w http.ResponseWriter, r *http.Request) {
	models, fallback := s.availableModels(r.Context())
	writeJSON(w, http.StatusOK, map[string]any{
		"models":   models,
		"fallback": fallback,
	})
}

// handleDiagramPNG serves the rendered flowchart for a stored analysis.
func (s *PanelServer) handleDiagramPNG(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	png, err := s.deps.Analyzer.Rerender(ctx, id)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(png)
}

// handleAnalysisJSON serves the raw graph JSON of a stored analysis. An
// optional "filter" query is evaluated as a jq expression over the document
// ({"graph": ..., "explanation": ..., "model": ...}).
func (s *PanelServer) handleAnalysisJSON(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	a, err := s.deps.Analyzer.Get(ctx, id)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	doc, err := toQueryDoc(a)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "could not encode analysis")
		return
	}

	result, err := s.deps.Queries.Evaluate(ctx, r.URL.Query().Get("filter"), doc)
	if err != nil {
		writeFlowError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// toQueryDoc converts a stored analysis into a jq-compatible document
// (maps and slices only, no struct types).
func toQueryDoc(a *store.Analysis) (any, error) {
	raw, err := json.Marshal(map[string]any{
		"id":          a.ID,
		"model":       a.Model,
		"graph":       a.Graph,
		"explanation": a.Explanation,
		"created_at":  a.CreatedAt,
	})
	if err != nil {
		return nil, err
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

// availableModels returns upstream model IDs, or the static default list
// (fallback=true) when discovery fails.
func (s *PanelServer) availableModels(ctx context.Context) ([]string, bool) {
	models, err := s.deps.Models.ListModels(ctx)
	if err != nil || len(models) == 0 {
		if err != nil {
			s.deps.Logger.Warn("model discovery failed, using defaults", "error", err)
		}
		return extract.DefaultModels, true
	}
	return models, false
}
