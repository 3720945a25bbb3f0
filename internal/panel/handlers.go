package panel

import (
	"net/http"

	"github.com/flowlens/flowlens/internal/store"
)

// --- Page data types ---

type pageData struct {
	Title  string
	Active string
}

type indexData struct {
	pageData
	Models        []string
	ModelFallback bool
}

type analysesData struct {
	pageData
	Analyses []*store.Analysis
	Model    string
	Limit    int
	Offset   int
}

type analysisDetailData struct {
	pageData
	Analysis  *store.Analysis
	GraphJSON string
}

// --- Page handlers ---

func (s *PanelServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	models, fallback := s.availableModels(r.Context())

	s.renderPage(w, "index.html", indexData{
		pageData:      pageData{Title: "Code Flow Visualizer", Active: "home"},
		Models:        models,
		ModelFallback: fallback,
	})
}

func (s *PanelServer) handleAnalyses(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	model := r.URL.Query().Get("model")
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)

	analyses, err := s.deps.Analyzer.List(ctx, store.AnalysisFilter{
		Model:  model,
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		s.deps.Logger.Error("list analyses failed", "error", err)
		analyses = nil
	}

	s.renderPage(w, "analyses.html", analysesData{
		pageData: pageData{Title: "Past Analyses", Active: "analyses"},
		Analyses: analyses,
		Model:    model,
		Limit:    limit,
		Offset:   offset,
	})
}

func (s *PanelServer) handleAnalysisDetail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	id := r.PathValue("id")

	a, err := s.deps.Analyzer.Get(ctx, id)
	if err != nil || a == nil {
		http.NotFound(w, r)
		return
	}

	s.renderPage(w, "analysis_detail.html", analysisDetailData{
		pageData:  pageData{Title: "Analysis", Active: "analyses"},
		Analysis:  a,
		GraphJSON: toJSON(a.Graph),
	})
}
