package panel

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"

	"github.com/flowlens/flowlens/internal/logging"
	"github.com/flowlens/flowlens/internal/query"
	"github.com/flowlens/flowlens/internal/store"
)

//go:embed templates static
var content embed.FS

// Analyzer is the pipeline surface the panel drives.
type Analyzer interface {
	Analyze(ctx context.Context, source, model string) (*store.Analysis, error)
	Get(ctx context.Context, id string) (*store.Analysis, error)
	List(ctx context.Context, filter store.AnalysisFilter) ([]*store.Analysis, error)
	Rerender(ctx context.Context, id string) ([]byte, error)
}

// ModelLister discovers the model IDs offered by the upstream endpoint.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

// PanelDeps holds the dependencies for the panel server.
type PanelDeps struct {
	Analyzer Analyzer
	Models   ModelLister
	Queries  *query.Engine
	Logger   *slog.Logger
}

// PanelServer serves the paste-and-submit UI and the JSON API.
type PanelServer struct {
	deps  PanelDeps
	pages map[string]*template.Template
}

// NewPanelServer creates a new PanelServer with parsed templates.
func NewPanelServer(deps PanelDeps) *PanelServer {
	if deps.Logger == nil {
		deps.Logger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}
	if deps.Queries == nil {
		deps.Queries = query.NewEngine()
	}

	funcMap := template.FuncMap{
		"json":     toJSON,
		"timeAgo":  timeAgo,
		"truncate": truncate,
		"kindTag":  kindBadge,
	}

	base := template.Must(
		template.New("").Funcs(funcMap).ParseFS(content, "templates/base.html"),
	)

	// Build per-page template sets. Each page clones the shared set
	// so that its {{define "content"}} doesn't collide with others.
	pageFiles := []string{
		"index.html",
		"analyses.html",
		"analysis_detail.html",
	}

	pages := make(map[string]*template.Template, len(pageFiles))
	for _, pf := range pageFiles {
		clone := template.Must(base.Clone())
		pages[pf] = template.Must(clone.ParseFS(content, "templates/"+pf))
	}

	return &PanelServer{
		deps:  deps,
		pages: pages,
	}
}

// Handler returns the HTTP handler for all panel routes.
func (s *PanelServer) Handler() http.Handler {
	mux := http.NewServeMux()

	// Static files.
	staticFS, _ := fs.Sub(content, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))

	// Pages.
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /analyses", s.handleAnalyses)
	mux.HandleFunc("GET /analyses/{id}", s.handleAnalysisDetail)

	// API.
	mux.HandleFunc("POST /api/analyze", s.handleAnalyze)
	mux.HandleFunc("GET /api/models", s.handleModels)
	mux.HandleFunc("GET /api/analyses/{id}/diagram.png", s.handleDiagramPNG)
	mux.HandleFunc("GET /api/analyses/{id}/json", s.handleAnalysisJSON)

	return withRequestID(mux)
}

// withRequestID tags every request with a correlation ID for logging.
func withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := logging.WithRequestID(r.Context(), uuid.New().String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// renderPage executes a page template by name.
func (s *PanelServer) renderPage(w http.ResponseWriter, page string, data any) {
	tmpl, ok := s.pages[page]
	if !ok {
		s.deps.Logger.Error("template not found", "page", page)
		http.Error(w, fmt.Sprintf("template %q not found", page), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base", data); err != nil {
		s.deps.Logger.Error("template render error", "page", page, "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
