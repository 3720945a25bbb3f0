package analysis

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flowlens/flowlens/internal/extract"
	"github.com/flowlens/flowlens/internal/store"
	"github.com/flowlens/flowlens/internal/validation"
	"github.com/flowlens/flowlens/pkg/schema"
)

type fakeChatClient struct {
	response string
	err      error
}

func (f *fakeChatClient) Complete(context.Context, string, string, string, float32) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeChatClient) ListModels(context.Context) ([]string, error) {
	return extract.DefaultModels, nil
}

type memStore struct {
	analyses map[string]*store.Analysis
	saveErr  error
}

func newMemStore() *memStore {
	return &memStore{analyses: make(map[string]*store.Analysis)}
}

func (m *memStore) SaveAnalysis(_ context.Context, a *store.Analysis) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.analyses[a.ID] = a
	return nil
}

func (m *memStore) GetAnalysis(_ context.Context, id string) (*store.Analysis, error) {
	a, ok := m.analyses[id]
	if !ok {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "analysis %q not found", id)
	}
	return a, nil
}

func (m *memStore) ListAnalyses(context.Context, store.AnalysisFilter) ([]*store.Analysis, error) {
	var out []*store.Analysis
	for _, a := range m.analyses {
		out = append(out, a)
	}
	return out, nil
}

func (m *memStore) DeleteAnalysesBefore(context.Context, time.Time) (int64, error) { return 0, nil }
func (m *memStore) Migrate(context.Context) error                                  { return nil }
func (m *memStore) Vacuum(context.Context) error                                   { return nil }
func (m *memStore) Close() error                                                   { return nil }

const linearResponse = `{
  "nodes": [
    {"id": "s", "kind": "start", "label": "Start"},
    {"id": "p", "kind": "process", "label": "print greeting"},
    {"id": "e", "kind": "end", "label": "End"}
  ],
  "edges": [
    {"from_id": "s", "to_id": "p"},
    {"from_id": "p", "to_id": "e"}
  ],
  "explanation": "Prints a greeting and exits."
}`

func newTestService(t *testing.T, client extract.ChatClient, st store.Store) *Service {
	t.Helper()
	validator, err := validation.NewFlowGraphValidator()
	require.NoError(t, err)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	extractor := extract.NewExtractor(client, validator, "default-model", logger)
	return NewService(extractor, st, logger)
}

func TestAnalyzePipeline(t *testing.T) {
	st := newMemStore()
	svc := newTestService(t, &fakeChatClient{response: linearResponse}, st)

	a, err := svc.Analyze(context.Background(), "print('hello')", "")
	require.NoError(t, err)

	assert.NotEmpty(t, a.ID)
	assert.Equal(t, "default-model", a.Model)
	assert.Equal(t, "print('hello')", a.Source)
	assert.Equal(t, "Prints a greeting and exits.", a.Explanation)
	assert.Len(t, a.Graph.Nodes, 3)
	assert.Contains(t, a.Mermaid, "graph TD")
	require.Greater(t, len(a.PNG), 4)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, a.PNG[:4])
	assert.False(t, a.CreatedAt.IsZero())

	stored, err := svc.Get(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.ID, stored.ID)
}

func TestAnalyzeExtractionFailurePropagates(t *testing.T) {
	st := newMemStore()
	svc := newTestService(t, &fakeChatClient{response: "no json here"}, st)

	_, err := svc.Analyze(context.Background(), "print('hello')", "")
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeMalformedResponse, schema.ErrorCode(err))
	assert.Empty(t, st.analyses)
}

func TestAnalyzeSurvivesStoreFailure(t *testing.T) {
	st := newMemStore()
	st.saveErr = schema.NewError(schema.ErrCodeStore, "disk full")
	svc := newTestService(t, &fakeChatClient{response: linearResponse}, st)

	a, err := svc.Analyze(context.Background(), "print('hello')", "")
	require.NoError(t, err, "losing the history row must not fail the submission")
	assert.NotEmpty(t, a.PNG)
}

func TestRerenderUsesStoredPNG(t *testing.T) {
	st := newMemStore()
	svc := newTestService(t, &fakeChatClient{response: linearResponse}, st)

	a, err := svc.Analyze(context.Background(), "print('hello')", "")
	require.NoError(t, err)

	png, err := svc.Rerender(context.Background(), a.ID)
	require.NoError(t, err)
	assert.Equal(t, a.PNG, png)
}

func TestRerenderRebuildsWhenPNGMissing(t *testing.T) {
	st := newMemStore()
	svc := newTestService(t, &fakeChatClient{response: linearResponse}, st)

	a, err := svc.Analyze(context.Background(), "print('hello')", "")
	require.NoError(t, err)
	st.analyses[a.ID].PNG = nil

	png, err := svc.Rerender(context.Background(), a.ID)
	require.NoError(t, err)
	require.Greater(t, len(png), 4)
	assert.Equal(t, []byte{0x89, 0x50, 0x4E, 0x47}, png[:4])
}

func TestRerenderNotFound(t *testing.T) {
	st := newMemStore()
	svc := newTestService(t, &fakeChatClient{response: linearResponse}, st)

	_, err := svc.Rerender(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, schema.ErrCodeNotFound, schema.ErrorCode(err))
}
