package store

import (
	"time"

	"github.com/flowlens/flowlens/pkg/schema"
)

// Analysis is one completed code-flow analysis: the submitted source, the
// validated graph the model produced, and the rendered artifacts. The
// in-flight FlowGraph handed between extractor and renderer stays
// request-scoped; rows here only record finished output.
type Analysis struct {
	ID          string           `json:"id"`
	Model       string           `json:"model"`
	Source      string           `json:"source"`
	Graph       schema.FlowGraph `json:"graph"`
	Explanation string           `json:"explanation"`
	Mermaid     string           `json:"mermaid"`
	PNG         []byte           `json:"-"`
	CreatedAt   time.Time        `json:"created_at"`
}

// AnalysisFilter narrows ListAnalyses queries.
type AnalysisFilter struct {
	Model  string
	Since  *time.Time
	Limit  int
	Offset int
}
