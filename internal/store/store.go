package store

import (
	"context"
	"time"
)

// Store defines the analysis history persistence contract.
// All implementations must be safe for concurrent use.
type Store interface {
	SaveAnalysis(ctx context.Context, a *Analysis) error
	GetAnalysis(ctx context.Context, id string) (*Analysis, error)
	// ListAnalyses returns analyses newest-first. PNG bytes are omitted from
	// list results; fetch a single analysis when the image is needed.
	ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]*Analysis, error)
	// DeleteAnalysesBefore removes rows older than the cutoff and reports how
	// many were deleted.
	DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error)

	// Maintenance
	Migrate(ctx context.Context) error
	Vacuum(ctx context.Context) error

	// Lifecycle
	Close() error
}
