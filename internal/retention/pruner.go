package retention

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/flowlens/flowlens/internal/store"
)

// Pruner deletes analysis rows older than MaxAge on a cron schedule and
// vacuums afterwards. History is a convenience, not a system of record, so
// prune failures are logged and retried on the next firing, never escalated.
type Pruner struct {
	store    store.Store
	schedule string
	maxAge   time.Duration
	logger   *slog.Logger

	mu   sync.Mutex
	cron *cron.Cron
}

// NewPruner creates a Pruner. schedule is a standard 5-field cron expression;
// maxAge is how long completed analyses are kept.
func NewPruner(s store.Store, schedule string, maxAge time.Duration, logger *slog.Logger) *Pruner {
	return &Pruner{
		store:    s,
		schedule: schedule,
		maxAge:   maxAge,
		logger:   logger,
	}
}

// Start registers the cron entry and launches the scheduler.
func (p *Pruner) Start(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cron != nil {
		return fmt.Errorf("pruner already started")
	}

	c := cron.New()
	if _, err := c.AddFunc(p.schedule, func() { p.prune(ctx) }); err != nil {
		return fmt.Errorf("invalid prune schedule %q: %w", p.schedule, err)
	}
	c.Start()
	p.cron = c

	p.logger.Info("retention pruner started", "schedule", p.schedule, "max_age", p.maxAge.String())
	return nil
}

// Stop halts the scheduler and waits for a running prune to finish.
func (p *Pruner) Stop() {
	p.mu.Lock()
	c := p.cron
	p.cron = nil
	p.mu.Unlock()

	if c != nil {
		<-c.Stop().Done()
	}
}

// prune runs one retention pass.
func (p *Pruner) prune(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-p.maxAge)

	deleted, err := p.store.DeleteAnalysesBefore(ctx, cutoff)
	if err != nil {
		p.logger.Error("retention prune failed", "error", err)
		return
	}
	if deleted == 0 {
		return
	}

	if err := p.store.Vacuum(ctx); err != nil {
		p.logger.Warn("vacuum after prune failed", "error", err)
	}
	p.logger.Info("retention prune completed", "deleted", deleted, "cutoff", cutoff.Format(time.RFC3339))
}
