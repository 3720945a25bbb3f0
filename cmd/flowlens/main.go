package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/flowlens/flowlens/internal/analysis"
	"github.com/flowlens/flowlens/internal/extract"
	"github.com/flowlens/flowlens/internal/logging"
	"github.com/flowlens/flowlens/internal/panel"
	"github.com/flowlens/flowlens/internal/query"
	"github.com/flowlens/flowlens/internal/retention"
	"github.com/flowlens/flowlens/internal/store"
	"github.com/flowlens/flowlens/internal/validation"
	flowmcp "github.com/flowlens/flowlens/pkg/mcp"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "flowlens:", err)
		os.Exit(1)
	}
}

func run() error {
	// Local development convenience; deployments set real env vars.
	_ = godotenv.Load()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logger := newLogger(cfg.LogLevel)

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.NewLibSQLStore("file:" + cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := st.Migrate(ctx); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	validator, err := validation.NewFlowGraphValidator()
	if err != nil {
		return fmt.Errorf("compile flowgraph schema: %w", err)
	}

	client := extract.NewOpenRouterClient(cfg.APIKey, cfg.BaseURL, cfg.requestTimeout())
	extractor := extract.NewExtractor(client, validator, cfg.Model, logger)
	svc := analysis.NewService(extractor, st, logger)

	if cfg.MCP {
		logger.Info("serving MCP over stdio")
		srv := flowmcp.NewFlowlensServer(flowmcp.FlowlensServerDeps{
			Analyzer: svc,
			Logger:   logger,
		})
		return srv.Serve(ctx)
	}

	pruner := retention.NewPruner(st, cfg.PruneSchedule, cfg.retainFor(), logger)
	if err := pruner.Start(ctx); err != nil {
		return err
	}
	defer pruner.Stop()

	ps := panel.NewPanelServer(panel.PanelDeps{
		Analyzer: svc,
		Models:   client,
		Queries:  query.NewEngine(),
		Logger:   logger,
	})

	httpSrv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           ps.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("flowlens listening", "addr", cfg.ListenAddr)
		errCh <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

// newLogger builds the process logger with correlation ID injection.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	inner := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	return slog.New(logging.NewCorrelationHandler(inner))
}
