package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/tursodatabase/go-libsql"

	"github.com/flowlens/flowlens/pkg/schema"
)

// LibSQLStore implements the Store interface using libSQL (embedded SQLite fork).
type LibSQLStore struct {
	db *sql.DB
}

// NewLibSQLStore opens a libSQL database at the given path and returns a Store.
// The path should be a file URI, e.g. "file:/path/to/db.db".
func NewLibSQLStore(dbPath string) (*LibSQLStore, error) {
	db, err := sql.Open("libsql", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open libsql: %w", err)
	}
	db.SetMaxOpenConns(1)

	// Apply connection-level PRAGMAs. Some PRAGMAs return rows so we use QueryRow.
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, p := range pragmas {
		var result string
		_ = db.QueryRow(p).Scan(&result)
	}

	return &LibSQLStore{db: db}, nil
}

// Close closes the database.
func (s *LibSQLStore) Close() error { return s.db.Close() }

// Migrate runs all pending database migrations.
func (s *LibSQLStore) Migrate(ctx context.Context) error {
	return runMigrations(ctx, s.db)
}

// Vacuum runs VACUUM on the database.
func (s *LibSQLStore) Vacuum(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, "VACUUM")
	return err
}

func (s *LibSQLStore) SaveAnalysis(ctx context.Context, a *Analysis) error {
	graphJSON, err := json.Marshal(a.Graph)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "marshal graph").WithCause(err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO analyses (id, model, source, graph, explanation, mermaid, png, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Model, a.Source, string(graphJSON), a.Explanation, a.Mermaid,
		a.PNG, timeOrNow(a.CreatedAt),
	)
	if err != nil {
		return schema.NewError(schema.ErrCodeStore, "insert analysis").WithCause(err)
	}
	return nil
}

func (s *LibSQLStore) GetAnalysis(ctx context.Context, id string) (*Analysis, error) {
	a := &Analysis{}
	var graphJSON string
	err := s.db.QueryRowContext(ctx,
		`SELECT id, model, source, graph, explanation, mermaid, png, created_at
		 FROM analyses WHERE id = ?`, id,
	).Scan(&a.ID, &a.Model, &a.Source, &graphJSON, &a.Explanation, &a.Mermaid, &a.PNG, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, schema.NewErrorf(schema.ErrCodeNotFound, "analysis %q not found", id)
	}
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "query analysis").WithCause(err)
	}
	if err := json.Unmarshal([]byte(graphJSON), &a.Graph); err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "unmarshal stored graph").WithCause(err)
	}
	return a, nil
}

func (s *LibSQLStore) ListAnalyses(ctx context.Context, filter AnalysisFilter) ([]*Analysis, error) {
	query := `SELECT id, model, source, graph, explanation, mermaid, created_at FROM analyses`
	var conds []string
	var args []any

	if filter.Model != "" {
		conds = append(conds, "model = ?")
		args = append(args, filter.Model)
	}
	if filter.Since != nil {
		conds = append(conds, "created_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	query += " LIMIT ?"
	args = append(args, limit)
	if filter.Offset > 0 {
		query += " OFFSET ?"
		args = append(args, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, schema.NewError(schema.ErrCodeStore, "list analyses").WithCause(err)
	}
	defer rows.Close()

	var out []*Analysis
	for rows.Next() {
		a := &Analysis{}
		var graphJSON string
		if err := rows.Scan(&a.ID, &a.Model, &a.Source, &graphJSON, &a.Explanation, &a.Mermaid, &a.CreatedAt); err != nil {
			return nil, schema.NewError(schema.ErrCodeStore, "scan analysis").WithCause(err)
		}
		if err := json.Unmarshal([]byte(graphJSON), &a.Graph); err != nil {
			return nil, schema.NewError(schema.ErrCodeStore, "unmarshal stored graph").WithCause(err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (s *LibSQLStore) DeleteAnalysesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM analyses WHERE created_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, schema.NewError(schema.ErrCodeStore, "delete analyses").WithCause(err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

// timeOrNow returns t, or the current UTC time when t is zero.
func timeOrNow(t time.Time) time.Time {
	if t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}
