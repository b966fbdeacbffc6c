package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"bindgen/internal/emit"

	_ "modernc.org/sqlite"
)

const (
	driverName  = "sqlite"
	maxAttempts = 5
)

// Store persists generation runs and their skipped nodes so unclassified
// kinds can be audited across runs.
type Store struct {
	path string
	db   *sql.DB
	mu   sync.Mutex
}

func Open(path string) (*Store, error) {
	cleanPath := strings.TrimSpace(path)
	if cleanPath == "" {
		return nil, fmt.Errorf("history path must not be empty")
	}
	if info, err := os.Stat(cleanPath); err == nil && info.IsDir() {
		return nil, fmt.Errorf("history path %q is a directory, expected file", cleanPath)
	}

	dir := filepath.Dir(cleanPath)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory %q: %w", dir, err)
		}
	}

	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(2000)&_pragma=journal_mode(WAL)&_pragma=foreign_keys(ON)", cleanPath)
	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite history %q: %w", cleanPath, err)
	}
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite history %q: %w", cleanPath, err)
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize sqlite schema %q: %w", cleanPath, err)
	}

	return &Store{path: cleanPath, db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// SaveRun records run and its skipped nodes in one transaction.
func (s *Store) SaveRun(run Run, skipped []emit.SkippedRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if run.ID == "" {
		run.ID = NewRunID()
	}
	if strings.TrimSpace(run.ProjectKey) == "" {
		run.ProjectKey = "default"
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}
	if run.Status == "" {
		run.Status = StatusOK
	}
	run.SkippedCount = len(skipped)

	return s.withRetry("save run", func() error {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}

		_, err = tx.Exec(`
INSERT INTO runs (
  run_id, project_key, source, module, header, commit_hash, started_at_utc,
  duration_ms, fragment_count, skipped_count, status, error_code
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			run.ID,
			run.ProjectKey,
			run.Source,
			run.Module,
			run.Header,
			run.CommitHash,
			run.StartedAt.UTC().Format(time.RFC3339Nano),
			run.Duration.Milliseconds(),
			run.FragmentCount,
			run.SkippedCount,
			run.Status,
			run.ErrorCode,
		)
		if err != nil {
			_ = tx.Rollback()
			return err
		}

		stmt, err := tx.Prepare(`INSERT INTO skipped_nodes (run_id, seq, line, col, kind, name, reason) VALUES (?, ?, ?, ?, ?, ?, ?)`)
		if err != nil {
			_ = tx.Rollback()
			return err
		}
		defer stmt.Close()

		for i, rec := range skipped {
			if _, err := stmt.Exec(run.ID, i, rec.Line, rec.Column, rec.Kind, rec.Name, string(rec.Reason)); err != nil {
				_ = tx.Rollback()
				return err
			}
		}
		return tx.Commit()
	})
}

// LoadRuns returns the runs of projectKey, newest first. An empty source
// matches every source; limit <= 0 returns all rows.
func (s *Store) LoadRuns(projectKey, source string, limit int) ([]Run, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(projectKey) == "" {
		projectKey = "default"
	}

	query := `
SELECT run_id, project_key, source, module, header, commit_hash, started_at_utc,
  duration_ms, fragment_count, skipped_count, status, error_code
FROM runs
WHERE project_key = ?`
	args := []any{projectKey}
	if source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}
	query += " ORDER BY started_at_utc DESC, run_id ASC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	var rows *sql.Rows
	err := s.withRetry("load runs", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, args...)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		var (
			run        Run
			startedRaw string
			durationMS int64
		)
		if err := rows.Scan(
			&run.ID,
			&run.ProjectKey,
			&run.Source,
			&run.Module,
			&run.Header,
			&run.CommitHash,
			&startedRaw,
			&durationMS,
			&run.FragmentCount,
			&run.SkippedCount,
			&run.Status,
			&run.ErrorCode,
		); err != nil {
			return nil, fmt.Errorf("scan run row: %w", err)
		}
		started, err := time.Parse(time.RFC3339Nano, startedRaw)
		if err != nil {
			return nil, fmt.Errorf("parse run timestamp %q: %w", startedRaw, err)
		}
		run.StartedAt = started.UTC()
		run.Duration = time.Duration(durationMS) * time.Millisecond
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate run rows: %w", err)
	}
	return runs, nil
}

// LoadSkipped returns the skipped records of one run in emission order.
func (s *Store) LoadSkipped(runID string) ([]emit.SkippedRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var rows *sql.Rows
	err := s.withRetry("load skipped", func() error {
		var qErr error
		rows, qErr = s.db.Query(`SELECT line, col, kind, name, reason FROM skipped_nodes WHERE run_id = ? ORDER BY seq ASC`, runID)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]emit.SkippedRecord, 0)
	for rows.Next() {
		var (
			rec    emit.SkippedRecord
			reason string
		)
		if err := rows.Scan(&rec.Line, &rec.Column, &rec.Kind, &rec.Name, &reason); err != nil {
			return nil, fmt.Errorf("scan skipped row: %w", err)
		}
		rec.Reason = emit.Reason(reason)
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate skipped rows: %w", err)
	}
	return out, nil
}

// TopSkippedKinds ranks node kinds by how often they were skipped in the
// latest run of each source.
func (s *Store) TopSkippedKinds(projectKey string, limit int) ([]KindCount, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(projectKey) == "" {
		projectKey = "default"
	}
	if limit <= 0 {
		limit = 20
	}

	query := `
WITH latest AS (
  SELECT r.run_id FROM runs r
  WHERE r.project_key = ?
    AND r.started_at_utc = (
      SELECT MAX(r2.started_at_utc) FROM runs r2
      WHERE r2.project_key = r.project_key AND r2.source = r.source
    )
)
SELECT s.kind, s.reason, COUNT(*) AS n
FROM skipped_nodes s JOIN latest l ON s.run_id = l.run_id
GROUP BY s.kind, s.reason
ORDER BY n DESC, s.kind ASC, s.reason ASC
LIMIT ?`

	var rows *sql.Rows
	err := s.withRetry("top skipped kinds", func() error {
		var qErr error
		rows, qErr = s.db.Query(query, projectKey, limit)
		return qErr
	})
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]KindCount, 0)
	for rows.Next() {
		var kc KindCount
		if err := rows.Scan(&kc.Kind, &kc.Reason, &kc.Count); err != nil {
			return nil, fmt.Errorf("scan kind count: %w", err)
		}
		out = append(out, kc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate kind counts: %w", err)
	}
	return out, nil
}

func (s *Store) withRetry(op string, fn func() error) error {
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !isLockError(err) || attempt == maxAttempts {
			break
		}
		time.Sleep(time.Duration(attempt*25) * time.Millisecond)
	}
	return fmt.Errorf("%s: %w", op, lastErr)
}

func isLockError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "busy")
}
