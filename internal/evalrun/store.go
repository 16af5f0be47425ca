package evalrun

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"geotagger/pkg/evaluator"
)

// Run is one completed evaluation pass: its config snapshot (the
// resolved YAML as loaded, not re-parsed here), the document-ranking
// report, and/or the toponym-disambiguation report -- a run may carry
// either or both, since a caller can run document-only or
// toponym-only evaluation.
type Run struct {
	ID             string
	Label          string
	StartedAt      time.Time
	FinishedAt     time.Time
	ConfigSnapshot string
	DocumentReport *evaluator.RankReport
	ToponymReport  *evaluator.ToponymReport
	Notes          string
}

// Store persists and retrieves Runs.
type Store struct {
	db *DB
}

// NewStore wraps db as a Store.
func NewStore(db *DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun inserts or replaces run, assigning a fresh ID via
// github.com/google/uuid when run.ID is empty.
func (s *Store) SaveRun(ctx context.Context, run *Run) error {
	if run.ID == "" {
		run.ID = uuid.NewString()
	}

	docJSON, err := marshalOptional(run.DocumentReport)
	if err != nil {
		return fmt.Errorf("marshal document report: %w", err)
	}
	topJSON, err := marshalOptional(run.ToponymReport)
	if err != nil {
		return fmt.Errorf("marshal toponym report: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO eval_runs (run_id, label, started_at, finished_at, config_snapshot, document_report, toponym_report, notes)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id) DO UPDATE SET
			label=excluded.label,
			started_at=excluded.started_at,
			finished_at=excluded.finished_at,
			config_snapshot=excluded.config_snapshot,
			document_report=excluded.document_report,
			toponym_report=excluded.toponym_report,
			notes=excluded.notes`,
		run.ID, run.Label, run.StartedAt, run.FinishedAt, run.ConfigSnapshot, docJSON, topJSON, run.Notes,
	)
	if err != nil {
		return fmt.Errorf("save eval run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun returns the run identified by id, or (nil, nil) if no such
// run exists.
func (s *Store) GetRun(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT run_id, label, started_at, finished_at, config_snapshot, document_report, toponym_report, notes
		 FROM eval_runs WHERE run_id = ?`, id)

	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get eval run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns every run, most recently started first.
func (s *Store) ListRuns(ctx context.Context) ([]*Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT run_id, label, started_at, finished_at, config_snapshot, document_report, toponym_report, notes
		 FROM eval_runs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list eval runs: %w", err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan eval run: %w", err)
		}
		out = append(out, run)
	}
	return out, rows.Err()
}

// DeleteRun removes the run identified by id, if present.
func (s *Store) DeleteRun(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM eval_runs WHERE run_id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete eval run %s: %w", id, err)
	}
	return nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var run Run
	var docJSON, topJSON sql.NullString
	var notes sql.NullString

	if err := row.Scan(
		&run.ID, &run.Label, &run.StartedAt, &run.FinishedAt,
		&run.ConfigSnapshot, &docJSON, &topJSON, &notes,
	); err != nil {
		return nil, err
	}

	if notes.Valid {
		run.Notes = notes.String
	}
	if docJSON.Valid && docJSON.String != "" {
		var report evaluator.RankReport
		if err := json.Unmarshal([]byte(docJSON.String), &report); err != nil {
			return nil, fmt.Errorf("unmarshal document report: %w", err)
		}
		run.DocumentReport = &report
	}
	if topJSON.Valid && topJSON.String != "" {
		var report evaluator.ToponymReport
		if err := json.Unmarshal([]byte(topJSON.String), &report); err != nil {
			return nil, fmt.Errorf("unmarshal toponym report: %w", err)
		}
		run.ToponymReport = &report
	}

	return &run, nil
}

func marshalOptional[T any](v *T) (sql.NullString, error) {
	if v == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return sql.NullString{}, err
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}
