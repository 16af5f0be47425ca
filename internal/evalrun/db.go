// Package evalrun persists a summary of every evaluation run (document
// and toponym reports, config snapshot, timing) to a local SQLite
// database so a later invocation can list, compare, or re-render past
// runs without re-scoring the corpus: WAL mode, a single-connection
// pool, migrate-on-Open, and a JSON-in-a-TEXT-column habit for nested
// report structures.
package evalrun

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps the run-summary sqlite connection.
type DB struct {
	*sql.DB
}

// Open opens (creating if absent) the sqlite database at path and
// runs its migration.
func Open(path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create eval run db dir: %w", err)
		}
	}

	sqlDB, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open eval run db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping eval run db: %w", err)
	}

	if _, err := sqlDB.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := sqlDB.Exec("PRAGMA busy_timeout=30000;"); err != nil {
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	sqlDB.SetMaxOpenConns(1)

	d := &DB{sqlDB}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate eval run db: %w", err)
	}
	return d, nil
}

func (d *DB) migrate() error {
	const schema = `CREATE TABLE IF NOT EXISTS eval_runs (
		run_id TEXT PRIMARY KEY,
		label TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		config_snapshot TEXT,
		document_report TEXT,
		toponym_report TEXT,
		notes TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);`
	_, err := d.Exec(schema)
	return err
}
