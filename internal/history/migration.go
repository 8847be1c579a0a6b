package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// Migration represents one schema revision.
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// migrations lists every schema revision in order. Version 2 is applied
// programmatically because SQLite's ALTER TABLE ADD COLUMN is not
// idempotent.
var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema with batches and batch_files tables",
		SQL: `
CREATE TABLE IF NOT EXISTS batches (
	id TEXT PRIMARY KEY,
	started_at TIMESTAMP NOT NULL,
	finished_at TIMESTAMP NOT NULL,
	dest_path TEXT NOT NULL,
	pattern TEXT NOT NULL,
	policy TEXT NOT NULL DEFAULT '',
	copied INTEGER NOT NULL DEFAULT 0,
	ignored INTEGER NOT NULL DEFAULT 0,
	vanished INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_batches_started_at ON batches(started_at DESC);

CREATE TABLE IF NOT EXISTS batch_files (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	batch_id TEXT NOT NULL,
	source_path TEXT NOT NULL,
	final_name TEXT,
	outcome TEXT NOT NULL,
	FOREIGN KEY (batch_id) REFERENCES batches(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_batch_files_batch_id ON batch_files(batch_id);
`,
	},
	{
		Version:     2,
		Description: "Add error column to batches for interrupted passes",
		SQL:         "", // applied via addColumnIfNotExistsTx
	},
}

// ApplyMigrations brings the schema up to the latest version. Each pending
// migration runs in its own serializable transaction so concurrent openers
// cannot interleave.
func (s *Store) ApplyMigrations(ctx context.Context) error {
	if err := s.ensureSchemaVersionTable(ctx); err != nil {
		return fmt.Errorf("ensure schema_version table: %w", err)
	}

	applied, err := s.appliedVersions(ctx)
	if err != nil {
		return fmt.Errorf("get applied versions: %w", err)
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := s.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("apply migration %d (%s): %w", m.Version, m.Description, err)
		}
	}
	return nil
}

// SchemaVersion returns the highest applied migration version, 0 when the
// database is fresh.
func (s *Store) SchemaVersion(ctx context.Context) (int, error) {
	if err := s.ensureSchemaVersionTable(ctx); err != nil {
		return 0, err
	}
	var version sql.NullInt64
	err := s.db.QueryRowContext(ctx, `SELECT MAX(version) FROM schema_version`).Scan(&version)
	if err != nil {
		return 0, fmt.Errorf("query schema version: %w", err)
	}
	if !version.Valid {
		return 0, nil
	}
	return int(version.Int64), nil
}

func (s *Store) ensureSchemaVersionTable(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func (s *Store) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT version FROM schema_version`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var v int
		if err := rows.Scan(&v); err != nil {
			return nil, err
		}
		applied[v] = true
	}
	return applied, rows.Err()
}

func (s *Store) applyMigration(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	switch {
	case m.SQL != "":
		if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
			return fmt.Errorf("execute migration SQL: %w", err)
		}
	case m.Version == 2:
		if err := addColumnIfNotExistsTx(ctx, tx, "batches", "error", "TEXT"); err != nil {
			return err
		}
	default:
		return fmt.Errorf("migration %d has no SQL and no programmatic step", m.Version)
	}

	if err := recordMigrationTx(ctx, tx, m.Version); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}
	return tx.Commit()
}

func recordMigrationTx(ctx context.Context, tx *sql.Tx, version int) error {
	_, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO schema_version (version) VALUES (?)`, version)
	return err
}

// addColumnIfNotExistsTx adds a column only when PRAGMA table_info does not
// already list it. A concurrent adder racing past the check is tolerated.
func addColumnIfNotExistsTx(ctx context.Context, tx *sql.Tx, table, column, colType string) error {
	rows, err := tx.QueryContext(ctx, fmt.Sprintf(`PRAGMA table_info(%s)`, table))
	if err != nil {
		return fmt.Errorf("query table info for %s: %w", table, err)
	}
	defer rows.Close()

	exists := false
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dfltValue interface{}
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dfltValue, &pk); err != nil {
			return fmt.Errorf("scan table info row: %w", err)
		}
		if name == column {
			exists = true
			break
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate table info rows: %w", err)
	}
	if exists {
		return nil
	}

	alter := fmt.Sprintf(`ALTER TABLE %s ADD COLUMN %s %s`, table, column, colType)
	if _, err := tx.ExecContext(ctx, alter); err != nil {
		if strings.Contains(err.Error(), "duplicate column name") {
			return nil
		}
		return fmt.Errorf("add column %s to %s: %w", column, table, err)
	}
	return nil
}
