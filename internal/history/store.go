// Package history journals copy passes in SQLite so what was copied
// where, and under which generated name, can be audited long after the
// tracked list was cleared.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// ErrNotFound is returned when a batch id has no journal entry.
var ErrNotFound = errors.New("batch not found")

// Batch summarizes one copy pass, successful or not. Error is empty for
// clean passes.
type Batch struct {
	ID         string
	StartedAt  time.Time
	FinishedAt time.Time
	DestPath   string
	Pattern    string
	Policy     string
	Copied     int
	Ignored    int
	Vanished   int
	Error      string
}

// File records the fate of one tracked file within a batch.
type File struct {
	ID         int64
	BatchID    string
	SourcePath string
	FinalName  string
	Outcome    string
}

// Store manages the SQLite journal.
type Store struct {
	db     *sql.DB
	dbPath string
}

// NewStore opens (creating if needed) the journal at dbPath and brings its
// schema up to date. ":memory:" is supported for tests.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}
	return openAndInitStore(dbPath)
}

func openAndInitStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// busy_timeout must come first so the remaining pragmas wait on locks
	// instead of failing when another process is initializing the same
	// file.
	pragmas := []string{
		"PRAGMA busy_timeout=5000",
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if err := execWithRetry(db, pragma, 5, 10*time.Millisecond); err != nil {
			db.Close()
			return nil, fmt.Errorf("set %s: %w", pragma, err)
		}
	}

	store := &Store{db: db, dbPath: dbPath}
	if err := store.ApplyMigrations(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return store, nil
}

// execWithRetry retries a statement with exponential backoff on
// "database is locked" errors; anything else fails immediately.
func execWithRetry(db *sql.DB, stmt string, maxRetries int, baseDelay time.Duration) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		_, err := db.Exec(stmt)
		if err == nil {
			return nil
		}
		if !strings.Contains(err.Error(), "database is locked") {
			return err
		}
		lastErr = err
		time.Sleep(baseDelay * time.Duration(1<<attempt))
	}
	return lastErr
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// RecordBatch writes one pass and its per-file outcomes atomically. A
// missing batch id is assigned here; the caller reads it back from b.
func (s *Store) RecordBatch(ctx context.Context, b *Batch, files []File) error {
	if b.ID == "" {
		b.ID = uuid.New().String()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	batchQuery := `INSERT INTO batches
		(id, started_at, finished_at, dest_path, pattern, policy, copied, ignored, vanished, error)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, batchQuery,
		b.ID,
		b.StartedAt,
		b.FinishedAt,
		b.DestPath,
		b.Pattern,
		b.Policy,
		b.Copied,
		b.Ignored,
		b.Vanished,
		b.Error,
	); err != nil {
		return fmt.Errorf("insert batch: %w", err)
	}

	if len(files) > 0 {
		fileStmt, err := tx.PrepareContext(ctx, `INSERT INTO batch_files
			(batch_id, source_path, final_name, outcome)
			VALUES (?, ?, ?, ?)`)
		if err != nil {
			return fmt.Errorf("prepare file statement: %w", err)
		}
		defer fileStmt.Close()

		for _, f := range files {
			if _, err := fileStmt.ExecContext(ctx, b.ID, f.SourcePath, f.FinalName, f.Outcome); err != nil {
				return fmt.Errorf("insert batch file: %w", err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

const batchColumns = `id, started_at, finished_at, dest_path, pattern, policy,
	copied, ignored, vanished, error`

func scanBatch(row interface{ Scan(...any) error }) (*Batch, error) {
	b := &Batch{}
	var policy, errMsg sql.NullString
	if err := row.Scan(
		&b.ID,
		&b.StartedAt,
		&b.FinishedAt,
		&b.DestPath,
		&b.Pattern,
		&policy,
		&b.Copied,
		&b.Ignored,
		&b.Vanished,
		&errMsg,
	); err != nil {
		return nil, err
	}
	if policy.Valid {
		b.Policy = policy.String
	}
	if errMsg.Valid {
		b.Error = errMsg.String
	}
	return b, nil
}

// RecentBatches returns up to limit passes, newest first. limit <= 0
// returns everything.
func (s *Store) RecentBatches(ctx context.Context, limit int) ([]*Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query batches: %w", err)
	}
	defer rows.Close()

	var batches []*Batch
	for rows.Next() {
		b, err := scanBatch(rows)
		if err != nil {
			return nil, fmt.Errorf("scan batch row: %w", err)
		}
		batches = append(batches, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch rows: %w", err)
	}
	return batches, nil
}

// GetBatch returns one pass by id.
func (s *Store) GetBatch(ctx context.Context, id string) (*Batch, error) {
	query := `SELECT ` + batchColumns + ` FROM batches WHERE id = ?`
	b, err := scanBatch(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("query batch: %w", err)
	}
	return b, nil
}

// BatchFiles returns the per-file outcomes of one pass in copy order.
func (s *Store) BatchFiles(ctx context.Context, batchID string) ([]File, error) {
	query := `SELECT id, batch_id, source_path, final_name, outcome
		FROM batch_files WHERE batch_id = ? ORDER BY id ASC`

	rows, err := s.db.QueryContext(ctx, query, batchID)
	if err != nil {
		return nil, fmt.Errorf("query batch files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		var f File
		var finalName sql.NullString
		if err := rows.Scan(&f.ID, &f.BatchID, &f.SourcePath, &finalName, &f.Outcome); err != nil {
			return nil, fmt.Errorf("scan batch file row: %w", err)
		}
		if finalName.Valid {
			f.FinalName = finalName.String
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate batch file rows: %w", err)
	}
	return files, nil
}

// Prune deletes passes older than keepDays; their file rows cascade.
// keepDays <= 0 keeps everything.
func (s *Store) Prune(ctx context.Context, keepDays int) (int64, error) {
	if keepDays <= 0 {
		return 0, nil
	}
	cutoff := time.Now().AddDate(0, 0, -keepDays)

	result, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE started_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune batches: %w", err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("get rows affected: %w", err)
	}
	return deleted, nil
}
