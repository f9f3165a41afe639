package history

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	defaultLimit = 50
	maxLimit     = 200
)

// SQLiteRepository implements Repository using SQLite.
//
// It stores level changes in the load_history table.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite load history repository.
//
// Parameters:
//   - db: Open SQLite connection used for queries
//
// Returns:
//   - *SQLiteRepository: Repository instance ready for use
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// RecordLevel inserts a new history entry for a load.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - load: Load number on the board
//   - level: Observed level (0-99)
//   - source: Origin of the change (event, command, query)
//
// Returns:
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteRepository) RecordLevel(ctx context.Context, load, level int, source string) error {
	if load <= 0 {
		return fmt.Errorf("load must be positive")
	}
	if level < 0 {
		return fmt.Errorf("level must not be negative")
	}
	if source == "" {
		source = SourceEvent
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO load_history (load, level, source) VALUES (?, ?, ?)",
		load,
		level,
		source,
	)
	if err != nil {
		return fmt.Errorf("inserting load history: %w", err)
	}

	return nil
}

// LoadHistory returns recent history entries for a load, ordered newest first.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - load: Load number on the board
//   - limit: Maximum entries to return (default 50, max 200)
//
// Returns:
//   - []Entry: History entries ordered by created_at DESC
//   - error: nil on success, otherwise the underlying query error
func (r *SQLiteRepository) LoadHistory(ctx context.Context, load, limit int) ([]Entry, error) {
	if load <= 0 {
		return nil, fmt.Errorf("load must be positive")
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxLimit {
		limit = maxLimit
	}

	rows, err := r.db.QueryContext(ctx,
		`SELECT id, load, level, source, created_at
		 FROM load_history
		 WHERE load = ?
		 ORDER BY created_at DESC
		 LIMIT ?`,
		load,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("querying load history: %w", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0, limit)
	for rows.Next() {
		var entry Entry
		var createdAt string

		if err := rows.Scan(&entry.ID, &entry.Load, &entry.Level, &entry.Source, &createdAt); err != nil {
			return nil, fmt.Errorf("scanning load history: %w", err)
		}

		timestamp, err := parseTimestamp(createdAt)
		if err != nil {
			return nil, err
		}
		entry.CreatedAt = timestamp

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating load history: %w", err)
	}

	return entries, nil
}

// Prune deletes history entries older than the given duration.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - olderThan: Duration to retain (entries older than now-olderThan are deleted)
//
// Returns:
//   - int64: Number of rows deleted
//   - error: nil on success, otherwise the underlying database error
func (r *SQLiteRepository) Prune(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, fmt.Errorf("olderThan must be positive")
	}

	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := r.db.ExecContext(ctx,
		"DELETE FROM load_history WHERE created_at < ?",
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("deleting load history: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("checking rows affected: %w", err)
	}

	return rowsAffected, nil
}

// parseTimestamp parses a timestamp stored in SQLite.
func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("created_at is empty")
	}

	timestamp, err := time.Parse(time.RFC3339, value)
	if err == nil {
		return timestamp, nil
	}

	fallback, fallbackErr := time.Parse("2006-01-02T15:04:05Z", value)
	if fallbackErr == nil {
		return fallback, nil
	}

	return time.Time{}, fmt.Errorf("parsing created_at: %w", err)
}
