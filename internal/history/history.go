package history

import (
	"context"
	"time"
)

// History source values.
const (
	SourceEvent   = "event"
	SourceCommand = "command"
	SourceQuery   = "query"
)

// Entry represents a single load level change record.
//
// Each entry stores the level observed at the time the change was
// recorded. This provides a local audit trail even when the
// time-series database is unavailable.
type Entry struct {
	// ID is the auto-incremented primary key for the history row.
	ID int64 `json:"id"`

	// Load is the load number on the LiteJet board (1-40).
	Load int `json:"load"`

	// Level is the recorded level (0-99).
	Level int `json:"level"`

	// Source identifies how the change was recorded (event, command, query).
	Source string `json:"source"`

	// CreatedAt is the timestamp of the change (UTC).
	CreatedAt time.Time `json:"created_at"`
}

// On reports whether the recorded level is non-zero.
func (e Entry) On() bool {
	return e.Level > 0
}

// Repository stores and retrieves load level change history.
//
// Implementations must be thread-safe and use UTC timestamps.
type Repository interface {
	// RecordLevel records a load level change.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - load: Load number on the board
	//   - level: Observed level (0-99)
	//   - source: Origin of the change (event, command, query)
	//
	// Returns:
	//   - error: nil on success, otherwise the underlying persistence error
	RecordLevel(ctx context.Context, load, level int, source string) error

	// LoadHistory returns recent level change history for the load.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout
	//   - load: Load number on the board
	//   - limit: Maximum entries to return (implementation may clamp bounds)
	//
	// Returns:
	//   - []Entry: Ordered newest-first history entries (may be empty)
	//   - error: nil on success, otherwise the underlying query error
	LoadHistory(ctx context.Context, load, limit int) ([]Entry, error)
}
