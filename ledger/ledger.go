// Package ledger records every cover fetch attempt in SQLite so that failed
// items can be audited and retried by hand.
package ledger

import (
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

// Outcomes recorded for an attempt.
const (
	OutcomeSucceeded = "succeeded"
	OutcomeSkipped   = "skipped"
	OutcomeFailed    = "failed"
)

// ErrInvalidOutcome is returned when an attempt has an unknown outcome.
var ErrInvalidOutcome = errors.New("outcome must be succeeded, skipped, or failed")

// Store manages recorded attempts using SQLite.
type Store struct {
	db *sql.DB
}

// Attempt is the recorded result of processing one item in one run.
type Attempt struct {
	AttemptID   uuid.UUID
	RunID       uuid.UUID
	ItemID      string
	URL         string
	Shape       string
	Outcome     string
	Bytes       int64
	Error       *string
	AttemptedAt time.Time
}

// Filter represents filtering options for listing attempts.
type Filter struct {
	ItemID  *string    // Filter by item id
	RunID   *uuid.UUID // Filter by run
	Outcome *string    // Filter by outcome
	Limit   int        // Pagination limit
	Offset  int        // Pagination offset
}

// NewStore opens or creates the ledger database at dbPath. Parent
// directories are created for file paths.
func NewStore(dbPath string) (*Store, error) {
	if dbPath != ":memory:" && !strings.HasPrefix(dbPath, "file:") {
		if err := os.MkdirAll(filepath.Dir(dbPath), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return store, nil
}

// initSchema creates the attempts table if it doesn't exist.
func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS attempts (
		attempt_id TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		item_id TEXT NOT NULL,
		url TEXT NOT NULL,
		shape TEXT NOT NULL DEFAULT '',
		outcome TEXT NOT NULL,
		bytes INTEGER DEFAULT 0,
		error TEXT,
		attempted_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS attempts_item_id ON attempts (item_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record inserts an attempt. A nil AttemptID and a zero AttemptedAt are
// filled in; the stored attempt is returned.
func (s *Store) Record(attempt Attempt) (*Attempt, error) {
	switch attempt.Outcome {
	case OutcomeSucceeded, OutcomeSkipped, OutcomeFailed:
	default:
		return nil, ErrInvalidOutcome
	}

	if attempt.AttemptID == uuid.Nil {
		attempt.AttemptID = uuid.New()
	}
	if attempt.AttemptedAt.IsZero() {
		attempt.AttemptedAt = time.Now()
	}
	attempt.AttemptedAt = attempt.AttemptedAt.Truncate(0)

	query := `
		INSERT INTO attempts (
			attempt_id, run_id, item_id, url, shape, outcome, bytes, error, attempted_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query,
		attempt.AttemptID.String(),
		attempt.RunID.String(),
		attempt.ItemID,
		attempt.URL,
		attempt.Shape,
		attempt.Outcome,
		attempt.Bytes,
		attempt.Error,
		formatTime(&attempt.AttemptedAt),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert attempt: %w", err)
	}

	return &attempt, nil
}

// List returns attempts newest first, with optional filtering.
func (s *Store) List(filter Filter) ([]Attempt, error) {
	query := `
		SELECT attempt_id, run_id, item_id, url, shape, outcome, bytes, error, attempted_at
		FROM attempts
	`

	var whereClauses []string
	var args []any

	if filter.ItemID != nil {
		whereClauses = append(whereClauses, "item_id = ?")
		args = append(args, *filter.ItemID)
	}
	if filter.RunID != nil {
		whereClauses = append(whereClauses, "run_id = ?")
		args = append(args, filter.RunID.String())
	}
	if filter.Outcome != nil {
		whereClauses = append(whereClauses, "outcome = ?")
		args = append(args, *filter.Outcome)
	}

	if len(whereClauses) > 0 {
		query += " WHERE " + strings.Join(whereClauses, " AND ")
	}

	// rowid breaks ties between attempts recorded in the same instant
	query += " ORDER BY attempted_at DESC, rowid DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", filter.Limit)
	}
	if filter.Offset > 0 {
		if filter.Limit <= 0 {
			query += " LIMIT -1"
		}
		query += fmt.Sprintf(" OFFSET %d", filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query attempts: %w", err)
	}
	defer rows.Close()

	var attempts []Attempt
	for rows.Next() {
		var attemptIDStr, runIDStr, attemptedAtStr string
		var errText sql.NullString
		var a Attempt

		err := rows.Scan(
			&attemptIDStr, &runIDStr, &a.ItemID, &a.URL, &a.Shape,
			&a.Outcome, &a.Bytes, &errText, &attemptedAtStr,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attempt: %w", err)
		}

		if a.AttemptID, err = uuid.Parse(attemptIDStr); err != nil {
			return nil, fmt.Errorf("failed to parse attempt ID: %w", err)
		}
		if a.RunID, err = uuid.Parse(runIDStr); err != nil {
			return nil, fmt.Errorf("failed to parse run ID: %w", err)
		}
		if errText.Valid {
			a.Error = &errText.String
		}
		a.AttemptedAt = parseTime(attemptedAtStr)

		attempts = append(attempts, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read attempts: %w", err)
	}

	return attempts, nil
}

// timeLayout is fixed width so that stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Helper functions for time formatting
func formatTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	// Strip monotonic clock for consistent storage and comparisons
	return t.Truncate(0).UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, _ = time.Parse(time.RFC3339, s)
	}
	return t.Truncate(0)
}
