package journal

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

// Entry is one recorded refresh attempt.
type Entry struct {
	ID         string
	Trigger    string
	StartedAt  time.Time
	FinishedAt time.Time
	Outcome    string
	Entries    int
	Error      string
}

// Refresh outcomes persisted in the journal.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Journal records refresh attempts in SQLite so operators can audit when the
// cache was last rebuilt and why attempts failed.
type Journal struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// storedTimeLayout keeps a fixed-width fraction so the TEXT ordering of
// started_at matches chronological ordering.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open initializes or connects to the journal database at the given path.
func Open(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("ensure journal directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	journal := &Journal{db: db, path: path}
	if err := journal.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return journal, nil
}

// Close closes the underlying database connection.
func (j *Journal) Close() error {
	if j == nil || j.db == nil {
		return nil
	}
	return j.db.Close()
}

// Record persists one refresh attempt.
func (j *Journal) Record(ctx context.Context, entry Entry) error {
	ctx = ensureContext(ctx)
	return retryOnBusy(ctx, func() error {
		_, err := j.db.ExecContext(ctx, `
            INSERT INTO refreshes (id, trigger_kind, started_at, finished_at, outcome, entries, error)
            VALUES (?, ?, ?, ?, ?, ?, ?)`,
			entry.ID,
			entry.Trigger,
			entry.StartedAt.UTC().Format(storedTimeLayout),
			entry.FinishedAt.UTC().Format(storedTimeLayout),
			entry.Outcome,
			entry.Entries,
			entry.Error,
		)
		return err
	})
}

// Recent returns the most recent refresh attempts, newest first. A limit of
// zero or less selects a default page of 20.
func (j *Journal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	ctx = ensureContext(ctx)
	if limit <= 0 {
		limit = 20
	}

	rows, err := j.db.QueryContext(ctx, `
        SELECT id, trigger_kind, started_at, finished_at, outcome, entries, error
        FROM refreshes ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query refreshes: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate refreshes: %w", err)
	}
	return entries, nil
}

// Last returns the most recent refresh attempt, or nil when the journal is
// empty.
func (j *Journal) Last(ctx context.Context) (*Entry, error) {
	entries, err := j.Recent(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

func scanEntry(rows *sql.Rows) (Entry, error) {
	var entry Entry
	var startedAt, finishedAt string
	if err := rows.Scan(&entry.ID, &entry.Trigger, &startedAt, &finishedAt, &entry.Outcome, &entry.Entries, &entry.Error); err != nil {
		return Entry{}, fmt.Errorf("scan refresh row: %w", err)
	}
	var err error
	if entry.StartedAt, err = parseTimeString(startedAt); err != nil {
		return Entry{}, fmt.Errorf("parse started_at %q: %w", startedAt, err)
	}
	if entry.FinishedAt, err = parseTimeString(finishedAt); err != nil {
		return Entry{}, fmt.Errorf("parse finished_at %q: %w", finishedAt, err)
	}
	return entry, nil
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}
