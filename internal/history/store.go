// =============================================================================
// Receipt Generator - Render History
// =============================================================================
//
// The history store records every committed receipt in a small SQLite
// database, so a later run can list what was printed, when and where.
//
// CONCURRENCY:
//   Render workers record entries concurrently. SQLite serializes writers;
//   a busy database is retried with a short backoff before giving up.
//
// =============================================================================

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

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS renders (
    id            INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id        TEXT NOT NULL,
    receipt_date  TEXT NOT NULL,
    customer_id   TEXT NOT NULL,
    customer_name TEXT NOT NULL,
    total         TEXT NOT NULL,
    item_count    INTEGER NOT NULL,
    overflow      INTEGER NOT NULL DEFAULT 0,
    source_file   TEXT,
    artifact_path TEXT NOT NULL,
    artifact_size INTEGER NOT NULL,
    rendered_at   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_renders_run ON renders(run_id);
CREATE INDEX IF NOT EXISTS idx_renders_date ON renders(receipt_date);
`

// connectionPragmas run on every new pooled connection.
var connectionPragmas = []string{
	"busy_timeout(5000)",
	"journal_mode(WAL)",
}

// dataSourceName attaches connectionPragmas to path.
func dataSourceName(path string) string {
	params := make([]string, len(connectionPragmas))
	for i, p := range connectionPragmas {
		params[i] = "_pragma=" + p
	}
	return path + "?" + strings.Join(params, "&")
}

const entryColumns = `id, run_id, receipt_date, customer_id, customer_name, total,
    item_count, overflow, source_file, artifact_path, artifact_size, rendered_at`

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Entry is one committed receipt.
type Entry struct {
	ID           int64
	RunID        string
	Date         string
	CustomerID   string
	CustomerName string
	Total        decimal.Decimal
	Items        int
	Overflow     bool
	SourceFile   string
	Path         string
	Size         int64
	RenderedAt   time.Time
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	RunID      string
	CustomerID string
	Limit      int
}

// Store persists render history in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// Open creates or opens the history database at path.
func Open(ctx context.Context, path string) (*Store, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create history directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dataSourceName(path))
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts an entry and returns its id. A zero RenderedAt is set to now.
func (s *Store) Record(ctx context.Context, e Entry) (int64, error) {
	if e.RenderedAt.IsZero() {
		e.RenderedAt = time.Now()
	}

	var res sql.Result
	err := retryOnBusy(ctx, func() error {
		var execErr error
		res, execErr = s.db.ExecContext(
			ctx,
			`INSERT INTO renders (
                run_id, receipt_date, customer_id, customer_name, total,
                item_count, overflow, source_file, artifact_path, artifact_size, rendered_at
            ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			e.RunID,
			e.Date,
			e.CustomerID,
			e.CustomerName,
			e.Total.String(),
			e.Items,
			e.Overflow,
			nullableString(e.SourceFile),
			e.Path,
			e.Size,
			e.RenderedAt.UTC().Format(time.RFC3339Nano),
		)
		return execErr
	})
	if err != nil {
		return 0, fmt.Errorf("insert render: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	return id, nil
}

// List returns entries newest first.
func (s *Store) List(ctx context.Context, f Filter) ([]Entry, error) {
	query := `SELECT ` + entryColumns + ` FROM renders`

	var (
		where []string
		args  []any
	)
	if f.RunID != "" {
		where = append(where, "run_id = ?")
		args = append(args, f.RunID)
	}
	if f.CustomerID != "" {
		where = append(where, "customer_id = ?")
		args = append(args, f.CustomerID)
	}
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY rendered_at DESC, id DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list renders: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan render: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate renders: %w", err)
	}
	return entries, nil
}

// =============================================================================
// HELPERS
// =============================================================================

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var (
		e          Entry
		total      string
		source     sql.NullString
		renderedAt string
	)
	if err := row.Scan(
		&e.ID, &e.RunID, &e.Date, &e.CustomerID, &e.CustomerName, &total,
		&e.Items, &e.Overflow, &source, &e.Path, &e.Size, &renderedAt,
	); err != nil {
		return Entry{}, err
	}

	d, err := decimal.NewFromString(total)
	if err != nil {
		return Entry{}, fmt.Errorf("parse total %q: %w", total, err)
	}
	e.Total = d

	if source.Valid {
		e.SourceFile = source.String
	}

	t, err := time.Parse(time.RFC3339Nano, renderedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse rendered_at %q: %w", renderedAt, err)
	}
	e.RenderedAt = t
	return e, nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code()&0xff == sqliteBusyCode {
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
