// Package sqlitestore implements the store read contracts on a local
// SQLite database, plus the write methods used by seeding and tests.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/mfurudate/apodash/internal/store"
)

const dateLayout = "2006-01-02"

// DB wraps a SQLite database connection.
type DB struct {
	conn *sql.DB
	path string
}

// Open creates or opens a SQLite database at the given path.
func Open(dbPath string) (*DB, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("setting journal mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}

	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrating schema: %w", err)
	}

	return &DB{conn: conn, path: dbPath}, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Ping verifies the connection is usable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// CallResults returns call-result rows matching the filter, ordered
// by operating date ascending.
func (db *DB) CallResults(ctx context.Context, f store.CallFilter) ([]store.CallResult, error) {
	query := `SELECT client_name, script_name, list_name, operating_date, call_count, appointment
		FROM call_results WHERE client_name = ?`
	args := []any{f.Client}

	switch f.Dimension {
	case store.DimensionScript:
		query += " AND script_name = ?"
		args = append(args, f.Value)
	case store.DimensionList:
		query += " AND list_name = ?"
		args = append(args, f.Value)
	}
	if !f.From.IsZero() {
		query += " AND operating_date >= ?"
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		query += " AND operating_date < ?"
		args = append(args, f.To.Format(dateLayout))
	}
	query += " ORDER BY operating_date ASC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanCallResults(rows)
}

// Revisions returns campaign revisions matching the filter, ordered
// by execution date ascending.
func (db *DB) Revisions(ctx context.Context, f store.RevisionFilter) ([]store.Revision, error) {
	query := `SELECT client_name, execution_date, pre_fix_talk_list_name, post_fix_talk_list_name, deleted_list_name
		FROM campaign_revisions WHERE 1=1`
	var args []any

	if f.Client != "" {
		query += " AND client_name = ?"
		args = append(args, f.Client)
	}
	if !f.From.IsZero() {
		query += " AND execution_date >= ?"
		args = append(args, f.From.Format(dateLayout))
	}
	if !f.To.IsZero() {
		query += " AND execution_date < ?"
		args = append(args, f.To.Format(dateLayout))
	}
	query += " ORDER BY execution_date ASC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanRevisions(rows)
}

// InsertCallResult inserts one call-result row.
func (db *DB) InsertCallResult(r store.CallResult) error {
	_, err := db.conn.Exec(
		`INSERT INTO call_results (client_name, script_name, list_name, operating_date, call_count, appointment)
		VALUES (?, ?, ?, ?, ?, ?)`,
		r.ClientName, r.ScriptName, r.ListName, r.OperatingDate.Format(dateLayout), r.CallCount, r.Appointment,
	)
	return err
}

// InsertRevision inserts one campaign revision.
func (db *DB) InsertRevision(r store.Revision) error {
	_, err := db.conn.Exec(
		`INSERT INTO campaign_revisions (client_name, execution_date, pre_fix_talk_list_name, post_fix_talk_list_name, deleted_list_name)
		VALUES (?, ?, ?, ?, ?)`,
		r.ClientName, r.ExecutionDate.Format(dateLayout), r.PreFixTalkListName, r.PostFixTalkListName, r.DeletedListName,
	)
	return err
}

// Stats contains aggregate database statistics for the status command.
type Stats struct {
	CallResults int
	Revisions   int
	Clients     int
}

// GetStats returns row counts across both tables.
func (db *DB) GetStats() (*Stats, error) {
	var s Stats
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM call_results").Scan(&s.CallResults); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(*) FROM campaign_revisions").Scan(&s.Revisions); err != nil {
		return nil, err
	}
	if err := db.conn.QueryRow("SELECT COUNT(DISTINCT client_name) FROM call_results").Scan(&s.Clients); err != nil {
		return nil, err
	}
	return &s, nil
}

func scanCallResults(rows *sql.Rows) ([]store.CallResult, error) {
	var out []store.CallResult
	for rows.Next() {
		var r store.CallResult
		var date string
		if err := rows.Scan(&r.ClientName, &r.ScriptName, &r.ListName, &date, &r.CallCount, &r.Appointment); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parsing operating_date %q: %w", date, err)
		}
		r.OperatingDate = parsed
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanRevisions(rows *sql.Rows) ([]store.Revision, error) {
	var out []store.Revision
	for rows.Next() {
		var r store.Revision
		var date string
		if err := rows.Scan(&r.ClientName, &date, &r.PreFixTalkListName, &r.PostFixTalkListName, &r.DeletedListName); err != nil {
			return nil, err
		}
		parsed, err := time.Parse(dateLayout, date)
		if err != nil {
			return nil, fmt.Errorf("parsing execution_date %q: %w", date, err)
		}
		r.ExecutionDate = parsed
		out = append(out, r)
	}
	return out, rows.Err()
}
