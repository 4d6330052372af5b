// Package pgstore implements the store read contracts against a
// Postgres database holding the production call_results and
// campaign_revisions tables. All access is read-only; an external
// pipeline owns the data.
package pgstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/mfurudate/apodash/internal/store"
)

// DB wraps a Postgres connection pool.
type DB struct {
	conn *sql.DB
}

// Open connects to Postgres using the given DSN.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening postgres: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Ping verifies the connection is usable.
func (db *DB) Ping(ctx context.Context) error {
	return db.conn.PingContext(ctx)
}

// CallResults returns call-result rows matching the filter, ordered
// by operating date ascending.
func (db *DB) CallResults(ctx context.Context, f store.CallFilter) ([]store.CallResult, error) {
	query := `SELECT client_name, script_name, list_name, operating_date, call_count, appointment
		FROM call_results WHERE client_name = $1`
	args := []any{f.Client}

	switch f.Dimension {
	case store.DimensionScript:
		query += fmt.Sprintf(" AND script_name = $%d", len(args)+1)
		args = append(args, f.Value)
	case store.DimensionList:
		query += fmt.Sprintf(" AND list_name = $%d", len(args)+1)
		args = append(args, f.Value)
	}
	if !f.From.IsZero() {
		query += fmt.Sprintf(" AND operating_date >= $%d", len(args)+1)
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		query += fmt.Sprintf(" AND operating_date < $%d", len(args)+1)
		args = append(args, f.To)
	}
	query += " ORDER BY operating_date ASC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.CallResult
	for rows.Next() {
		var r store.CallResult
		var script, list sql.NullString
		var date time.Time
		if err := rows.Scan(&r.ClientName, &script, &list, &date, &r.CallCount, &r.Appointment); err != nil {
			return nil, err
		}
		r.ScriptName = fromNullString(script)
		r.ListName = fromNullString(list)
		r.OperatingDate = dateOnly(date)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Revisions returns campaign revisions matching the filter, ordered
// by execution date ascending.
func (db *DB) Revisions(ctx context.Context, f store.RevisionFilter) ([]store.Revision, error) {
	query := `SELECT client_name, execution_date, pre_fix_talk_list_name, post_fix_talk_list_name, deleted_list_name
		FROM campaign_revisions WHERE true`
	var args []any

	if f.Client != "" {
		query += fmt.Sprintf(" AND client_name = $%d", len(args)+1)
		args = append(args, f.Client)
	}
	if !f.From.IsZero() {
		query += fmt.Sprintf(" AND execution_date >= $%d", len(args)+1)
		args = append(args, f.From)
	}
	if !f.To.IsZero() {
		query += fmt.Sprintf(" AND execution_date < $%d", len(args)+1)
		args = append(args, f.To)
	}
	query += " ORDER BY execution_date ASC"

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Revision
	for rows.Next() {
		var r store.Revision
		var pre, post, deleted sql.NullString
		var date time.Time
		if err := rows.Scan(&r.ClientName, &date, &pre, &post, &deleted); err != nil {
			return nil, err
		}
		r.PreFixTalkListName = fromNullString(pre)
		r.PostFixTalkListName = fromNullString(post)
		r.DeletedListName = fromNullString(deleted)
		r.ExecutionDate = dateOnly(date)
		out = append(out, r)
	}
	return out, rows.Err()
}

func fromNullString(v sql.NullString) *string {
	if !v.Valid || v.String == "" {
		return nil
	}
	s := v.String
	return &s
}

func dateOnly(v time.Time) time.Time {
	return time.Date(v.Year(), v.Month(), v.Day(), 0, 0, 0, 0, time.UTC)
}
