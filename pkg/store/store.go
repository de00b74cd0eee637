// Package store persists the message table in a SQLite database.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ccollicutt/chatstat/pkg/table"
)

const schema = `
PRAGMA journal_mode = WAL;
PRAGMA synchronous = NORMAL;
PRAGMA busy_timeout = 5000;

CREATE TABLE IF NOT EXISTS meta (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS messages (
    seq        INTEGER PRIMARY KEY,
    ts         TEXT NOT NULL,
    user       TEXT NOT NULL,
    message    TEXT NOT NULL,
    year       INTEGER NOT NULL,
    month      TEXT NOT NULL,
    month_num  INTEGER NOT NULL,
    day        INTEGER NOT NULL,
    day_name   TEXT NOT NULL,
    hour       INTEGER NOT NULL,
    minute     INTEGER NOT NULL,
    only_date  TEXT NOT NULL,
    word_count INTEGER NOT NULL DEFAULT 0,
    url_count  INTEGER NOT NULL DEFAULT 0,
    is_media   INTEGER NOT NULL DEFAULT 0,
    line       INTEGER NOT NULL DEFAULT 0,
    source     TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS messages_user ON messages(user);
CREATE INDEX IF NOT EXISTS messages_date ON messages(only_date);
`

// schemaVersion is bumped whenever the messages table changes shape.
const schemaVersion = "1"

const tsLayout = "2006-01-02T15:04:05"

// DB is an open message database.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens or creates the database at path.
func Open(ctx context.Context, path string) (*DB, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, &StoreError{Path: path, Op: "open", Err: fmt.Errorf("create db dir: %w", err)}
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, &StoreError{Path: path, Op: "open", Err: fmt.Errorf("init schema: %w", err)}
	}

	d := &DB{db: db, path: path}
	if err := d.checkVersion(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return d, nil
}

func (d *DB) checkVersion(ctx context.Context) error {
	var ver string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'schema_version'").Scan(&ver)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		_, err = d.db.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES ('schema_version', ?)", schemaVersion)
		if err != nil {
			return &StoreError{Path: d.path, Op: "open", Err: err}
		}
		return nil
	case err != nil:
		return &StoreError{Path: d.path, Op: "open", Err: err}
	case ver != schemaVersion:
		return &StoreError{Path: d.path, Op: "open", Err: fmt.Errorf("schema version %s, want %s", ver, schemaVersion)}
	}
	return nil
}

// Close closes the database.
func (d *DB) Close() error {
	return d.db.Close()
}

// Save replaces the stored table with tbl in a single transaction.
func (d *DB) Save(ctx context.Context, tbl *table.Table) error {
	if err := d.save(ctx, tbl); err != nil {
		return &StoreError{Path: d.path, Op: "save", Err: err}
	}
	return nil
}

func (d *DB) save(ctx context.Context, tbl *table.Table) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM messages"); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT OR REPLACE INTO meta (key, value) VALUES ('format', ?)", tbl.Format()); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO messages (seq, ts, user, message, year, month, month_num, day, day_name,
			hour, minute, only_date, word_count, url_count, is_media, line, source)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	var insErr error
	tbl.Each(func(i int, m *table.Message) bool {
		if insErr = ctx.Err(); insErr != nil {
			return false
		}
		_, insErr = stmt.ExecContext(ctx,
			i, m.Timestamp.Format(tsLayout), m.User, m.Message,
			m.Year, m.Month, m.MonthNum, m.Day, m.DayName,
			m.Hour, m.Minute, m.OnlyDate.Format(time.DateOnly),
			m.WordCount, m.URLCount, m.IsMedia, m.Line, m.Source)
		if insErr != nil {
			insErr = fmt.Errorf("insert line %d: %w", m.Line, insErr)
			return false
		}
		return true
	})
	if insErr != nil {
		return insErr
	}

	return tx.Commit()
}

// Load reads the stored table back in its original order.
func (d *DB) Load(ctx context.Context) (*table.Table, error) {
	tbl, err := d.load(ctx)
	if err != nil {
		return nil, &StoreError{Path: d.path, Op: "load", Err: err}
	}
	return tbl, nil
}

func (d *DB) load(ctx context.Context) (*table.Table, error) {
	var format string
	err := d.db.QueryRowContext(ctx, "SELECT value FROM meta WHERE key = 'format'").Scan(&format)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, `
		SELECT ts, user, message, year, month, month_num, day, day_name,
			hour, minute, only_date, word_count, url_count, is_media, line, source
		FROM messages ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var msgs []table.Message
	for rows.Next() {
		var m table.Message
		var ts, onlyDate string
		if err := rows.Scan(&ts, &m.User, &m.Message, &m.Year, &m.Month, &m.MonthNum, &m.Day, &m.DayName,
			&m.Hour, &m.Minute, &onlyDate, &m.WordCount, &m.URLCount, &m.IsMedia, &m.Line, &m.Source); err != nil {
			return nil, err
		}
		if m.Timestamp, err = time.Parse(tsLayout, ts); err != nil {
			return nil, fmt.Errorf("row on line %d: %w", m.Line, err)
		}
		if m.OnlyDate, err = time.Parse(time.DateOnly, onlyDate); err != nil {
			return nil, fmt.Errorf("row on line %d: %w", m.Line, err)
		}
		msgs = append(msgs, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return table.FromRows(format, msgs), nil
}

// Count returns the number of stored messages.
func (d *DB) Count(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM messages").Scan(&n)
	return n, err
}

// SaveFile writes tbl to a database at path.
func SaveFile(ctx context.Context, path string, tbl *table.Table) error {
	d, err := Open(ctx, path)
	if err != nil {
		return err
	}
	defer d.Close()
	return d.Save(ctx, tbl)
}

// LoadFile reads the table stored in the database at path. The file must
// already exist.
func LoadFile(ctx context.Context, path string) (*table.Table, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, &StoreError{Path: path, Op: "open", Err: err}
	}
	d, err := Open(ctx, path)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	return d.Load(ctx)
}

// IsDatabase reports whether path names a database file by extension.
func IsDatabase(path string) bool {
	switch filepath.Ext(path) {
	case ".db", ".sqlite", ".sqlite3":
		return true
	}
	return false
}
