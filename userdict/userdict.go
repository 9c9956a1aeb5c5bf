// Package userdict stores the user dictionary in SQLite.
//
// A Dict is an overlay for the cost provider: its rows are offered next to
// the system dictionary for every reading. ExportTo copies the rows into the
// reserved user bucket of a dictionary build for distribution.
package userdict

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"
	"unicode/utf8"

	_ "github.com/mattn/go-sqlite3"

	"github.com/hupe1980/kanakanji/dictionary"
	"github.com/hupe1980/kanakanji/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS words (
    reading     TEXT NOT NULL,
    word        TEXT NOT NULL,
    lcid        INTEGER NOT NULL,
    rcid        INTEGER NOT NULL,
    mid         INTEGER NOT NULL,
    score       REAL NOT NULL,
    created_at  INTEGER NOT NULL,
    PRIMARY KEY (reading, word)
);
`

var (
	// ErrInvalidEntry is returned for rows without reading or word.
	ErrInvalidEntry = errors.New("userdict: reading and word are required")
	// ErrNotFound is returned by Remove for unknown rows.
	ErrNotFound = errors.New("userdict: not found")
)

// Dict is a SQLite user dictionary. It is safe for concurrent use.
type Dict struct {
	db     *sql.DB
	logger *slog.Logger
}

// Option configures a Dict.
type Option func(*Dict)

// WithLogger sets the logger for lookup failures.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dict) {
		if l != nil {
			d.logger = l
		}
	}
}

// Open opens or creates the dictionary at path.
func Open(path string, optFns ...Option) (*Dict, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	d := &Dict{db: db, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, fn := range optFns {
		fn(d)
	}
	return d, nil
}

// Close closes the database.
func (d *Dict) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

// Add inserts e, replacing a row with the same reading and word.
func (d *Dict) Add(ctx context.Context, e model.Entry) error {
	if e.Reading == "" || e.Word == "" {
		return ErrInvalidEntry
	}
	_, err := d.db.ExecContext(ctx, `
		INSERT INTO words (reading, word, lcid, rcid, mid, score, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (reading, word) DO UPDATE SET
			lcid = excluded.lcid, rcid = excluded.rcid, mid = excluded.mid, score = excluded.score`,
		e.Reading, e.Word, e.LCID, e.RCID, e.MID, e.Score, time.Now().UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("insert word: %w", err)
	}
	return nil
}

// Remove deletes the row for reading and word.
func (d *Dict) Remove(ctx context.Context, reading, word string) error {
	res, err := d.db.ExecContext(ctx, `DELETE FROM words WHERE reading = ? AND word = ?`, reading, word)
	if err != nil {
		return fmt.Errorf("delete word: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s/%s", ErrNotFound, reading, word)
	}
	return nil
}

// Lookup returns the rows for reading.
func (d *Dict) Lookup(ctx context.Context, reading string) ([]model.Entry, error) {
	return d.query(ctx, `
		SELECT reading, word, lcid, rcid, mid, score FROM words
		WHERE reading = ? ORDER BY created_at, word`, reading)
}

// LookupPrefix returns up to limit rows whose reading starts with prefix,
// ordered by reading.
func (d *Dict) LookupPrefix(ctx context.Context, prefix string, limit int) ([]model.Entry, error) {
	if limit <= 0 {
		return nil, nil
	}
	return d.query(ctx, `
		SELECT reading, word, lcid, rcid, mid, score FROM words
		WHERE reading >= ? AND reading < ? ORDER BY reading, created_at, word LIMIT ?`,
		prefix, prefix+string(utf8.MaxRune), limit)
}

// All returns every row ordered by reading.
func (d *Dict) All(ctx context.Context) ([]model.Entry, error) {
	return d.query(ctx, `
		SELECT reading, word, lcid, rcid, mid, score FROM words
		ORDER BY reading, created_at, word`)
}

func (d *Dict) query(ctx context.Context, q string, args ...any) ([]model.Entry, error) {
	rows, err := d.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("query words: %w", err)
	}
	defer rows.Close()

	var out []model.Entry
	for rows.Next() {
		e := model.Entry{Flags: model.FromUserDictionary}
		if err := rows.Scan(&e.Reading, &e.Word, &e.LCID, &e.RCID, &e.MID, &e.Score); err != nil {
			return nil, fmt.Errorf("scan word: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate words: %w", err)
	}
	return out, nil
}

// Exact implements costs.Overlay. Failures are logged and read as a miss.
func (d *Dict) Exact(reading string) []model.Entry {
	rows, err := d.Lookup(context.Background(), reading)
	if err != nil {
		d.logger.Warn("user dictionary lookup failed", "reading", reading, "error", err)
		return nil
	}
	return rows
}

// Prefix implements costs.Overlay. Failures are logged and read as a miss.
func (d *Dict) Prefix(reading string, limit int) []model.Entry {
	rows, err := d.LookupPrefix(context.Background(), reading, limit)
	if err != nil {
		d.logger.Warn("user dictionary prefix lookup failed", "reading", reading, "error", err)
		return nil
	}
	return rows
}

// ExportTo adds every row to the user bucket of b and returns the count.
// Rows whose reading b cannot encode are skipped.
func (d *Dict) ExportTo(ctx context.Context, b *dictionary.Builder) (int, error) {
	rows, err := d.All(ctx)
	if err != nil {
		return 0, err
	}
	n := 0
	for _, e := range rows {
		if err := b.AddTo(dictionary.UserBucket, e); err != nil {
			d.logger.WarnContext(ctx, "user word not exported", "reading", e.Reading, "word", e.Word, "error", err)
			continue
		}
		n++
	}
	return n, nil
}
