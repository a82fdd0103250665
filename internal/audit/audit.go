// Package audit records the outcome of every source extraction in a local
// SQLite database. It is a log, not a cache: nothing is ever read back to
// serve a request.
package audit

import (
	"context"
	"database/sql"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	_ "modernc.org/sqlite"

	"kaizoku/internal/extract"
	"kaizoku/internal/media"
)

const schema = `CREATE TABLE IF NOT EXISTS extractions (
	id         INTEGER PRIMARY KEY AUTOINCREMENT,
	at         INTEGER NOT NULL,
	request_id TEXT    NOT NULL DEFAULT '',
	embed_host TEXT    NOT NULL DEFAULT '',
	stage      TEXT    NOT NULL DEFAULT '',
	kind       TEXT    NOT NULL DEFAULT '',
	sources    INTEGER NOT NULL DEFAULT 0,
	subtitles  INTEGER NOT NULL DEFAULT 0,
	ok         INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS extractions_at ON extractions (at);`

// Entry is one recorded extraction. Stage and Kind are empty on success.
type Entry struct {
	ID        int64     `json:"id"`
	Time      time.Time `json:"time"`
	RequestID string    `json:"requestId,omitempty"`
	EmbedHost string    `json:"embedHost"`
	Stage     string    `json:"stage,omitempty"`
	Kind      string    `json:"kind,omitempty"`
	Sources   int       `json:"sources"`
	Subtitles int       `json:"subtitles"`
	OK        bool      `json:"ok"`
}

// Outcome describes one extraction of embedURL that produced out or err.
func Outcome(embedURL string, out *media.Sources, err error) Entry {
	e := Entry{OK: err == nil}
	if u, perr := url.Parse(embedURL); perr == nil {
		e.EmbedHost = u.Host
	}

	if err != nil {
		e.Stage = string(extract.StageOf(err))
		e.Kind = extract.Kind(err)
		return e
	}
	if out != nil {
		e.Sources = len(out.Sources)
		e.Subtitles = len(out.Subtitles)
	}
	return e
}

// Store is an append-only extraction log. It is safe for concurrent use.
type Store struct {
	db *sql.DB
}

// Open opens or creates the audit database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, errors.Wrap(err, "creating audit dir")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrap(err, "opening audit database")
	}

	// SQLite serializes writers; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if _, err := db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "setting WAL mode")
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "creating audit schema")
	}

	return &Store{db: db}, nil
}

// Record appends e. A zero Time is replaced by the current time.
func (s *Store) Record(ctx context.Context, e Entry) error {
	if e.Time.IsZero() {
		e.Time = time.Now()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO extractions (at, request_id, embed_host, stage, kind, sources, subtitles, ok)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.Time.UnixMilli(), e.RequestID, e.EmbedHost, e.Stage, e.Kind, e.Sources, e.Subtitles, e.OK,
	)
	return errors.Wrap(err, "recording extraction")
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, at, request_id, embed_host, stage, kind, sources, subtitles, ok
		 FROM extractions ORDER BY at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "querying audit log")
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e  Entry
			at int64
		)
		if err := rows.Scan(&e.ID, &at, &e.RequestID, &e.EmbedHost, &e.Stage, &e.Kind, &e.Sources, &e.Subtitles, &e.OK); err != nil {
			return nil, errors.Wrap(err, "reading audit row")
		}
		e.Time = time.UnixMilli(at)
		entries = append(entries, e)
	}

	return entries, errors.Wrap(rows.Err(), "reading audit log")
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
