package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/netreclaim/reclaim/pkg/util"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS snapshots (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	device   TEXT NOT NULL,
	run_id   TEXT NOT NULL DEFAULT '',
	saved_at TEXT NOT NULL,
	record   TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS snapshots_device ON snapshots(device, id);
`

// SQLite keeps every entry in one table.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens or creates the database at path and applies the schema.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite: %w", err)
	}
	// A single connection serializes writers.
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Save(ctx context.Context, e Entry) error {
	if err := validate(e); err != nil {
		return err
	}
	rec, err := json.Marshal(e.Record)
	if err != nil {
		return fmt.Errorf("encoding record: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO snapshots(device, run_id, saved_at, record) VALUES(?, ?, ?, ?)`,
		e.Device, e.RunID, e.SavedAt.UTC().Format(time.RFC3339Nano), string(rec))
	if err != nil {
		return fmt.Errorf("saving %s: %w", e.Device, err)
	}
	return nil
}

func (s *SQLite) Latest(ctx context.Context, device string) (Entry, error) {
	h, err := s.History(ctx, device, 1)
	if err != nil {
		return Entry{}, err
	}
	return h[0], nil
}

func (s *SQLite) History(ctx context.Context, device string, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT device, run_id, saved_at, record FROM snapshots WHERE device = ? ORDER BY id DESC LIMIT ?`,
		device, limit)
	if err != nil {
		return nil, fmt.Errorf("loading history of %s: %w", device, err)
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var (
			e       Entry
			savedAt string
			rec     string
		)
		if err := rows.Scan(&e.Device, &e.RunID, &savedAt, &rec); err != nil {
			return nil, err
		}
		if e.SavedAt, err = time.Parse(time.RFC3339Nano, savedAt); err != nil {
			return nil, fmt.Errorf("decoding saved_at: %w", err)
		}
		if err := json.Unmarshal([]byte(rec), &e.Record); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("device %q: %w", device, util.ErrNotFound)
	}
	return out, nil
}

func (s *SQLite) Devices(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT device FROM snapshots ORDER BY device`)
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
