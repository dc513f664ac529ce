package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	collection TEXT NOT NULL,
	id TEXT NOT NULL,
	data TEXT NOT NULL,
	version INTEGER NOT NULL DEFAULT 1,
	updated_at TIMESTAMP NOT NULL,
	PRIMARY KEY (collection, id)
);`

// SQLiteStore keeps documents in a single SQLite file. Intended for local runs.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database file and ensures the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("could not open database: %w", err)
	}
	// a single connection serializes writers and keeps :memory: databases coherent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("could not initialize schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Driver() Driver { return DriverSQLite }

func (s *SQLiteStore) Close() error { return s.db.Close() }

func (s *SQLiteStore) All(ctx context.Context, collection string) ([]Snapshot, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, data, version, updated_at FROM documents WHERE collection = ? ORDER BY id`, collection)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: %w", collection, err)
	}
	return out, nil
}

func (s *SQLiteStore) Get(ctx context.Context, collection, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, data, version, updated_at FROM documents WHERE collection = ? AND id = ?`, collection, id)
	snap, err := scanSnapshot(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Snapshot{}, ErrNotFound
	}
	return snap, err
}

func (s *SQLiteStore) Set(ctx context.Context, collection, id string, fields Fields) error {
	data, err := encodeFields(fields)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO documents (collection, id, data, version, updated_at) VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(collection, id) DO UPDATE SET
			data = excluded.data,
			version = documents.version + 1,
			updated_at = excluded.updated_at`,
		collection, id, string(data), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("set %s/%s: %w", collection, id, err)
	}
	return nil
}

func (s *SQLiteStore) Update(ctx context.Context, collection, id string, expected int64, fields Fields) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var (
		raw     string
		version int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT data, version FROM documents WHERE collection = ? AND id = ?`, collection, id).Scan(&raw, &version)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("read %s/%s: %w", collection, id, err)
	}
	if version != expected {
		return ErrConflict
	}

	current, err := decodeFields([]byte(raw))
	if err != nil {
		return err
	}
	data, err := encodeFields(mergeFields(current, fields))
	if err != nil {
		return err
	}

	res, err := tx.ExecContext(ctx,
		`UPDATE documents SET data = ?, version = ?, updated_at = ? WHERE collection = ? AND id = ? AND version = ?`,
		string(data), expected+1, time.Now().UTC(), collection, id, expected)
	if err != nil {
		return fmt.Errorf("update %s/%s: %w", collection, id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrConflict
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Delete(ctx context.Context, collection, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE collection = ? AND id = ?`, collection, id); err != nil {
		return fmt.Errorf("delete %s/%s: %w", collection, id, err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(row rowScanner) (Snapshot, error) {
	var (
		snap Snapshot
		raw  string
	)
	if err := row.Scan(&snap.ID, &raw, &snap.Version, &snap.UpdatedAt); err != nil {
		return Snapshot{}, err
	}
	fields, err := decodeFields([]byte(raw))
	if err != nil {
		return Snapshot{}, err
	}
	snap.Fields = fields
	return snap, nil
}
