// Package kv provides string key-value backends for the local store.
package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const (
	createTableSQL = `CREATE TABLE IF NOT EXISTS kv_store (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`
	getSQL = `SELECT value FROM kv_store WHERE key = ?`
	setSQL = `INSERT INTO kv_store (key, value) VALUES (?, ?)
ON CONFLICT(key) DO UPDATE SET value = excluded.value`
)

// SQLite stores values in a single kv_store table.
type SQLite struct {
	db *sql.DB
}

// NewSQLite ensures the kv_store table exists on db.
func NewSQLite(ctx context.Context, db *sql.DB) (*SQLite, error) {
	if db == nil {
		panic("database must not be nil")
	}
	if _, err := db.ExecContext(ctx, createTableSQL); err != nil {
		return nil, fmt.Errorf("create kv_store table: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Get(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, getSQL, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Set(ctx context.Context, key, value string) error {
	if _, err := s.db.ExecContext(ctx, setSQL, key, value); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLite) Close() error {
	return s.db.Close()
}
