package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Querier is the part of *pgxpool.Pool the postgres store needs.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS session_kv (
	key        TEXT PRIMARY KEY,
	value      BYTEA NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

type pgStore struct {
	db Querier
}

// NewPostgresStore keeps entries in the session_kv table.
func NewPostgresStore(db Querier) Store {
	return &pgStore{db: db}
}

// Migrate creates the session_kv table when missing.
func Migrate(ctx context.Context, db Querier) error {
	if _, err := db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("session: migrate: %w", err)
	}
	return nil
}

func (s *pgStore) Load(ctx context.Context, keys ...string) ([]Entry, error) {
	entries := make([]Entry, 0, len(keys))
	for _, key := range keys {
		var v []byte
		err := s.db.QueryRow(ctx, `SELECT value FROM session_kv WHERE key=$1`, key).Scan(&v)
		switch {
		case errors.Is(err, pgx.ErrNoRows):
			return nil, fmt.Errorf("%w: %s", ErrKeyNotFound, key)
		case err != nil:
			return nil, fmt.Errorf("%w: %s: %v", ErrLoadFailed, key, err)
		}
		entries = append(entries, Entry{Key: key, Value: v})
	}
	return entries, nil
}

func (s *pgStore) Save(ctx context.Context, entries ...Entry) error {
	for _, e := range entries {
		if _, err := s.db.Exec(ctx, `
			INSERT INTO session_kv(key, value, updated_at) VALUES ($1, $2, now())
			ON CONFLICT (key) DO UPDATE SET value=EXCLUDED.value, updated_at=now()
		`, e.Key, e.Value); err != nil {
			return fmt.Errorf("%w: %s: %v", ErrSaveFailed, e.Key, err)
		}
	}
	return nil
}

func (s *pgStore) Delete(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		if _, err := s.db.Exec(ctx, `DELETE FROM session_kv WHERE key=$1`, key); err != nil {
			return fmt.Errorf("delete failed: %s: %w", key, err)
		}
	}
	return nil
}
