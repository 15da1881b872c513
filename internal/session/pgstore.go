package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore persists sessions in the sessions table.
type PGStore struct {
	db *pgxpool.Pool
}

// NewPGStore creates a Postgres-backed session store.
func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

// Get returns the payload for sid. Expired rows are deleted lazily here.
func (s *PGStore) Get(ctx context.Context, sid string) (*Data, error) {
	var (
		raw       []byte
		expiresAt time.Time
	)
	err := s.db.QueryRow(ctx,
		`SELECT data, expires_at FROM sessions WHERE sid = $1`,
		sid,
	).Scan(&raw, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	if time.Now().After(expiresAt) {
		_, _ = s.db.Exec(ctx, `DELETE FROM sessions WHERE sid = $1`, sid)
		return nil, ErrNoSession
	}

	data := &Data{}
	if err := json.Unmarshal(raw, data); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return data, nil
}

// Put upserts the payload for sid with the given expiry.
func (s *PGStore) Put(ctx context.Context, sid string, data *Data, expiresAt time.Time) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	_, err = s.db.Exec(ctx,
		`INSERT INTO sessions (sid, data, expires_at) VALUES ($1, $2, $3)
		 ON CONFLICT (sid) DO UPDATE SET data = $2, expires_at = $3`,
		sid, raw, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("put session: %w", err)
	}
	return nil
}

// Delete removes the session row. Missing rows are fine.
func (s *PGStore) Delete(ctx context.Context, sid string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM sessions WHERE sid = $1`, sid)
	return err
}
