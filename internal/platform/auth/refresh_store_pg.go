package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgRow represents a single row returned by QueryRow.
type pgRow interface {
	Scan(dest ...any) error
}

// pgConn is the minimal database interface required by PGRefreshStore.
type pgConn interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgRow
	Exec(ctx context.Context, sql string, args ...any) error
}

// PGRefreshStore persists the per-user refresh slot in the refresh_tokens
// table (see db migrations). The user_id primary key gives the overwrite
// semantics.
type PGRefreshStore struct {
	db pgConn
}

func NewPGRefreshStore(db pgConn) *PGRefreshStore {
	return &PGRefreshStore{db: db}
}

// NewPGRefreshStoreFromPool wraps a *pgxpool.Pool.
func NewPGRefreshStoreFromPool(pool *pgxpool.Pool) *PGRefreshStore {
	return &PGRefreshStore{db: &pgxPoolWrapper{pool: pool}}
}

func (s *PGRefreshStore) Store(ctx context.Context, userID, token string) error {
	const query = `INSERT INTO refresh_tokens (user_id, token, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (user_id) DO UPDATE SET token = EXCLUDED.token,
                                    updated_at = EXCLUDED.updated_at`
	if err := s.db.Exec(ctx, query, userID, token); err != nil {
		return fmt.Errorf("store refresh token: %w", err)
	}
	return nil
}

func (s *PGRefreshStore) Get(ctx context.Context, userID string) (string, bool, error) {
	const query = `SELECT token FROM refresh_tokens WHERE user_id = $1`
	var token string
	if err := s.db.QueryRow(ctx, query, userID).Scan(&token); err != nil {
		if isNoRows(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("get refresh token: %w", err)
	}
	return token, true, nil
}

func (s *PGRefreshStore) Remove(ctx context.Context, userID string) error {
	if err := s.db.Exec(ctx, `DELETE FROM refresh_tokens WHERE user_id = $1`, userID); err != nil {
		return fmt.Errorf("remove refresh token: %w", err)
	}
	return nil
}

func isNoRows(err error) bool {
	if errors.Is(err, pgx.ErrNoRows) {
		return true
	}
	return err != nil && strings.Contains(err.Error(), "no rows")
}

// pgxPoolWrapper adapts *pgxpool.Pool to pgConn; pgxpool's Exec also
// returns a command tag.
type pgxPoolWrapper struct {
	pool *pgxpool.Pool
}

func (w *pgxPoolWrapper) QueryRow(ctx context.Context, sql string, args ...any) pgRow {
	return w.pool.QueryRow(ctx, sql, args...)
}

func (w *pgxPoolWrapper) Exec(ctx context.Context, sql string, args ...any) error {
	_, err := w.pool.Exec(ctx, sql, args...)
	return err
}
