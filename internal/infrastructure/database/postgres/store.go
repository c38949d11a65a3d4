package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/docsight/docsight/internal/infrastructure/kvstore"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

// Store implements kvstore.Store on the doc_view_state table.
type Store struct {
	pool *Pool
}

var _ kvstore.Store = (*Store)(nil)

// NewStore wraps pool as a kvstore.Store.
func NewStore(pool *Pool) *Store {
	return &Store{pool: pool}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.Underlying().QueryRow(ctx,
		`SELECT value FROM doc_view_state WHERE key = $1`, key,
	).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, kvstore.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorageError, "postgres get")
	}
	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.pool.Underlying().Exec(ctx,
		`INSERT INTO doc_view_state (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorageError, "postgres set")
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	_, err := s.pool.Underlying().Exec(ctx,
		`DELETE FROM doc_view_state WHERE key = $1`, key,
	)
	if err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorageError, "postgres remove")
	}
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	rows, err := s.pool.Underlying().Query(ctx,
		`SELECT key FROM doc_view_state WHERE key LIKE $1 || '%' ORDER BY key`, prefix,
	)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorageError, "postgres keys")
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeStorageError, "postgres keys scan")
		}
		keys = append(keys, k)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorageError, "postgres keys rows")
	}
	return keys, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}
