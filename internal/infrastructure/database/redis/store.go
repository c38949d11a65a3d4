package redis

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/docsight/docsight/internal/infrastructure/kvstore"
	apperrors "github.com/docsight/docsight/pkg/errors"
)

const keyPrefix = "docsight:viewstate:"

// Store implements kvstore.Store on Redis.  Records carry an optional TTL
// so that abandoned view state ages out on its own.
type Store struct {
	client *Client
	ttl    time.Duration
}

var _ kvstore.Store = (*Store)(nil)

// NewStore wraps client as a kvstore.Store.  A zero ttl means records
// never expire.
func NewStore(client *Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.client.Underlying().Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, kvstore.ErrNotFound
		}
		return nil, apperrors.Wrap(err, apperrors.ErrCodeStorageError, "redis get")
	}
	return data, nil
}

func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Underlying().Set(ctx, keyPrefix+key, value, s.ttl).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorageError, "redis set")
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, key string) error {
	if err := s.client.Underlying().Del(ctx, keyPrefix+key).Err(); err != nil {
		return apperrors.Wrap(err, apperrors.ErrCodeStorageError, "redis del")
	}
	return nil
}

func (s *Store) Keys(ctx context.Context, prefix string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
	)
	for {
		batch, next, err := s.client.Underlying().Scan(ctx, cursor, keyPrefix+prefix+"*", 128).Result()
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrCodeStorageError, "redis scan")
		}
		for _, k := range batch {
			keys = append(keys, k[len(keyPrefix):])
		}
		cursor = next
		if cursor == 0 {
			return keys, nil
		}
	}
}

func (s *Store) Close() error {
	return s.client.Close()
}
