package accumulator

import (
	"context"
	"encoding/hex"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/anoncred/anoncred/pkg/backend"
)

// RedisStore backs a Store with a single Redis set, repurposing the
// teacher's kvclient connection pattern (Addr/Password/DB, go-redis/v9)
// for accumulator membership state instead of a revocation-list cache.
type RedisStore struct {
	client *redis.Client
	key    string
}

// RedisConfig mirrors the teacher's kvclient connection fields.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRedisStore opens a client against cfg and scopes all set operations
// under key (so multiple accumulators, e.g. several credential types'
// revocation lists, can share one Redis instance).
func NewRedisStore(cfg RedisConfig, key string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
		key: key,
	}
}

// Close releases the underlying connection.
func (s *RedisStore) Close() error { return s.client.Close() }

func (s *RedisStore) Has(ctx context.Context, e backend.Scalar) (bool, error) {
	ok, err := s.client.SIsMember(ctx, s.key, scalarKey(e)).Result()
	if err != nil {
		return false, fmt.Errorf("accumulator redis store: %w", err)
	}
	return ok, nil
}

func (s *RedisStore) Add(ctx context.Context, e backend.Scalar) error {
	has, err := s.Has(ctx, e)
	if err != nil {
		return err
	}
	if has {
		return ErrAlreadyMember
	}
	if err := s.client.SAdd(ctx, s.key, scalarKey(e)).Err(); err != nil {
		return fmt.Errorf("accumulator redis store: %w", err)
	}
	return nil
}

func (s *RedisStore) Remove(ctx context.Context, e backend.Scalar) error {
	has, err := s.Has(ctx, e)
	if err != nil {
		return err
	}
	if !has {
		return ErrNotMember
	}
	if err := s.client.SRem(ctx, s.key, scalarKey(e)).Err(); err != nil {
		return fmt.Errorf("accumulator redis store: %w", err)
	}
	return nil
}

func (s *RedisStore) Members(ctx context.Context) ([]backend.Scalar, error) {
	keys, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, fmt.Errorf("accumulator redis store: %w", err)
	}
	out := make([]backend.Scalar, 0, len(keys))
	for _, k := range keys {
		b, err := hex.DecodeString(k)
		if err != nil {
			return nil, fmt.Errorf("accumulator redis store: corrupt member key: %w", err)
		}
		out = append(out, backend.ScalarFromBytes(b))
	}
	return out, nil
}
