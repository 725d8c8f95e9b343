package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const revokedKeyPrefix = "auth:revoked:"

// TokenStore keeps the denylist of revoked token ids. Revoke reports false when the id
// was already revoked.
type TokenStore interface {
	Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error)
	IsRevoked(ctx context.Context, jti string) (bool, error)
	Ping(ctx context.Context) error
}

type RedisTokenStore struct {
	rdb *redis.Client
}

func NewRedisTokenStore(rdb *redis.Client) *RedisTokenStore {
	return &RedisTokenStore{rdb: rdb}
}

// Revoke denies jti until ttl elapses, which should be the token's remaining lifetime.
// SETNX makes the first revocation win when several requests race on one token.
func (s *RedisTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		return false, nil
	}
	return s.rdb.SetNX(ctx, revokedKeyPrefix+jti, "1", ttl).Result()
}

func (s *RedisTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	err := s.rdb.Get(ctx, revokedKeyPrefix+jti).Err()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *RedisTokenStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}

// NoopTokenStore is used when redis is disabled. Logout then only discards tokens client-side.
type NoopTokenStore struct{}

func (NoopTokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) (bool, error) {
	return true, nil
}

func (NoopTokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	return false, nil
}

func (NoopTokenStore) Ping(ctx context.Context) error {
	return nil
}
