package session

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers logged-out token ids until they expire.
type RevocationStore interface {
	Revoke(ctx context.Context, id string, ttl time.Duration) error
	IsRevoked(ctx context.Context, id string) (bool, error)
}

const revokedKeyPrefix = "session:revoked:"

// RedisRevocationStore keeps revoked ids as expiring Redis keys.
type RedisRevocationStore struct {
	client redis.Cmdable
}

func NewRedisRevocationStore(client redis.Cmdable) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	return s.client.Set(ctx, revokedKeyPrefix+id, "1", ttl).Err()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, id string) (bool, error) {
	err := s.client.Get(ctx, revokedKeyPrefix+id).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, redis.Nil):
		return false, nil
	default:
		return false, err
	}
}
