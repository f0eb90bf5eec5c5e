package redisclient

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const storageTimeout = 2 * time.Second

// Storage is a fiber.Storage backed by go-redis. Keys are namespaced with a
// prefix so Reset only touches this storage's own keys.
type Storage struct {
	client redis.Cmdable
	prefix string
}

var _ fiber.Storage = (*Storage)(nil)

// NewStorage wraps client. The client is shared, so Close leaves it open.
func NewStorage(client redis.Cmdable, prefix string) *Storage {
	return &Storage{client: client, prefix: prefix}
}

func (s *Storage) ctx() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), storageTimeout)
}

// Get returns nil, nil for a missing key.
func (s *Storage) Get(key string) ([]byte, error) {
	if key == "" {
		return nil, nil
	}
	ctx, cancel := s.ctx()
	defer cancel()

	val, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

// Set stores val. A zero exp keeps the key until it is deleted.
func (s *Storage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Set(ctx, s.prefix+key, val, exp).Err()
}

func (s *Storage) Delete(key string) error {
	if key == "" {
		return nil
	}
	ctx, cancel := s.ctx()
	defer cancel()
	return s.client.Del(ctx, s.prefix+key).Err()
}

// Reset deletes every key under the prefix.
func (s *Storage) Reset() error {
	ctx, cancel := s.ctx()
	defer cancel()

	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *Storage) Close() error {
	return nil
}
