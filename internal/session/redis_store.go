package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultTTL is how long an idle session is kept.
const DefaultTTL = 2 * time.Hour

// RedisProvider stores each session value under session:<id>:<key>.
// Every read or write pushes the key's expiry out by ttl.
type RedisProvider struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisProvider creates a RedisProvider. A non-positive ttl uses DefaultTTL.
func NewRedisProvider(client *redis.Client, ttl time.Duration) *RedisProvider {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisProvider{
		client: client,
		ttl:    ttl,
	}
}

// Open returns a handle on the session id.
func (p *RedisProvider) Open(id string) Session {
	return &redisSession{id: id, p: p}
}

type redisSession struct {
	id string
	p  *RedisProvider
}

func (s *redisSession) ID() string { return s.id }

func (s *redisSession) Get(ctx context.Context, key string) ([]byte, error) {
	k := sessionKey(s.id, key)
	data, err := s.p.client.GetEx(ctx, k, s.p.ttl).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s failed: %w", k, err)
	}
	return data, nil
}

func (s *redisSession) Set(ctx context.Context, key string, value []byte) error {
	k := sessionKey(s.id, key)
	if err := s.p.client.Set(ctx, k, value, s.p.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s failed: %w", k, err)
	}
	return nil
}

func (s *redisSession) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = sessionKey(s.id, key)
	}
	if err := s.p.client.Del(ctx, full...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func sessionKey(id, key string) string {
	return fmt.Sprintf("session:%s:%s", id, key)
}
