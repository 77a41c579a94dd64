package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrRedisUnavailable is an exported constant or variable used by the authentication engine.
var ErrRedisUnavailable = errors.New("redis unavailable")

// Store is a Redis-backed session store that handles persistence and
// expiration of one principal snapshot per user.
type Store struct {
	redis  redis.UniversalClient
	prefix string
}

// NewStore creates a session [Store] backed by the given Redis client.
// prefix sets the Redis key namespace.
func NewStore(redis redis.UniversalClient, prefix string) *Store {
	return &Store{
		redis:  redis,
		prefix: prefix,
	}
}

func (s *Store) key(userID string) string {
	return s.prefix + ":" + userID
}

// Save persists a [Principal] to Redis with the given TTL, replacing any
// previous entry for the same user.
//
//	Performance: 1 Redis SET.
func (s *Store) Save(ctx context.Context, p *Principal, ttl time.Duration) error {
	data, err := Encode(p)
	if err != nil {
		return err
	}

	if err := s.redis.Set(ctx, s.key(p.ID), data, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return nil
}

// Get retrieves the principal snapshot for a user. Returns redis.Nil when
// no entry exists (logged out or expired).
//
//	Performance: 1 Redis GET.
func (s *Store) Get(ctx context.Context, userID string) (*Principal, error) {
	data, err := s.redis.Get(ctx, s.key(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	return Decode(data)
}

// Delete removes the session entry for a user. Deleting a missing entry
// is not an error.
//
//	Performance: 1 Redis DEL.
func (s *Store) Delete(ctx context.Context, userID string) error {
	if err := s.redis.Del(ctx, s.key(userID)).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

// Exists reports whether a session entry is present for the user.
//
//	Performance: 1 Redis EXISTS.
func (s *Store) Exists(ctx context.Context, userID string) (bool, error) {
	n, err := s.redis.Exists(ctx, s.key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return n > 0, nil
}

// Ping returns a point-in-time Redis availability check and latency.
func (s *Store) Ping(ctx context.Context) (time.Duration, error) {
	start := time.Now()
	if err := s.redis.Ping(ctx).Err(); err != nil {
		return time.Since(start), fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return time.Since(start), nil
}
