package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultMergeLockTTL = 10 * time.Second

// Locker guards a cart merge against concurrent logins of the same user.
type Locker interface {
	Lock(ctx context.Context, userID uuid.UUID) (unlock func(context.Context) error, err error)
}

// redisStore defines the operations used by RedisLocker.
type redisStore interface {
	SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (string, error)
	Del(ctx context.Context, keys ...string) error
	LockKey(scope, id string) string
}

// ErrMergeInProgress is returned when another process holds the user's merge lock.
var ErrMergeInProgress = errors.New("cart merge already in progress")

// RedisLocker implements Locker using Redis SETNX + TTL.
type RedisLocker struct {
	client redisStore
	ttl    time.Duration
}

// NewRedisLocker constructs a Redis-backed merge lock.
func NewRedisLocker(client redisStore, ttl time.Duration) (*RedisLocker, error) {
	if client == nil {
		return nil, errors.New("redis client required for lock")
	}
	if ttl <= 0 {
		ttl = defaultMergeLockTTL
	}
	return &RedisLocker{client: client, ttl: ttl}, nil
}

// Lock owns the per-user merge key for the configured TTL. The returned
// function frees it only if the owner value still matches.
func (l *RedisLocker) Lock(ctx context.Context, userID uuid.UUID) (func(context.Context) error, error) {
	key := l.client.LockKey("cart_merge", userID.String())
	owner := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, owner, l.ttl)
	if err != nil {
		return nil, fmt.Errorf("setnx: %w", err)
	}
	if !ok {
		return nil, ErrMergeInProgress
	}
	return func(ctx context.Context) error {
		value, err := l.client.Get(ctx, key)
		if err != nil {
			if errors.Is(err, redis.Nil) {
				return nil
			}
			return fmt.Errorf("read lock owner: %w", err)
		}
		if value != owner {
			return nil
		}
		if err := l.client.Del(ctx, key); err != nil {
			return fmt.Errorf("delete lock: %w", err)
		}
		return nil
	}, nil
}

type noopLocker struct{}

func (noopLocker) Lock(context.Context, uuid.UUID) (func(context.Context) error, error) {
	return func(context.Context) error { return nil }, nil
}
