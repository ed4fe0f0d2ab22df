package cart

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	values map[string]string
}

func newFakeStore() *fakeStore {
	return &fakeStore{values: map[string]string{}}
}

func (f *fakeStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = fmt.Sprint(value)
	return true, nil
}

func (f *fakeStore) Get(_ context.Context, key string) (string, error) {
	v, ok := f.values[key]
	if !ok {
		return "", redis.Nil
	}
	return v, nil
}

func (f *fakeStore) Del(_ context.Context, keys ...string) error {
	for _, key := range keys {
		delete(f.values, key)
	}
	return nil
}

func (f *fakeStore) LockKey(scope, id string) string {
	return "souq:lock:" + scope + ":" + id
}

func TestRedisLockerExclusive(t *testing.T) {
	store := newFakeStore()
	locker, err := NewRedisLocker(store, time.Second)
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()

	unlock, err := locker.Lock(ctx, userID)
	require.NoError(t, err)

	_, err = locker.Lock(ctx, userID)
	assert.ErrorIs(t, err, ErrMergeInProgress)

	_, err = locker.Lock(ctx, uuid.New())
	require.NoError(t, err, "other users are not blocked")

	require.NoError(t, unlock(ctx))
	_, ok := store.values[store.LockKey("cart_merge", userID.String())]
	assert.False(t, ok)
	require.NoError(t, unlock(ctx), "second release is a no-op")
}

func TestRedisLockerKeepsForeignOwner(t *testing.T) {
	store := newFakeStore()
	locker, err := NewRedisLocker(store, time.Second)
	require.NoError(t, err)
	ctx := context.Background()
	userID := uuid.New()
	key := store.LockKey("cart_merge", userID.String())

	unlock, err := locker.Lock(ctx, userID)
	require.NoError(t, err)
	store.values[key] = "expired-and-retaken"

	require.NoError(t, unlock(ctx))
	assert.Equal(t, "expired-and-retaken", store.values[key])
}

func TestNewRedisLockerRequiresClient(t *testing.T) {
	_, err := NewRedisLocker(nil, 0)
	require.Error(t, err)
}
