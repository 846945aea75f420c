package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bsm/redislock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenStore imitates the single key redislock guards.
type tokenStore struct {
	owner    *fakeHeld
	releases int
}

type fakeHeld struct {
	store *tokenStore
}

func (h *fakeHeld) Release(context.Context) error {
	h.store.releases++
	if h.store.owner != h {
		return redislock.ErrLockNotHeld
	}
	h.store.owner = nil
	return nil
}

func (s *tokenStore) lock() *RedisLock {
	return &RedisLock{ttl: time.Minute, obtain: func(context.Context) (heldLock, error) {
		if s.owner != nil {
			return nil, redislock.ErrNotObtained
		}
		s.owner = &fakeHeld{store: s}
		return s.owner, nil
	}}
}

func TestRedisLockExclusive(t *testing.T) {
	ctx := context.Background()
	store := &tokenStore{}
	first, second := store.lock(), store.lock()

	ok, err := first.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "held key means skip, not error")

	require.NoError(t, second.Release(ctx))
	assert.Zero(t, store.releases, "a replica that never obtained must not release")

	require.NoError(t, first.Release(ctx))
	ok, err = second.Acquire(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisLockReleaseAfterExpiry(t *testing.T) {
	ctx := context.Background()
	store := &tokenStore{}
	lock := store.lock()
	_, err := lock.Acquire(ctx)
	require.NoError(t, err)

	// TTL ran out and another replica took the key.
	store.owner = &fakeHeld{store: store}
	require.NoError(t, lock.Release(ctx))
	assert.NotNil(t, store.owner)
}

func TestRedisLockBackendError(t *testing.T) {
	lock := &RedisLock{obtain: func(context.Context) (heldLock, error) {
		return nil, errors.New("connection refused")
	}}
	ok, err := lock.Acquire(context.Background())
	assert.False(t, ok)
	assert.ErrorContains(t, err, "connection refused")
}

func TestLocalLock(t *testing.T) {
	ctx := context.Background()
	lock := &LocalLock{}

	ok, _ := lock.Acquire(ctx)
	assert.True(t, ok)
	ok, _ = lock.Acquire(ctx)
	assert.False(t, ok)
	require.NoError(t, lock.Release(ctx))
	ok, _ = lock.Acquire(ctx)
	assert.True(t, ok)
}

func TestNewRedisLockValidation(t *testing.T) {
	_, err := NewRedisLock(nil, "k", time.Minute)
	assert.Error(t, err)

	client := redislock.New(nil)
	_, err = NewRedisLock(client, "", time.Minute)
	assert.Error(t, err)

	lock, err := NewRedisLock(client, "backoffice:lock:cron-worker", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, lock.ttl)
}
