package cron

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/bsm/redislock"
)

const defaultLockTTL = 5 * time.Minute

// Lock keeps worker replicas from running the same cycle twice.
type Lock interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context) error
}

type heldLock interface {
	Release(ctx context.Context) error
}

// RedisLock holds one redislock key per cycle. Release is a compare-and-delete
// on the token, so a lock that expired and was taken by another replica is
// left alone.
type RedisLock struct {
	obtain func(ctx context.Context) (heldLock, error)
	ttl    time.Duration

	mu   sync.Mutex
	held heldLock
}

// NewRedisLock does not retry: a held key means another replica owns the
// cycle and this one should skip it.
func NewRedisLock(client *redislock.Client, key string, ttl time.Duration) (*RedisLock, error) {
	if client == nil {
		return nil, errors.New("redis lock client required")
	}
	if key == "" {
		return nil, errors.New("lock key is required")
	}
	if ttl <= 0 {
		ttl = defaultLockTTL
	}
	return &RedisLock{
		ttl: ttl,
		obtain: func(ctx context.Context) (heldLock, error) {
			lock, err := client.Obtain(ctx, key, ttl, nil)
			if err != nil {
				return nil, err
			}
			return lock, nil
		},
	}, nil
}

func (l *RedisLock) Acquire(ctx context.Context) (bool, error) {
	held, err := l.obtain(ctx)
	if errors.Is(err, redislock.ErrNotObtained) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("obtain cron lock: %w", err)
	}
	l.mu.Lock()
	l.held = held
	l.mu.Unlock()
	return true, nil
}

// Release is a no-op when nothing is held or the TTL already ran out.
func (l *RedisLock) Release(ctx context.Context) error {
	l.mu.Lock()
	held := l.held
	l.held = nil
	l.mu.Unlock()
	if held == nil {
		return nil
	}
	if err := held.Release(ctx); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
		return fmt.Errorf("release cron lock: %w", err)
	}
	return nil
}

// LocalLock serialises cycles inside a single process when Redis is absent.
type LocalLock struct {
	mu sync.Mutex
}

func (l *LocalLock) Acquire(context.Context) (bool, error) {
	return l.mu.TryLock(), nil
}

func (l *LocalLock) Release(context.Context) error {
	l.mu.Unlock()
	return nil
}
