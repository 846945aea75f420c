package sales

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/bsm/redislock"
	"go.uber.org/multierr"

	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
	"github.com/angelmondragon/gasflow-backend/pkg/logger"
)

// Locker serialises engine operations over a set of keys. Keys are acquired
// in sorted order; the returned func releases all of them.
type Locker interface {
	Lock(ctx context.Context, keys []string) (func(), error)
}

// sortedUnique returns keys deduplicated and in acquisition order.
func sortedUnique(keys []string) []string {
	seen := make(map[string]struct{}, len(keys))
	out := make([]string, 0, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, key)
	}
	sort.Strings(out)
	return out
}

// LocalLocker keeps one mutex per key inside the process. It is enough for a
// single API instance.
type LocalLocker struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

type keyLock struct {
	ch   chan struct{}
	refs int
}

func NewLocalLocker() *LocalLocker {
	return &LocalLocker{locks: make(map[string]*keyLock)}
}

func (l *LocalLocker) Lock(ctx context.Context, keys []string) (func(), error) {
	ordered := sortedUnique(keys)
	held := make([]string, 0, len(ordered))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			l.unlock(held[i])
		}
	}
	for _, key := range ordered {
		if err := l.lock(ctx, key); err != nil {
			release()
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "sale is locked by another operation").
				WithDetails(map[string]any{"key": key})
		}
		held = append(held, key)
	}
	return release, nil
}

func (l *LocalLocker) lock(ctx context.Context, key string) error {
	l.mu.Lock()
	kl, ok := l.locks[key]
	if !ok {
		kl = &keyLock{ch: make(chan struct{}, 1)}
		l.locks[key] = kl
	}
	kl.refs++
	l.mu.Unlock()

	select {
	case kl.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		l.drop(key, kl)
		return ctx.Err()
	}
}

func (l *LocalLocker) unlock(key string) {
	l.mu.Lock()
	kl, ok := l.locks[key]
	l.mu.Unlock()
	if !ok {
		return
	}
	<-kl.ch
	l.drop(key, kl)
}

func (l *LocalLocker) drop(key string, kl *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	kl.refs--
	if kl.refs == 0 {
		delete(l.locks, key)
	}
}

// lockObtainer is the subset of *redislock.Client used by RedisLocker.
type lockObtainer interface {
	Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

// RedisLocker holds the keys in Redis so several API instances can share one
// database.
type RedisLocker struct {
	client lockObtainer
	prefix string
	ttl    time.Duration
	retry  time.Duration
	wait   time.Duration
	logg   *logger.Logger
}

// RedisLockerOptions configures lock lifetime and retry behaviour.
type RedisLockerOptions struct {
	TTL   time.Duration
	Retry time.Duration
	Wait  time.Duration
	// KeyPrefix namespaces the engine keys inside a shared Redis.
	KeyPrefix string

	Logger *logger.Logger
}

func NewRedisLocker(client lockObtainer, opts RedisLockerOptions) (*RedisLocker, error) {
	if client == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "redis lock client required")
	}
	if opts.TTL <= 0 {
		opts.TTL = 10 * time.Second
	}
	if opts.Retry <= 0 {
		opts.Retry = 50 * time.Millisecond
	}
	if opts.Wait <= 0 {
		opts.Wait = 5 * time.Second
	}
	return &RedisLocker{client: client, prefix: opts.KeyPrefix, ttl: opts.TTL, retry: opts.Retry, wait: opts.Wait, logg: opts.Logger}, nil
}

func (l *RedisLocker) Lock(ctx context.Context, keys []string) (func(), error) {
	ordered := sortedUnique(keys)
	held := make([]*redislock.Lock, 0, len(ordered))

	releaseAll := func() error {
		var errs error
		for i := len(held) - 1; i >= 0; i-- {
			// release must survive a cancelled request context
			if err := held[i].Release(context.WithoutCancel(ctx)); err != nil && !errors.Is(err, redislock.ErrLockNotHeld) {
				errs = multierr.Append(errs, err)
			}
		}
		return errs
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.wait)
	defer cancel()
	opts := &redislock.Options{RetryStrategy: redislock.LinearBackoff(l.retry)}

	for _, key := range ordered {
		lock, err := l.client.Obtain(waitCtx, l.prefix+key, l.ttl, opts)
		if err != nil {
			cause := multierr.Append(err, releaseAll())
			if errors.Is(err, redislock.ErrNotObtained) || errors.Is(err, context.DeadlineExceeded) {
				return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, cause, "sale is locked by another operation").
					WithDetails(map[string]any{"key": key})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, cause, "obtain sale lock")
		}
		held = append(held, lock)
	}

	return func() {
		if err := releaseAll(); err != nil && l.logg != nil {
			l.logg.Error(ctx, "release sale locks", err)
		}
	}, nil
}
