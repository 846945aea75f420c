package sales

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/bsm/redislock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/gasflow-backend/pkg/errors"
)

func TestSortedUnique(t *testing.T) {
	got := sortedUnique([]string{"stock:b", "", "sale:1", "stock:a", "stock:b"})
	require.Equal(t, []string{"sale:1", "stock:a", "stock:b"}, got)
}

func TestLocalLockerSerialisesSameKey(t *testing.T) {
	locker := NewLocalLocker()
	ctx := context.Background()

	release, err := locker.Lock(ctx, []string{"stock:a", "stock:b"})
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r, err := locker.Lock(ctx, []string{"stock:b"})
		if err == nil {
			close(acquired)
			r()
		}
	}()

	select {
	case <-acquired:
		t.Fatal("second lock acquired while the key was held")
	case <-time.After(50 * time.Millisecond):
	}

	release()
	select {
	case <-acquired:
	case <-time.After(time.Second):
		t.Fatal("second lock never acquired")
	}
}

func TestLocalLockerTimesOutWithConflict(t *testing.T) {
	locker := NewLocalLocker()
	release, err := locker.Lock(context.Background(), []string{"sale:1"})
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = locker.Lock(ctx, []string{"sale:0", "sale:1"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))

	// sale:0 was released when sale:1 timed out
	r, err := locker.Lock(context.Background(), []string{"sale:0"})
	require.NoError(t, err)
	r()
}

func TestLocalLockerDisjointKeysRunInParallel(t *testing.T) {
	locker := NewLocalLocker()
	var wg sync.WaitGroup
	for _, key := range []string{"stock:a", "stock:b", "stock:c"} {
		wg.Add(1)
		go func(key string) {
			defer wg.Done()
			release, err := locker.Lock(context.Background(), []string{key})
			if !assert.NoError(t, err) {
				return
			}
			time.Sleep(10 * time.Millisecond)
			release()
		}(key)
	}
	wg.Wait()
	require.Empty(t, locker.locks)
}

type fakeObtainer struct {
	obtainFn func(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error)
}

func (f *fakeObtainer) Obtain(ctx context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error) {
	return f.obtainFn(ctx, key, ttl, opt)
}

func TestRedisLockerMapsNotObtainedToConflict(t *testing.T) {
	var keys []string
	client := &fakeObtainer{obtainFn: func(_ context.Context, key string, ttl time.Duration, opt *redislock.Options) (*redislock.Lock, error) {
		keys = append(keys, key)
		require.Equal(t, 3*time.Second, ttl)
		require.NotNil(t, opt.RetryStrategy)
		return nil, redislock.ErrNotObtained
	}}
	locker, err := NewRedisLocker(client, RedisLockerOptions{TTL: 3 * time.Second})
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), []string{"stock:b", "stock:a"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeConflict))
	require.Equal(t, []string{"stock:a"}, keys, "keys are tried in sorted order")
}

func TestRedisLockerWrapsBackendErrors(t *testing.T) {
	client := &fakeObtainer{obtainFn: func(context.Context, string, time.Duration, *redislock.Options) (*redislock.Lock, error) {
		return nil, errors.New("connection refused")
	}}
	locker, err := NewRedisLocker(client, RedisLockerOptions{})
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), []string{"sale:1"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))

	_, err = NewRedisLocker(nil, RedisLockerOptions{})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestRedisLockerWithNoKeys(t *testing.T) {
	client := &fakeObtainer{obtainFn: func(context.Context, string, time.Duration, *redislock.Options) (*redislock.Lock, error) {
		t.Fatal("no key should be obtained")
		return nil, nil
	}}
	locker, err := NewRedisLocker(client, RedisLockerOptions{})
	require.NoError(t, err)
	release, err := locker.Lock(context.Background(), nil)
	require.NoError(t, err)
	release()
}

func TestRedisLockerPrefixesKeys(t *testing.T) {
	var keys []string
	client := &fakeObtainer{obtainFn: func(_ context.Context, key string, _ time.Duration, _ *redislock.Options) (*redislock.Lock, error) {
		keys = append(keys, key)
		return nil, redislock.ErrNotObtained
	}}
	locker, err := NewRedisLocker(client, RedisLockerOptions{KeyPrefix: "backoffice:lock:sales:"})
	require.NoError(t, err)

	_, err = locker.Lock(context.Background(), []string{"sale:1"})
	require.Error(t, err)
	require.Equal(t, []string{"backoffice:lock:sales:sale:1"}, keys)
}
