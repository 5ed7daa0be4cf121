package lock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLocker(t *testing.T) (*Locker, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewLocker(client, "admissions"), mr
}

func TestLockerAcquireIsExclusive(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "outcomes:ps-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = locker.Acquire(ctx, "outcomes:ps-1", time.Minute)
	require.NoError(t, err)
	require.False(t, ok)

	// a different process selection is unaffected
	ok, err = locker.Acquire(ctx, "outcomes:ps-2", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLockerReleaseAllowsReacquire(t *testing.T) {
	locker, _ := newTestLocker(t)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "convocation:list-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	require.NoError(t, locker.Release(ctx, "convocation:list-1"))

	ok, err = locker.Acquire(ctx, "convocation:list-1", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestLockerTTLExpires(t *testing.T) {
	locker, mr := newTestLocker(t)
	ctx := context.Background()

	ok, err := locker.Acquire(ctx, "outcomes:ps-1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = locker.Acquire(ctx, "outcomes:ps-1", time.Second)
	require.NoError(t, err)
	require.True(t, ok)
}
