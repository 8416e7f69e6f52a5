package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func TestMemoryStoreSetGetDelete(t *testing.T) {
	store := NewMemoryStore(WithEvictInterval(0))
	defer store.Close()
	ctx := context.Background()

	_, ok, err := store.Get(ctx, "missing")
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	val, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), val)

	// Returned slices are copies.
	val[0] = 'x'
	again, _, _ := store.Get(ctx, "k")
	require.Equal(t, []byte("v"), again)

	require.NoError(t, store.Delete(ctx, "k", "other"))
	_, ok, _ = store.Get(ctx, "k")
	require.False(t, ok)
}

func TestMemoryStoreTTLBoundary(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(WithClock(clock.Now), WithEvictInterval(0))
	defer store.Close()
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, HomeKey, []byte(`{}`), HomeTTL))

	clock.Advance(HomeTTL - time.Millisecond)
	_, ok, err := store.Get(ctx, HomeKey)
	require.NoError(t, err)
	require.True(t, ok)

	clock.Advance(2 * time.Millisecond)
	_, ok, err = store.Get(ctx, HomeKey)
	require.NoError(t, err)
	require.False(t, ok)

	removed, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)
	require.Zero(t, store.Len())
}

func TestMemoryStoreIncrementWithTTL(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore(WithClock(clock.Now), WithEvictInterval(0))
	defer store.Close()
	ctx := context.Background()

	count, ttl, err := store.IncrementWithTTL(ctx, "login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
	require.Equal(t, time.Minute, ttl)

	clock.Advance(20 * time.Second)
	count, ttl, err = store.IncrementWithTTL(ctx, "login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
	require.Equal(t, 40*time.Second, ttl)

	clock.Advance(time.Minute)
	count, _, err = store.IncrementWithTTL(ctx, "login:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.EqualValues(t, 1, count)
}

func TestMemoryStoreClosed(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())
	require.NoError(t, store.Close())

	require.Error(t, store.Ping(context.Background()))
	require.Error(t, store.Set(context.Background(), "k", nil, 0))
	_, _, err := store.Get(context.Background(), "k")
	require.Error(t, err)
}

func TestNopStoreAlwaysMisses(t *testing.T) {
	var store Store = NopStore{}
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, store.Ping(ctx))
}
