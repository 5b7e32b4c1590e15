package cache

import (
	"context"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestMemoryClient_RoundTrip(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient(100)

	_, err := client.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, client.Set(ctx, "greeting", []byte("hello"), time.Minute))

	val, err := client.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), val)

	require.NoError(t, client.Delete(ctx, "greeting"))
	_, err = client.Get(ctx, "greeting")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	client := NewMemoryClientWithClock(100, clock.Now)

	require.NoError(t, client.Set(ctx, "ephemeral", []byte("v"), time.Minute))

	clock.Advance(59 * time.Second)
	_, err := client.Get(ctx, "ephemeral")
	require.NoError(t, err)

	clock.Advance(2 * time.Second)
	_, err = client.Get(ctx, "ephemeral")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	client := NewMemoryClient(100)

	require.NoError(t, client.Set(ctx, ShopKey("a.example.com", "policies"), []byte("a"), time.Minute))
	require.NoError(t, client.Set(ctx, ShopKey("a.example.com", "session", "s1"), []byte("s"), time.Minute))
	require.NoError(t, client.Set(ctx, ShopKey("b.example.com", "policies"), []byte("b"), time.Minute))

	require.NoError(t, client.DeleteByPrefix(ctx, ShopKey("a.example.com")))

	_, err := client.Get(ctx, ShopKey("a.example.com", "policies"))
	assert.ErrorIs(t, err, ErrCacheMiss)
	_, err = client.Get(ctx, ShopKey("a.example.com", "session", "s1"))
	assert.ErrorIs(t, err, ErrCacheMiss)

	val, err := client.Get(ctx, ShopKey("b.example.com", "policies"))
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), val)
}

func TestMemoryClient_EvictsWhenFull(t *testing.T) {
	ctx := context.Background()
	clock := newFakeClock()
	client := NewMemoryClientWithClock(2, clock.Now)

	// "old" has the earliest expiry and is evicted when the third key
	// arrives.
	require.NoError(t, client.Set(ctx, "old", []byte("1"), time.Minute))
	require.NoError(t, client.Set(ctx, "mid", []byte("2"), 2*time.Minute))
	require.NoError(t, client.Set(ctx, "new", []byte("3"), 3*time.Minute))

	_, err := client.Get(ctx, "old")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = client.Get(ctx, "mid")
	require.NoError(t, err)
	_, err = client.Get(ctx, "new")
	require.NoError(t, err)
}

func TestMemoryClient_CloseStopsCleanupGoroutine(t *testing.T) {
	before := runtime.NumGoroutine()

	clients := make([]*MemoryClient, 0, 50)
	for i := 0; i < 50; i++ {
		clients = append(clients, NewMemoryClient(10))
	}

	for _, client := range clients {
		require.NoError(t, client.Close())
		// Close is idempotent.
		require.NoError(t, client.Close())
	}

	assert.Eventually(t, func() bool {
		return runtime.NumGoroutine() <= before+2
	}, 2*time.Second, 10*time.Millisecond,
		"cleanup goroutines must exit after Close")
}

func TestKeyHelpers(t *testing.T) {
	assert.Equal(t, "a:b:c", Key("a", "b", "c"))
	assert.Equal(t, "shop:demo.example.com:policies", ShopKey("demo.example.com", "policies"))
	assert.Equal(t, "shop:demo.example.com", ShopKey("demo.example.com"))
}
