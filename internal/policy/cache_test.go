package policy

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/cache"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
)

type stubFetcher struct {
	mu      sync.Mutex
	calls   int
	raw     []RawPolicy
	contact string
	err     error
	delay   time.Duration
}

func (f *stubFetcher) Fetch(ctx context.Context, shopDomain string) ([]RawPolicy, string, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, "", ctx.Err()
		}
	}

	if f.err != nil {
		return nil, "", f.err
	}
	return f.raw, f.contact, nil
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCache(fetcher Fetcher, clock *testClock) *Cache {
	store := cache.NewMemoryClientWithClock(100, clock.Now)
	c := NewCache(observability.DefaultLogger(), store, fetcher, CacheConfig{
		TTL:          time.Hour,
		FetchTimeout: 100 * time.Millisecond,
	})
	c.clock = clock.Now
	return c
}

func TestCache_FetchesOnMissAndServesFromCache(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{
		raw: []RawPolicy{
			{Title: "Shipping Policy", Body: "We ship worldwide."},
			{Title: "Refund Policy", Body: "Returns accepted within 30 days."},
		},
		contact: "help@shop.example.com",
	}
	c := newTestCache(fetcher, newTestClock())

	policies, err := c.Get(ctx, "shop.example.com")
	require.NoError(t, err)
	require.NotNil(t, policies)
	assert.Equal(t, "We ship worldwide.", policies.Shipping)
	assert.Equal(t, "Returns accepted within 30 days.", policies.Returns)
	assert.Equal(t, "help@shop.example.com", policies.ContactEmail)

	// Second call is a cache hit.
	_, err = c.Get(ctx, "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.callCount())
}

func TestCache_ExpiredEntryIsNeverServed(t *testing.T) {
	ctx := context.Background()
	clock := newTestClock()
	fetcher := &stubFetcher{raw: []RawPolicy{{Title: "Shipping", Body: "Fast shipping."}}}
	c := newTestCache(fetcher, clock)

	_, err := c.Get(ctx, "shop.example.com")
	require.NoError(t, err)

	// Just inside the TTL: still a hit.
	clock.Advance(59 * time.Minute)
	_, err = c.Get(ctx, "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.callCount())

	// At the TTL boundary the entry is stale and must be refetched.
	clock.Advance(time.Minute)
	_, err = c.Get(ctx, "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestCache_FailuresAreNotCached(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{err: errors.New("upstream down")}
	c := newTestCache(fetcher, newTestClock())

	policies, err := c.Get(ctx, "shop.example.com")
	assert.Error(t, err)
	assert.Nil(t, policies)

	// The failure was not cached, so the next call hits the network again.
	_, err = c.Get(ctx, "shop.example.com")
	assert.Error(t, err)
	assert.Equal(t, 2, fetcher.callCount())

	// Once the upstream recovers, the next call succeeds and caches.
	fetcher.err = nil
	fetcher.raw = []RawPolicy{{Title: "Shipping", Body: "Ships in two days."}}

	policies, err = c.Get(ctx, "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, "Ships in two days.", policies.Shipping)
}

func TestCache_FetchTimeoutReturnsError(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{
		raw:   []RawPolicy{{Title: "Shipping", Body: "Slow."}},
		delay: time.Second,
	}
	c := newTestCache(fetcher, newTestClock())

	policies, err := c.Get(ctx, "shop.example.com")
	assert.Error(t, err)
	assert.Nil(t, policies)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCache_Invalidate(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{raw: []RawPolicy{{Title: "Shipping", Body: "Free shipping."}}}
	c := newTestCache(fetcher, newTestClock())

	_, err := c.Get(ctx, "shop.example.com")
	require.NoError(t, err)

	require.NoError(t, c.Invalidate(ctx, "shop.example.com"))

	_, err = c.Get(ctx, "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.callCount())
}

func TestCache_EmptyShopDomain(t *testing.T) {
	c := newTestCache(&stubFetcher{}, newTestClock())

	policies, err := c.Get(context.Background(), "")
	assert.Error(t, err)
	assert.Nil(t, policies)
}

func TestCache_CoalescesConcurrentMisses(t *testing.T) {
	ctx := context.Background()
	fetcher := &stubFetcher{
		raw:   []RawPolicy{{Title: "Shipping", Body: "Coalesced."}},
		delay: 20 * time.Millisecond,
	}
	c := newTestCache(fetcher, newTestClock())

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			policies, err := c.Get(ctx, "shop.example.com")
			assert.NoError(t, err)
			assert.NotNil(t, policies)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fetcher.callCount())
}
