// Package integration provides integration tests for the assist engine
// against a real Redis instance.
package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcredis "github.com/testcontainers/testcontainers-go/modules/redis"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/cache"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/personalization"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/policy"
)

// RedisSetup represents the Redis test container infrastructure.
type RedisSetup struct {
	Container testcontainers.Container
	Addr      string
	cleanup   func()
}

// SetupRedis starts a Redis container for testing.
func SetupRedis(t *testing.T) *RedisSetup {
	t.Helper()
	ctx := context.Background()

	container, err := tcredis.Run(ctx,
		"redis:7.4-alpine",
		testcontainers.WithWaitStrategy(
			wait.ForLog("Ready to accept connections").
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	host, err := container.Host(ctx)
	require.NoError(t, err)

	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	return &RedisSetup{
		Container: container,
		Addr:      host + ":" + port.Port(),
		cleanup: func() {
			if err := container.Terminate(ctx); err != nil {
				t.Logf("Failed to terminate redis container: %v", err)
			}
		},
	}
}

// Cleanup terminates the Redis container.
func (s *RedisSetup) Cleanup() {
	if s.cleanup != nil {
		s.cleanup()
	}
}

func skipWithoutDocker(t *testing.T) {
	t.Helper()
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}
	if !isDockerAvailable() {
		t.Skip("Docker not available")
	}
}

func TestRedisCacheClient(t *testing.T) {
	skipWithoutDocker(t)

	setup := SetupRedis(t)
	defer setup.Cleanup()

	client, err := cache.NewRedisClient(cache.RedisConfig{
		Addr:   setup.Addr,
		Prefix: "assist-test:",
	})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	// Miss before any write.
	_, err = client.Get(ctx, "missing")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	// Round trip.
	require.NoError(t, client.Set(ctx, "greeting", []byte("bonjour"), time.Minute))
	val, err := client.Get(ctx, "greeting")
	require.NoError(t, err)
	assert.Equal(t, []byte("bonjour"), val)

	// Short TTLs expire.
	require.NoError(t, client.Set(ctx, "ephemeral", []byte("gone soon"), 500*time.Millisecond))
	time.Sleep(time.Second)
	_, err = client.Get(ctx, "ephemeral")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	// Delete removes the entry.
	require.NoError(t, client.Delete(ctx, "greeting"))
	_, err = client.Get(ctx, "greeting")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestRedisCacheClient_DeleteByPrefix(t *testing.T) {
	skipWithoutDocker(t)

	setup := SetupRedis(t)
	defer setup.Cleanup()

	client, err := cache.NewRedisClient(cache.RedisConfig{
		Addr:   setup.Addr,
		Prefix: "assist-test:",
	})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()

	shopA := cache.ShopKey("a.example.com", "policies")
	shopASession := cache.ShopKey("a.example.com", "session", "sess-1")
	shopB := cache.ShopKey("b.example.com", "policies")

	require.NoError(t, client.Set(ctx, shopA, []byte("a"), time.Minute))
	require.NoError(t, client.Set(ctx, shopASession, []byte("s"), time.Minute))
	require.NoError(t, client.Set(ctx, shopB, []byte("b"), time.Minute))

	require.NoError(t, client.DeleteByPrefix(ctx, cache.ShopKey("a.example.com")))

	_, err = client.Get(ctx, shopA)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
	_, err = client.Get(ctx, shopASession)
	assert.ErrorIs(t, err, cache.ErrCacheMiss)

	val, err := client.Get(ctx, shopB)
	require.NoError(t, err)
	assert.Equal(t, []byte("b"), val)
}

type staticFetcher struct {
	calls int
}

func (f *staticFetcher) Fetch(ctx context.Context, shopDomain string) ([]policy.RawPolicy, string, error) {
	f.calls++
	return []policy.RawPolicy{
		{Title: "Shipping policy", Body: "We ship worldwide within five business days."},
		{Title: "Refund policy", Body: "Returns accepted within 30 days of delivery."},
	}, "support@" + shopDomain, nil
}

func TestPolicyCacheOverRedis(t *testing.T) {
	skipWithoutDocker(t)

	setup := SetupRedis(t)
	defer setup.Cleanup()

	client, err := cache.NewRedisClient(cache.RedisConfig{
		Addr:   setup.Addr,
		Prefix: "assist-test:",
	})
	require.NoError(t, err)
	defer client.Close()

	fetcher := &staticFetcher{}
	policyCache := policy.NewCache(observability.DefaultLogger(), client, fetcher, policy.CacheConfig{
		TTL:          time.Hour,
		FetchTimeout: 5 * time.Second,
	})

	ctx := context.Background()

	policies, err := policyCache.Get(ctx, "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, "We ship worldwide within five business days.", policies.Shipping)
	assert.Equal(t, "Returns accepted within 30 days of delivery.", policies.Returns)
	assert.Equal(t, "support@shop.example.com", policies.ContactEmail)

	// Entries survive in Redis across cache instances.
	secondCache := policy.NewCache(observability.DefaultLogger(), client, fetcher, policy.CacheConfig{
		TTL:          time.Hour,
		FetchTimeout: 5 * time.Second,
	})
	_, err = secondCache.Get(ctx, "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, fetcher.calls)

	// Invalidation forces a refetch.
	require.NoError(t, policyCache.Invalidate(ctx, "shop.example.com"))
	_, err = policyCache.Get(ctx, "shop.example.com")
	require.NoError(t, err)
	assert.Equal(t, 2, fetcher.calls)
}

func TestSessionProfilesOverRedis(t *testing.T) {
	skipWithoutDocker(t)

	setup := SetupRedis(t)
	defer setup.Cleanup()

	client, err := cache.NewRedisClient(cache.RedisConfig{
		Addr:   setup.Addr,
		Prefix: "assist-test:",
	})
	require.NoError(t, err)
	defer client.Close()

	svc := personalization.NewRuleService(client, 0)
	ctx := context.Background()

	require.NoError(t, svc.RecordView(ctx, "shop.example.com", "sess-1", "prod-1"))
	require.NoError(t, svc.RecordView(ctx, "shop.example.com", "sess-1", "prod-2"))
	require.NoError(t, svc.SetPreferences(ctx, "shop.example.com", "sess-1", assist.UserPreferences{
		FavoriteColors: []string{"blue"},
	}))

	profile, err := svc.GetContext(ctx, "shop.example.com", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"prod-2", "prod-1"}, profile.RecentProductIDs)
	assert.Equal(t, []string{"blue"}, profile.Preferences.FavoriteColors)

	// Profiles are per-session.
	other, err := svc.GetContext(ctx, "shop.example.com", "sess-2")
	require.NoError(t, err)
	assert.Empty(t, other.RecentProductIDs)
}

// isDockerAvailable checks if Docker is available for testing.
func isDockerAvailable() bool {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := testcontainers.NewDockerProvider()
	if err != nil {
		return false
	}
	defer provider.Close()

	_, err = provider.Client().Ping(ctx)
	return err == nil
}
