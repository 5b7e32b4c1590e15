package policy

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/cache"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
)

// DefaultTTL is how long a cached policy entry stays fresh.
const DefaultTTL = time.Hour

// DefaultFetchTimeout bounds one policy fetch over the network.
const DefaultFetchTimeout = 10 * time.Second

// Cache serves per-shop policies with TTL caching. Fetch failures are
// returned to the caller and never cached, so the next call retries the
// network. Concurrent misses for the same shop are coalesced into a single
// fetch.
type Cache struct {
	logger  *observability.Logger
	store   cache.Client
	fetcher Fetcher
	cfg     CacheConfig
	group   singleflight.Group
	clock   func() time.Time
}

// CacheConfig configures the policy cache.
type CacheConfig struct {
	TTL          time.Duration
	FetchTimeout time.Duration
}

// NewCache creates a policy cache backed by the given cache client.
func NewCache(logger *observability.Logger, store cache.Client, fetcher Fetcher, cfg CacheConfig) *Cache {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	return &Cache{
		logger:  logger,
		store:   store,
		fetcher: fetcher,
		cfg:     cfg,
		clock:   time.Now,
	}
}

// Get returns the shop's policies, serving a fresh cache entry when one
// exists and fetching otherwise. It returns nil with an error on any fetch
// failure; the failure is not cached.
func (c *Cache) Get(ctx context.Context, shopDomain string) (*Policies, error) {
	if shopDomain == "" {
		return nil, errors.New("policy: empty shop domain")
	}

	key := cache.ShopKey(shopDomain, "policies")

	if data, err := c.store.Get(ctx, key); err == nil {
		var entry Entry
		if err := json.Unmarshal(data, &entry); err == nil && c.clock().Sub(entry.FetchedAt) < c.cfg.TTL {
			return &entry.Policies, nil
		}
		// Corrupt or stale payload: drop it and refetch.
		_ = c.store.Delete(ctx, key)
	}

	v, err, _ := c.group.Do(shopDomain, func() (interface{}, error) {
		return c.fetchAndStore(ctx, shopDomain, key)
	})
	if err != nil {
		c.logger.WithShop(shopDomain).Warn().Err(err).Msg("Policy fetch failed")
		return nil, err
	}

	entry := v.(*Entry)
	return &entry.Policies, nil
}

// Invalidate evicts a single shop's cached policies.
func (c *Cache) Invalidate(ctx context.Context, shopDomain string) error {
	return c.store.Delete(ctx, cache.ShopKey(shopDomain, "policies"))
}

// fetchAndStore performs the bounded network fetch and caches the result on
// success only.
func (c *Cache) fetchAndStore(ctx context.Context, shopDomain, key string) (*Entry, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, c.cfg.FetchTimeout)
	defer cancel()

	raw, contactEmail, err := c.fetcher.Fetch(fetchCtx, shopDomain)
	if err != nil {
		return nil, fmt.Errorf("policy fetch for %s: %w", shopDomain, err)
	}

	entry := &Entry{
		Shop:      shopDomain,
		Policies:  MapPolicies(raw, contactEmail),
		FetchedAt: c.clock(),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return nil, fmt.Errorf("encode policy entry: %w", err)
	}

	if err := c.store.Set(ctx, key, data, c.cfg.TTL); err != nil {
		// A failed cache write still yields a usable result; the next call
		// just fetches again.
		c.logger.WithShop(shopDomain).Warn().Err(err).Msg("Policy cache write failed")
	}

	return entry, nil
}
