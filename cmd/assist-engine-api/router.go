// Package main provides the API router setup.
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/cmd/assist-engine-api/handlers"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/cmd/assist-engine-api/middleware"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/cache"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/config"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/embedding"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/language"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/personalization"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/policy"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/ranking"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/resolve"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/templates"
)

// NewRouter wires the resolution engine and returns the API router.
func NewRouter(logger *observability.Logger, cfg *config.Config) (http.Handler, error) {
	store, err := buildCache(logger, cfg)
	if err != nil {
		return nil, err
	}

	templateStore, err := templates.NewStore()
	if err != nil {
		return nil, err
	}

	policyCache := policy.NewCache(logger, store, policy.NewHTTPFetcher(policy.FetcherConfig{
		EndpointTemplate: cfg.Policy.EndpointTemplate,
		Timeout:          cfg.Policy.FetchTimeout,
	}), policy.CacheConfig{
		TTL:          cfg.Policy.TTL,
		FetchTimeout: cfg.Policy.FetchTimeout,
	})

	var searcher embedding.Searcher
	if cfg.SemanticEnabled() {
		embedder, err := embedding.NewClient(embedding.Config{
			APIKey:    cfg.Embedding.APIKey,
			Model:     cfg.Embedding.Model,
			BaseURL:   cfg.Embedding.BaseURL,
			Dimension: cfg.Embedding.Dimension,
			Timeout:   cfg.Embedding.Timeout,
		})
		if err != nil {
			return nil, err
		}
		searcher = embedding.NewVectorSearcher(embedder)
	}

	engine := ranking.NewEngine(searcher)

	// With personalization disabled the rule service keeps classifying
	// intents but session writes and lookups become no-ops.
	var sessionStore cache.Client
	if cfg.Personalization.Enabled {
		sessionStore = store
	}
	svc := personalization.NewRuleService(sessionStore, cfg.Personalization.SessionTTL)

	var booster *personalization.Booster
	if cfg.Personalization.Enabled {
		booster = personalization.NewBooster(logger, svc)
	}

	composer := resolve.NewComposer(logger, templateStore, language.NewDetector(), policyCache, cfg.Policy.PreviewLength)

	delegate := resolve.NewDelegateClient(resolve.DelegateConfig{
		Endpoint: cfg.Delegation.Endpoint,
		APIKey:   cfg.Delegation.APIKey,
		Timeout:  cfg.Delegation.Timeout,
	}, logger)

	resolver := resolve.NewResolver(logger, svc, engine, booster, composer, delegate)

	resolveHandler := handlers.NewResolveHandler(logger, resolver)
	policyHandler := handlers.NewPolicyHandler(logger, policyCache)
	eventsHandler := handlers.NewEventsHandler(logger, svc)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS([]string{"*"}))
	r.Use(chimiddleware.Timeout(cfg.Server.ReadTimeout))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy","service":"assist-engine"}`))
	})

	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ready"}`))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.Auth(middleware.AuthConfig{
			Enabled: cfg.Auth.Enabled,
			APIKey:  cfg.Auth.APIKey,
		}))

		r.Route("/assist", func(r chi.Router) {
			r.Post("/resolve", resolveHandler.Resolve)
			r.Get("/metrics", resolveHandler.Metrics)
			r.Post("/events/view", eventsHandler.View)
			r.Put("/events/preferences", eventsHandler.Preferences)
		})

		r.Route("/shops/{shop}/policies", func(r chi.Router) {
			r.Get("/", policyHandler.Get)
			r.Delete("/cache", policyHandler.Invalidate)
		})
	})

	return r, nil
}

// buildCache creates the configured cache backend.
func buildCache(logger *observability.Logger, cfg *config.Config) (cache.Client, error) {
	if cfg.Cache.Driver == "redis" {
		client, err := cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.Cache.Redis.Addr,
			Password: cfg.Cache.Redis.Password,
			DB:       cfg.Cache.Redis.DB,
			PoolSize: cfg.Cache.Redis.PoolSize,
			Prefix:   cfg.Cache.Redis.Prefix,
		})
		if err != nil {
			return nil, err
		}
		logger.Info().Str("addr", cfg.Cache.Redis.Addr).Msg("Using Redis cache")
		return client, nil
	}

	logger.Info().Int("max_entries", cfg.Cache.MaxEntries).Msg("Using in-memory cache")
	return cache.NewMemoryClient(cfg.Cache.MaxEntries), nil
}
