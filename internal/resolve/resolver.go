package resolve

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/personalization"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/ranking"
)

// Resolver runs the fallback cascade. It always returns a structurally
// valid response: stage failures and panics degrade to the next stage, and
// if everything fails the shopper still gets a minimal greeting.
type Resolver struct {
	logger          *observability.Logger
	personalization personalization.Service
	composer        *Composer
	stages          []stage
	metrics         *Metrics
}

// NewResolver wires the cascade in its fixed order: delegate, intent,
// semantic, keyword, generic, no-products.
func NewResolver(logger *observability.Logger, svc personalization.Service, engine *ranking.Engine, booster *personalization.Booster, composer *Composer, delegate *DelegateClient) *Resolver {
	return &Resolver{
		logger:          logger,
		personalization: svc,
		composer:        composer,
		stages: []stage{
			&delegateStage{client: delegate},
			&intentStage{},
			&semanticStage{engine: engine, booster: booster},
			&keywordStage{engine: engine},
			&genericStage{engine: engine},
			&noProductsStage{},
		},
		metrics: NewMetrics(),
	}
}

// Metrics exposes the resolver's stage counters.
func (r *Resolver) Metrics() *Metrics {
	return r.metrics
}

// Resolve runs one chat turn through the cascade. It never returns nil and
// never panics.
func (r *Resolver) Resolve(ctx context.Context, req *assist.Request) (resp *assist.Response) {
	start := time.Now()
	r.metrics.total.Add(1)

	defer func() {
		if rec := recover(); rec != nil {
			r.metrics.panics.Add(1)
			r.logger.WithContext(ctx).Error().
				Interface("panic", rec).
				Msg("Resolution panicked, returning minimal response")
			resp = r.composer.Minimal(req)
		}
	}()

	if req == nil {
		req = &assist.Request{}
	}

	log := r.logger.WithContext(ctx).WithShop(req.Context.ShopDomain)

	intent := assist.IntentOther
	sentiment := assist.SentimentNeutral
	if r.personalization != nil {
		intent, _ = r.personalization.ClassifyIntent(req.UserMessage)
		sentiment = r.personalization.AnalyzeSentiment(req.UserMessage)
	}

	log.Debug().
		Str("intent", string(intent)).
		Str("sentiment", string(sentiment)).
		Int("catalog_size", len(req.Products)).
		Msg("Resolving chat turn")

	for _, s := range r.stages {
		result, err := r.attempt(ctx, s, req, intent)
		if err != nil {
			r.logStageFailure(log, s.Name(), err)
			continue
		}
		if result == nil {
			continue
		}

		r.metrics.recordResolved(s.Name())
		stageLog := log.WithStage(s.Name())

		if result.response != nil {
			stageLog.Info().
				Dur("latency", time.Since(start)).
				Msg("Resolved by delegate")
			return result.response
		}

		resp := r.composer.Compose(ctx, req, intent, sentiment, result)
		stageLog.Info().
			Int("recommendations", len(resp.Recommendations)).
			Float64("confidence", resp.Confidence).
			Dur("latency", time.Since(start)).
			Msg("Resolved locally")
		return resp
	}

	// Unreachable when the stage list is intact, but the contract holds
	// regardless.
	r.metrics.minimal.Add(1)
	log.Warn().Msg("All stages declined, returning minimal response")
	return r.composer.Minimal(req)
}

// attempt runs one stage with panic isolation.
func (r *Resolver) attempt(ctx context.Context, s stage, req *assist.Request, intent assist.Intent) (result *partialResult, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			r.metrics.panics.Add(1)
			result = nil
			err = fmt.Errorf("stage panicked: %v", rec)
		}
	}()

	return s.Attempt(ctx, req, intent)
}

// logStageFailure records a stage failure with enough detail to diagnose
// delegation problems without leaking endpoint secrets.
func (r *Resolver) logStageFailure(log *observability.Logger, stageName string, err error) {
	stageLog := log.WithStage(stageName)

	if errors.Is(err, ErrNotConfigured) {
		stageLog.Debug().Msg("Delegation not configured, using local stages")
		return
	}

	r.metrics.stageFailures.Add(1)

	var delegateErr *DelegateError
	if errors.As(err, &delegateErr) {
		evt := stageLog.Warn().
			Str("failure_class", string(delegateErr.Class)).
			Str("endpoint", delegateErr.Endpoint)
		if delegateErr.StatusCode > 0 {
			evt = evt.Int("status", delegateErr.StatusCode)
		}
		evt.Err(err).Msg("Delegation failed, falling through")
		return
	}

	stageLog.Warn().Err(err).Msg("Stage failed, falling through")
}
