package resolve

import (
	"context"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/personalization"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/ranking"
)

// Stage names, used for logging and metrics.
const (
	StageDelegate   = "delegate"
	StageIntent     = "intent"
	StageSemantic   = "semantic"
	StageKeyword    = "keyword"
	StageGeneric    = "generic"
	StageNoProducts = "no_products"
)

// partialResult is what a stage yields on success. Either a terminal
// response (delegation) or material for the composer.
type partialResult struct {
	// response short-circuits composition when the delegate answered.
	response *assist.Response

	recommendations []assist.Recommendation
	noProducts      bool
	confidence      float64
}

// stage is one fallback strategy. A (nil, nil) return means "no result,
// try the next stage"; errors are logged by the resolver and treated the
// same way.
type stage interface {
	Name() string
	Attempt(ctx context.Context, req *assist.Request, intent assist.Intent) (*partialResult, error)
}

// Per-stage confidence bands. The composer nudges these by the top
// relevance score, so a strong keyword match still beats a weak semantic
// one.
const (
	semanticConfidence   = 0.8
	intentConfidence     = 0.75
	keywordConfidence    = 0.7
	genericConfidence    = 0.6
	noProductsConfidence = 0.5
	minimalConfidence    = 0.45
)

// delegateStage forwards the request to the remote endpoint when one is
// configured.
type delegateStage struct {
	client *DelegateClient
}

func (s *delegateStage) Name() string { return StageDelegate }

func (s *delegateStage) Attempt(ctx context.Context, req *assist.Request, _ assist.Intent) (*partialResult, error) {
	if s.client == nil {
		return nil, ErrNotConfigured
	}

	resp, err := s.client.Resolve(ctx, req)
	if err != nil {
		return nil, err
	}
	return &partialResult{response: resp}, nil
}

// intentStage answers conversational intents (greetings, policy questions,
// support) with a localized template instead of product ranking.
// Product-seeking intents pass through to the ranking stages.
type intentStage struct{}

func (s *intentStage) Name() string { return StageIntent }

func (s *intentStage) Attempt(_ context.Context, _ *assist.Request, intent assist.Intent) (*partialResult, error) {
	switch intent {
	case assist.IntentSearch, assist.IntentComparison, assist.IntentOther:
		return nil, nil
	}
	return &partialResult{confidence: intentConfidence}, nil
}

// semanticStage ranks via the embedding collaborator for product-seeking
// intents, then boosts by session history when a session id exists.
type semanticStage struct {
	engine  *ranking.Engine
	booster *personalization.Booster
}

func (s *semanticStage) Name() string { return StageSemantic }

func (s *semanticStage) Attempt(ctx context.Context, req *assist.Request, intent assist.Intent) (*partialResult, error) {
	if len(req.Products) == 0 {
		return nil, nil
	}
	switch intent {
	case assist.IntentSearch, assist.IntentComparison, assist.IntentOther:
	default:
		return nil, nil
	}
	if !s.engine.SemanticAvailable(ctx) {
		return nil, nil
	}

	recs, err := s.engine.RankSemantic(ctx, req.Context.ShopDomain, req.UserMessage, req.Products)
	if err != nil {
		return nil, err
	}
	if len(recs) == 0 {
		return nil, nil
	}

	if req.SessionID != "" && s.booster != nil {
		recs = s.booster.Boost(ctx, req.Context.ShopDomain, req.SessionID, recs, req.Context.UserPreferences)
	}

	return &partialResult{recommendations: recs, confidence: semanticConfidence}, nil
}

// keywordStage ranks by token matching when the semantic stage yielded
// nothing.
type keywordStage struct {
	engine *ranking.Engine
}

func (s *keywordStage) Name() string { return StageKeyword }

func (s *keywordStage) Attempt(_ context.Context, req *assist.Request, _ assist.Intent) (*partialResult, error) {
	if len(req.Products) == 0 {
		return nil, nil
	}

	recs := s.engine.RankKeyword(req.UserMessage, req.Products, req.Context.UserPreferences)
	if len(recs) == 0 {
		return nil, nil
	}
	return &partialResult{recommendations: recs, confidence: keywordConfidence}, nil
}

// genericStage samples the head of the catalog at neutral relevance.
type genericStage struct {
	engine *ranking.Engine
}

func (s *genericStage) Name() string { return StageGeneric }

func (s *genericStage) Attempt(_ context.Context, req *assist.Request, _ assist.Intent) (*partialResult, error) {
	if len(req.Products) == 0 {
		return nil, nil
	}

	recs := s.engine.GenericSample(req.Products)
	return &partialResult{recommendations: recs, confidence: genericConfidence}, nil
}

// noProductsStage terminates the cascade for empty catalogs.
type noProductsStage struct{}

func (s *noProductsStage) Name() string { return StageNoProducts }

func (s *noProductsStage) Attempt(_ context.Context, req *assist.Request, _ assist.Intent) (*partialResult, error) {
	if len(req.Products) != 0 {
		return nil, nil
	}
	return &partialResult{noProducts: true, confidence: noProductsConfidence}, nil
}
