package resolve

import (
	"context"
	"strings"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/language"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/policy"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/templates"
)

// minPolicyLength is the shortest policy text worth previewing. Anything
// shorter reads like a placeholder, so the "not configured" message is used
// instead.
const minPolicyLength = 20

// Composer turns a stage result into the final localized response.
type Composer struct {
	logger        *observability.Logger
	store         *templates.Store
	detector      *language.Detector
	policies      *policy.Cache
	previewLength int
}

// NewComposer creates a response composer. The policy cache may be nil, in
// which case only inline request policies are consulted.
func NewComposer(logger *observability.Logger, store *templates.Store, detector *language.Detector, policies *policy.Cache, previewLength int) *Composer {
	if previewLength <= 0 {
		previewLength = templates.DefaultPreviewLength
	}
	return &Composer{
		logger:        logger,
		store:         store,
		detector:      detector,
		policies:      policies,
		previewLength: previewLength,
	}
}

// Compose builds the localized response for a stage result.
func (c *Composer) Compose(ctx context.Context, req *assist.Request, intent assist.Intent, sentiment assist.Sentiment, result *partialResult) *assist.Response {
	lang := c.detector.Detect(req.UserMessage, req.Context.Locale)

	recs := result.recommendations
	if recs == nil {
		recs = []assist.Recommendation{}
	}

	var message string
	messageType := assist.MessageTypeText

	switch {
	case len(recs) > 0:
		message = c.store.Lookup(lang, templates.RecommendationKey(recs[0].RelevanceScore))
		messageType = assist.MessageTypeRecommendation
	case result.noProducts:
		message = c.store.Lookup(lang, templates.KeyNoProducts)
	default:
		message, messageType = c.intentMessage(ctx, req, lang, intent)
	}

	hasProducts := len(recs) > 0
	actions := c.store.SuggestedActions(lang, hasProducts)
	suggested := make([]assist.SuggestedAction, 0, len(actions))
	for _, a := range actions {
		suggested = append(suggested, assist.SuggestedAction{Type: a.Type, Label: a.Label})
	}

	return &assist.Response{
		Message:                 message,
		MessageType:             messageType,
		Recommendations:         recs,
		QuickReplies:            c.store.QuickReplies(lang, hasProducts),
		SuggestedActions:        suggested,
		Confidence:              confidenceFor(result),
		Sentiment:               sentiment,
		RequiresHumanEscalation: intent == assist.IntentSupport && sentiment == assist.SentimentNegative,
	}
}

// Minimal is the terminal fallback: a static localized greeting with no
// recommendations, emitted when every stage failed unexpectedly.
func (c *Composer) Minimal(req *assist.Request) *assist.Response {
	lang := language.English
	if req != nil {
		lang = c.detector.Detect(req.UserMessage, req.Context.Locale)
	}

	actions := c.store.SuggestedActions(lang, false)
	suggested := make([]assist.SuggestedAction, 0, len(actions))
	for _, a := range actions {
		suggested = append(suggested, assist.SuggestedAction{Type: a.Type, Label: a.Label})
	}

	return &assist.Response{
		Message:          c.store.Lookup(lang, templates.KeyMinimalGreeting),
		MessageType:      assist.MessageTypeText,
		Recommendations:  []assist.Recommendation{},
		QuickReplies:     c.store.QuickReplies(lang, false),
		SuggestedActions: suggested,
		Confidence:       minimalConfidence,
		Sentiment:        assist.SentimentNeutral,
	}
}

// intentMessage selects the intent-specific reply for requests without
// recommendations. Shipping and returns are policy-aware.
func (c *Composer) intentMessage(ctx context.Context, req *assist.Request, lang language.Language, intent assist.Intent) (string, assist.MessageType) {
	switch intent {
	case assist.IntentShipping:
		return c.policyMessage(ctx, req, lang, templates.KeyShippingIntro, templates.KeyShippingMissing, func(p *policy.Policies) string { return p.Shipping }, func(sp *assist.ShopPolicies) string { return sp.Shipping }), assist.MessageTypePolicy
	case assist.IntentReturns:
		return c.policyMessage(ctx, req, lang, templates.KeyReturnsIntro, templates.KeyReturnsMissing, func(p *policy.Policies) string { return p.Returns }, func(sp *assist.ShopPolicies) string { return sp.Returns }), assist.MessageTypePolicy
	case assist.IntentPrice:
		return c.store.Lookup(lang, templates.KeyPrice), assist.MessageTypeText
	case assist.IntentSize:
		return c.store.Lookup(lang, templates.KeySize), assist.MessageTypeText
	case assist.IntentSupport:
		return c.store.Lookup(lang, templates.KeySupport), assist.MessageTypeSupport
	case assist.IntentGreeting:
		return c.store.Lookup(lang, templates.KeyGreeting), assist.MessageTypeText
	case assist.IntentThanks:
		return c.store.Lookup(lang, templates.KeyThanks), assist.MessageTypeText
	case assist.IntentComparison:
		return c.store.Lookup(lang, templates.KeyComparison), assist.MessageTypeText
	case assist.IntentAvailability:
		return c.store.Lookup(lang, templates.KeyAvailability), assist.MessageTypeText
	default:
		return c.store.Lookup(lang, templates.KeyDefault), assist.MessageTypeText
	}
}

// policyMessage builds a policy preview: cached policy text first, inline
// request policies as fallback, "not configured" template when neither has
// usable text.
func (c *Composer) policyMessage(ctx context.Context, req *assist.Request, lang language.Language, introKey, missingKey templates.Key, fromCache func(*policy.Policies) string, fromRequest func(*assist.ShopPolicies) string) string {
	var text string

	if c.policies != nil && req.Context.ShopDomain != "" {
		if cached, err := c.policies.Get(ctx, req.Context.ShopDomain); err == nil && cached != nil {
			text = fromCache(cached)
		}
	}
	if text == "" && req.Context.ShopPolicies != nil {
		text = fromRequest(req.Context.ShopPolicies)
	}

	text = strings.TrimSpace(text)
	if len([]rune(text)) < minPolicyLength {
		return c.store.Lookup(lang, missingKey)
	}

	preview := templates.TruncatePolicy(text, c.previewLength)
	return c.store.Lookup(lang, introKey) + "\n\n" + preview
}

// confidenceFor nudges the stage's base confidence by the strength of the
// top recommendation, keeping the result inside [0, 1].
func confidenceFor(result *partialResult) float64 {
	conf := result.confidence
	if len(result.recommendations) > 0 {
		top := result.recommendations[0].RelevanceScore
		conf += float64(top)/1000.0 - 0.05
	}
	return assist.ClampConfidence(conf)
}
