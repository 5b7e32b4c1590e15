// Package personalization provides intent classification, sentiment
// analysis, and session history lookups for the assist engine.
package personalization

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/cache"
)

// Context is the personalization profile for one shopping session.
type Context struct {
	RecentProductIDs []string               `json:"recentProductIds,omitempty"`
	Preferences      assist.UserPreferences `json:"preferences"`
}

// Service exposes the personalization collaborator operations.
type Service interface {
	ClassifyIntent(message string) (assist.Intent, float64)
	AnalyzeSentiment(message string) assist.Sentiment
	GetContext(ctx context.Context, shopDomain, sessionID string) (*Context, error)
}

// RuleService is an in-process Service built on keyword rules and a
// session store. It needs no ML collaborator and is the default wiring.
type RuleService struct {
	store      cache.Client
	sessionTTL time.Duration

	comparisonPatterns   []string
	pricePatterns        []string
	shippingPatterns     []string
	returnsPatterns      []string
	sizePatterns         []string
	supportPatterns      []string
	greetingPatterns     []string
	thanksPatterns       []string
	availabilityPatterns []string
	searchPatterns       []string

	positiveWords []string
	negativeWords []string
}

// DefaultSessionTTL is how long session profiles live when no TTL is
// configured.
const DefaultSessionTTL = 24 * time.Hour

// NewRuleService creates a rule-based personalization service. The cache
// client stores session profiles; pass nil to disable history lookups. A
// non-positive sessionTTL falls back to DefaultSessionTTL.
func NewRuleService(store cache.Client, sessionTTL time.Duration) *RuleService {
	if sessionTTL <= 0 {
		sessionTTL = DefaultSessionTTL
	}
	return &RuleService{
		store:      store,
		sessionTTL: sessionTTL,
		comparisonPatterns: []string{
			"compare", "comparison", "versus", " vs ", "difference between",
			"which is better", "better than", "comparer", "comparar",
		},
		pricePatterns: []string{
			"how much", "price", "cost", "expensive", "cheap", "budget",
			"prix", "precio", "preis", "preço", "prezzo",
		},
		shippingPatterns: []string{
			"shipping", "delivery", "ship to", "how long to arrive",
			"livraison", "envío", "versand", "entrega", "spedizione",
		},
		returnsPatterns: []string{
			"return", "refund", "exchange", "money back",
			"retour", "remboursement", "devolución", "rückgabe", "reso",
		},
		sizePatterns: []string{
			"size", "sizing", "fit", "measurements", "too small", "too big",
			"taille", "talla", "größe", "tamanho", "taglia",
		},
		supportPatterns: []string{
			"help me", "support", "problem", "issue", "broken", "not working",
			"complaint", "contact", "aide", "ayuda", "hilfe", "ajuda", "aiuto",
		},
		greetingPatterns: []string{
			"hello", "hi ", "hey", "good morning", "good afternoon",
			"bonjour", "salut", "hola", "hallo", "olá", "ciao",
		},
		thanksPatterns: []string{
			"thank", "thanks", "merci", "gracias", "danke", "obrigad", "grazie",
		},
		availabilityPatterns: []string{
			"in stock", "available", "availability", "sold out", "restock",
			"disponible", "verfügbar", "disponível", "disponibile",
		},
		searchPatterns: []string{
			"show me", "looking for", "find", "search", "do you have",
			"i want", "i need", "recommend", "suggestion",
			"montrez", "cherche", "busco", "suche", "procuro", "cerco",
		},
		positiveWords: []string{
			"great", "love", "awesome", "perfect", "excellent", "amazing",
			"good", "nice", "wonderful", "happy",
		},
		negativeWords: []string{
			"bad", "terrible", "awful", "hate", "disappointed", "angry",
			"worst", "useless", "horrible", "frustrated", "broken",
		},
	}
}

// ClassifyIntent determines the message intent and a confidence score.
// Pattern groups are checked in priority order; the first match wins.
func (s *RuleService) ClassifyIntent(message string) (assist.Intent, float64) {
	m := strings.ToLower(message)

	checks := []struct {
		intent     assist.Intent
		patterns   []string
		confidence float64
	}{
		{assist.IntentComparison, s.comparisonPatterns, 0.9},
		{assist.IntentReturns, s.returnsPatterns, 0.85},
		{assist.IntentShipping, s.shippingPatterns, 0.85},
		{assist.IntentPrice, s.pricePatterns, 0.8},
		{assist.IntentSize, s.sizePatterns, 0.8},
		{assist.IntentAvailability, s.availabilityPatterns, 0.8},
		{assist.IntentSupport, s.supportPatterns, 0.75},
		{assist.IntentThanks, s.thanksPatterns, 0.75},
		{assist.IntentSearch, s.searchPatterns, 0.7},
		{assist.IntentGreeting, s.greetingPatterns, 0.7},
	}

	for _, check := range checks {
		for _, pattern := range check.patterns {
			if strings.Contains(m, pattern) {
				return check.intent, check.confidence
			}
		}
	}

	// Question-looking messages about products lean toward search.
	if strings.HasPrefix(m, "what ") || strings.HasPrefix(m, "which ") {
		return assist.IntentSearch, 0.6
	}

	return assist.IntentOther, 0.5
}

// AnalyzeSentiment scores the message against small positive and negative
// lexicons. Ties and no matches are neutral.
func (s *RuleService) AnalyzeSentiment(message string) assist.Sentiment {
	m := strings.ToLower(message)

	var positive, negative int
	for _, w := range s.positiveWords {
		if strings.Contains(m, w) {
			positive++
		}
	}
	for _, w := range s.negativeWords {
		if strings.Contains(m, w) {
			negative++
		}
	}

	switch {
	case positive > negative:
		return assist.SentimentPositive
	case negative > positive:
		return assist.SentimentNegative
	default:
		return assist.SentimentNeutral
	}
}

// GetContext loads the session's personalization profile. A missing profile
// is an empty context, not an error.
func (s *RuleService) GetContext(ctx context.Context, shopDomain, sessionID string) (*Context, error) {
	if s.store == nil || sessionID == "" {
		return &Context{}, nil
	}

	data, err := s.store.Get(ctx, sessionKey(shopDomain, sessionID))
	if errors.Is(err, cache.ErrCacheMiss) {
		return &Context{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load session profile: %w", err)
	}

	var profile Context
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("decode session profile: %w", err)
	}
	return &profile, nil
}

// RecordView appends a product to the session's recently-viewed set. The
// set keeps the most recent maxRecentProducts entries, newest first.
func (s *RuleService) RecordView(ctx context.Context, shopDomain, sessionID, productID string) error {
	if s.store == nil || sessionID == "" || productID == "" {
		return nil
	}

	profile, err := s.GetContext(ctx, shopDomain, sessionID)
	if err != nil {
		return err
	}

	recent := make([]string, 0, len(profile.RecentProductIDs)+1)
	recent = append(recent, productID)
	for _, id := range profile.RecentProductIDs {
		if id != productID {
			recent = append(recent, id)
		}
	}
	if len(recent) > maxRecentProducts {
		recent = recent[:maxRecentProducts]
	}
	profile.RecentProductIDs = recent

	return s.saveProfile(ctx, shopDomain, sessionID, profile)
}

// SetPreferences stores the session's declared preferences.
func (s *RuleService) SetPreferences(ctx context.Context, shopDomain, sessionID string, prefs assist.UserPreferences) error {
	if s.store == nil || sessionID == "" {
		return nil
	}

	profile, err := s.GetContext(ctx, shopDomain, sessionID)
	if err != nil {
		return err
	}
	profile.Preferences = prefs

	return s.saveProfile(ctx, shopDomain, sessionID, profile)
}

const maxRecentProducts = 20

func (s *RuleService) saveProfile(ctx context.Context, shopDomain, sessionID string, profile *Context) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("encode session profile: %w", err)
	}
	return s.store.Set(ctx, sessionKey(shopDomain, sessionID), data, s.sessionTTL)
}

func sessionKey(shopDomain, sessionID string) string {
	return cache.ShopKey(shopDomain, "session", sessionID)
}

var _ Service = (*RuleService)(nil)
