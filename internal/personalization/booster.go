package personalization

import (
	"context"
	"sort"
	"strings"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/observability"
)

// Boost adjustments, additive on top of the base relevance score.
const (
	recentViewBoost = 10
	priceMatchBoost = 5
	colorMatchBoost = 3
)

// Booster re-ranks recommendations using session history. Boosting is
// strictly best-effort: any lookup failure returns the input unchanged.
type Booster struct {
	logger  *observability.Logger
	service Service
}

// NewBooster creates a booster over the given personalization service.
func NewBooster(logger *observability.Logger, service Service) *Booster {
	return &Booster{
		logger:  logger,
		service: service,
	}
}

// Boost applies additive score adjustments from the session's profile and
// re-sorts descending by boosted score. Scores only ever increase, and never
// past 100. Without a session id, or when the profile lookup fails, the
// input comes back unchanged.
func (b *Booster) Boost(ctx context.Context, shopDomain, sessionID string, recs []assist.Recommendation, requestPrefs *assist.UserPreferences) []assist.Recommendation {
	if sessionID == "" || len(recs) == 0 || b.service == nil {
		return recs
	}

	profile, err := b.service.GetContext(ctx, shopDomain, sessionID)
	if err != nil {
		b.logger.WithShop(shopDomain).Warn().Err(err).Msg("Personalization lookup failed, skipping boost")
		return recs
	}

	prefs := profile.Preferences
	if requestPrefs != nil {
		if prefs.PriceRange == nil {
			prefs.PriceRange = requestPrefs.PriceRange
		}
		if len(prefs.FavoriteColors) == 0 {
			prefs.FavoriteColors = requestPrefs.FavoriteColors
		}
	}

	recent := make(map[string]bool, len(profile.RecentProductIDs))
	for _, id := range profile.RecentProductIDs {
		recent[id] = true
	}

	boosted := make([]assist.Recommendation, len(recs))
	copy(boosted, recs)

	for i := range boosted {
		score := boosted[i].RelevanceScore

		if recent[boosted[i].ID] {
			score += recentViewBoost
		}
		if prefs.PriceRange != nil && prefs.PriceRange.Contains(boosted[i].Price) {
			score += priceMatchBoost
		}

		desc := strings.ToLower(boosted[i].Description)
		for _, color := range prefs.FavoriteColors {
			if color != "" && strings.Contains(desc, strings.ToLower(color)) {
				score += colorMatchBoost
			}
		}

		boosted[i].RelevanceScore = assist.ClampScore(score)
	}

	sort.SliceStable(boosted, func(i, j int) bool {
		return boosted[i].RelevanceScore > boosted[j].RelevanceScore
	})

	return boosted
}
