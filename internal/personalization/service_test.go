package personalization

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/cache"
)

func TestRuleService_ClassifyIntent(t *testing.T) {
	svc := NewRuleService(nil, 0)

	tests := []struct {
		message  string
		expected assist.Intent
	}{
		{"Show me some jackets", assist.IntentSearch},
		{"Bonjour, montrez-moi des produits", assist.IntentSearch},
		{"I'm looking for a gift", assist.IntentSearch},
		{"Compare these two sweaters", assist.IntentComparison},
		{"Which is better, the blue or the red one?", assist.IntentComparison},
		{"How much does this cost?", assist.IntentPrice},
		{"What about shipping to Canada?", assist.IntentShipping},
		{"Combien coûte la livraison ?", assist.IntentShipping},
		{"Can I return this item?", assist.IntentReturns},
		{"Does this run true to size?", assist.IntentSize},
		{"My order arrived broken", assist.IntentSupport},
		{"Hello there", assist.IntentGreeting},
		{"Thanks a lot!", assist.IntentThanks},
		{"Is this in stock?", assist.IntentAvailability},
		{"hmm", assist.IntentOther},
	}

	for _, tc := range tests {
		t.Run(tc.message, func(t *testing.T) {
			intent, confidence := svc.ClassifyIntent(tc.message)
			assert.Equal(t, tc.expected, intent)
			assert.Greater(t, confidence, 0.0)
			assert.LessOrEqual(t, confidence, 1.0)
		})
	}
}

func TestRuleService_AnalyzeSentiment(t *testing.T) {
	svc := NewRuleService(nil, 0)

	assert.Equal(t, assist.SentimentPositive, svc.AnalyzeSentiment("This store is awesome, love it"))
	assert.Equal(t, assist.SentimentNegative, svc.AnalyzeSentiment("Terrible experience, very disappointed"))
	assert.Equal(t, assist.SentimentNeutral, svc.AnalyzeSentiment("Where is my order?"))
	assert.Equal(t, assist.SentimentNeutral, svc.AnalyzeSentiment(""))
}

func TestRuleService_SessionProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	svc := NewRuleService(cache.NewMemoryClient(100), 0)

	// Missing profile is an empty context, not an error.
	profile, err := svc.GetContext(ctx, "shop.example.com", "sess-1")
	require.NoError(t, err)
	assert.Empty(t, profile.RecentProductIDs)

	require.NoError(t, svc.RecordView(ctx, "shop.example.com", "sess-1", "prod-1"))
	require.NoError(t, svc.RecordView(ctx, "shop.example.com", "sess-1", "prod-2"))
	require.NoError(t, svc.RecordView(ctx, "shop.example.com", "sess-1", "prod-1"))

	profile, err = svc.GetContext(ctx, "shop.example.com", "sess-1")
	require.NoError(t, err)
	// Newest first, re-views deduplicated.
	assert.Equal(t, []string{"prod-1", "prod-2"}, profile.RecentProductIDs)

	prefs := assist.UserPreferences{FavoriteColors: []string{"blue"}}
	require.NoError(t, svc.SetPreferences(ctx, "shop.example.com", "sess-1", prefs))

	profile, err = svc.GetContext(ctx, "shop.example.com", "sess-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"blue"}, profile.Preferences.FavoriteColors)
	assert.Equal(t, []string{"prod-1", "prod-2"}, profile.RecentProductIDs)
}

func TestRuleService_RecentProductsCapped(t *testing.T) {
	ctx := context.Background()
	svc := NewRuleService(cache.NewMemoryClient(100), 0)

	for i := 0; i < maxRecentProducts+5; i++ {
		id := string(rune('a' + i))
		require.NoError(t, svc.RecordView(ctx, "shop.example.com", "sess-1", id))
	}

	profile, err := svc.GetContext(ctx, "shop.example.com", "sess-1")
	require.NoError(t, err)
	assert.Len(t, profile.RecentProductIDs, maxRecentProducts)
}

func TestRuleService_NoStoreIsBestEffort(t *testing.T) {
	ctx := context.Background()
	svc := NewRuleService(nil, 0)

	require.NoError(t, svc.RecordView(ctx, "shop.example.com", "sess-1", "prod-1"))

	profile, err := svc.GetContext(ctx, "shop.example.com", "sess-1")
	require.NoError(t, err)
	assert.Empty(t, profile.RecentProductIDs)
}
