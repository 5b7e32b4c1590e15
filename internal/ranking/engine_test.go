package ranking

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/embedding"
)

func testCatalog() []assist.Product {
	return []assist.Product{
		{ID: "1", Title: "Blue Denim Jacket", Price: 89.99, Description: "Classic blue denim jacket with brass buttons"},
		{ID: "2", Title: "Red Wool Sweater", Price: 59.99, Description: "Warm red sweater knit from merino wool"},
		{ID: "3", Title: "Denim Jeans", Price: 49.99, Description: "Slim fit denim jeans"},
		{ID: "4", Title: "Leather Boots", Price: 129.99, Description: "Brown leather boots with rubber sole"},
		{ID: "5", Title: "Canvas Sneakers", Price: 39.99, Description: "White canvas sneakers"},
		{ID: "6", Title: "Silk Scarf", Price: 24.99, Description: "Patterned silk scarf"},
		{ID: "7", Title: "Denim Shirt", Price: 44.99, Description: "Light wash denim shirt"},
	}
}

func TestEngine_RankKeyword(t *testing.T) {
	engine := NewEngine(nil)

	recs := engine.RankKeyword("denim jacket", testCatalog(), nil)

	require.NotEmpty(t, recs)
	// "Blue Denim Jacket" matches both tokens in the title plus both in the
	// description, so it must rank first.
	assert.Equal(t, "1", recs[0].ID)

	for _, rec := range recs {
		assert.GreaterOrEqual(t, rec.RelevanceScore, 0)
		assert.LessOrEqual(t, rec.RelevanceScore, 100)
	}
	for i := 1; i < len(recs); i++ {
		assert.GreaterOrEqual(t, recs[i-1].RelevanceScore, recs[i].RelevanceScore,
			"scores must be non-increasing")
	}
}

func TestEngine_RankKeyword_DropsZeroScores(t *testing.T) {
	engine := NewEngine(nil)

	recs := engine.RankKeyword("spaceship propulsion", testCatalog(), nil)
	assert.Empty(t, recs)
}

func TestEngine_RankKeyword_CapsAtSix(t *testing.T) {
	engine := NewEngine(nil)

	catalog := make([]assist.Product, 0, 10)
	for i := 0; i < 10; i++ {
		catalog = append(catalog, assist.Product{
			ID:    string(rune('a' + i)),
			Title: "Denim Jacket",
		})
	}

	recs := engine.RankKeyword("denim jacket", catalog, nil)
	assert.Len(t, recs, assist.MaxRecommendations)
}

func TestEngine_RankKeyword_StableTies(t *testing.T) {
	engine := NewEngine(nil)

	catalog := []assist.Product{
		{ID: "first", Title: "Denim Jacket"},
		{ID: "second", Title: "Denim Jacket"},
		{ID: "third", Title: "Denim Jacket"},
	}

	recs := engine.RankKeyword("denim", catalog, nil)
	require.Len(t, recs, 3)
	assert.Equal(t, []string{"first", "second", "third"},
		[]string{recs[0].ID, recs[1].ID, recs[2].ID})
}

func TestEngine_RankKeyword_PriceRangeBonus(t *testing.T) {
	engine := NewEngine(nil)

	catalog := []assist.Product{
		{ID: "expensive", Title: "Denim Jacket", Price: 300},
		{ID: "affordable", Title: "Denim Jacket", Price: 50},
	}
	prefs := &assist.UserPreferences{
		PriceRange: &assist.PriceRange{Min: 20, Max: 100},
	}

	recs := engine.RankKeyword("denim", catalog, prefs)
	require.Len(t, recs, 2)
	assert.Equal(t, "affordable", recs[0].ID)
	assert.Greater(t, recs[0].RelevanceScore, recs[1].RelevanceScore)
}

func TestEngine_RankKeyword_IgnoresShortTokensAndStopWords(t *testing.T) {
	engine := NewEngine(nil)

	// "do", "a" are too short; "the"/"for" are stop words. Only "jacket"
	// should drive matching.
	recs := engine.RankKeyword("do a the for jacket", testCatalog(), nil)
	require.NotEmpty(t, recs)
	for _, rec := range recs {
		assert.Contains(t, rec.Title, "Jacket")
	}
}

func TestEngine_GenericSample(t *testing.T) {
	engine := NewEngine(nil)

	recs := engine.GenericSample(testCatalog())
	require.Len(t, recs, assist.MaxRecommendations)
	for i, rec := range recs {
		assert.Equal(t, testCatalog()[i].ID, rec.ID)
		assert.Equal(t, neutralScore, rec.RelevanceScore)
	}

	assert.Empty(t, engine.GenericSample(nil))
}

func TestEngine_RankSemantic(t *testing.T) {
	searcher := embedding.NewVectorSearcher(embedding.NewMockClient(64))
	engine := NewEngine(searcher)

	recs, err := engine.RankSemantic(context.Background(), "shop.example.com", "denim jacket", testCatalog())
	require.NoError(t, err)
	require.NotEmpty(t, recs)
	assert.LessOrEqual(t, len(recs), assist.MaxRecommendations)

	for _, rec := range recs {
		assert.GreaterOrEqual(t, rec.RelevanceScore, 0)
		assert.LessOrEqual(t, rec.RelevanceScore, 100)
	}
}

func TestEngine_RankSemantic_NoSearcher(t *testing.T) {
	engine := NewEngine(nil)

	_, err := engine.RankSemantic(context.Background(), "shop.example.com", "denim", testCatalog())
	assert.Error(t, err)
	assert.False(t, engine.SemanticAvailable(context.Background()))
}

func TestNormalizeScore(t *testing.T) {
	tests := []struct {
		raw      int
		expected int
	}{
		{0, 0},
		{5, 50},
		{7, 70},
		{10, 100},
		{15, 100},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.expected, normalizeScore(tc.raw), "raw %d", tc.raw)
	}
}

func TestTokenize(t *testing.T) {
	tokens := tokenize("Show me the Blue Denim jacket!")
	assert.Equal(t, []string{"show", "blue", "denim", "jacket"}, tokens)

	assert.Empty(t, tokenize("a an it"))
	assert.Empty(t, tokenize(""))
}
