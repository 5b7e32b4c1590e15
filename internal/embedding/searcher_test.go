package embedding

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
)

func searchCatalog() []assist.Product {
	return []assist.Product{
		{ID: "1", Title: "Blue Denim Jacket", Description: "Classic denim jacket with brass buttons"},
		{ID: "2", Title: "Red Wool Sweater", Description: "Warm knit sweater"},
		{ID: "3", Title: "Leather Boots", Description: "Brown leather hiking boots"},
	}
}

func TestVectorSearcher_Available(t *testing.T) {
	searcher := NewVectorSearcher(NewMockClient(64))
	assert.True(t, searcher.Available(context.Background()))

	failing := NewVectorSearcher(NewFailingMockClient())
	assert.False(t, failing.Available(context.Background()))

	var nilSearcher VectorSearcher
	assert.False(t, nilSearcher.Available(context.Background()))
}

func TestVectorSearcher_AvailabilityProbeIsMemoized(t *testing.T) {
	searcher := NewVectorSearcher(NewFailingMockClient())

	// First probe fails and the verdict is cached for the probe interval.
	assert.False(t, searcher.Available(context.Background()))
	searcher.embedder = NewMockClient(64)
	assert.False(t, searcher.Available(context.Background()))

	// An expired probe re-checks the embedder.
	searcher.probedAt = searcher.probedAt.Add(-2 * searcher.probeTTL)
	assert.True(t, searcher.Available(context.Background()))
}

func TestVectorSearcher_SearchOrdersBySimilarity(t *testing.T) {
	searcher := NewVectorSearcher(NewMockClient(64))

	// The mock embedder is deterministic, so a query identical to one
	// product's text gets similarity 1 and ranks that product first.
	query := "Blue Denim Jacket. Classic denim jacket with brass buttons"

	scored, err := searcher.Search(context.Background(), query, searchCatalog(), 0)
	require.NoError(t, err)
	require.Len(t, scored, 3)

	assert.Equal(t, "1", scored[0].Product.ID)
	assert.InDelta(t, 1.0, scored[0].Similarity, 1e-6)

	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Similarity, scored[i].Similarity)
		assert.GreaterOrEqual(t, scored[i].Similarity, 0.0)
		assert.LessOrEqual(t, scored[i].Similarity, 1.0)
	}
}

func TestVectorSearcher_SearchRespectsTopK(t *testing.T) {
	searcher := NewVectorSearcher(NewMockClient(64))

	scored, err := searcher.Search(context.Background(), "jacket", searchCatalog(), 2)
	require.NoError(t, err)
	assert.Len(t, scored, 2)
}

func TestVectorSearcher_SearchEmptyCatalog(t *testing.T) {
	searcher := NewVectorSearcher(NewMockClient(64))

	scored, err := searcher.Search(context.Background(), "jacket", nil, 5)
	require.NoError(t, err)
	assert.Empty(t, scored)
}

func TestVectorSearcher_SearchEmbedderFailure(t *testing.T) {
	searcher := NewVectorSearcher(NewFailingMockClient())

	_, err := searcher.Search(context.Background(), "jacket", searchCatalog(), 5)
	assert.Error(t, err)
}

func TestCosineSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, cosineSimilarity([]float32{1, 0}, []float32{1, 0}), 1e-9)
	assert.InDelta(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	// Opposed vectors clamp to zero instead of going negative.
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1, 0}, []float32{-1, 0}))
	// Mismatched or empty inputs score zero.
	assert.Equal(t, 0.0, cosineSimilarity([]float32{1}, []float32{1, 0}))
	assert.Equal(t, 0.0, cosineSimilarity(nil, nil))
}
