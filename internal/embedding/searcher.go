package embedding

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
)

// Scored pairs a product with its cosine similarity to the query.
type Scored struct {
	Product    assist.Product
	Similarity float64
}

// Searcher ranks products against a query by semantic similarity.
type Searcher interface {
	// Available reports whether the searcher can serve requests right now.
	Available(ctx context.Context) bool
	Search(ctx context.Context, query string, products []assist.Product, topK int) ([]Scored, error)
}

// VectorSearcher ranks products by embedding the query and product texts and
// comparing them with cosine similarity. Availability probes are memoized so
// a down embedder does not add a round trip to every request.
type VectorSearcher struct {
	embedder Embedder

	mu        sync.Mutex
	probedAt  time.Time
	probeOK   bool
	probeTTL  time.Duration
	probeText string
}

// NewVectorSearcher creates a searcher over the given embedder.
func NewVectorSearcher(embedder Embedder) *VectorSearcher {
	return &VectorSearcher{
		embedder:  embedder,
		probeTTL:  time.Minute,
		probeText: "ping",
	}
}

// Available probes the embedder with a tiny request. The result is cached
// for the probe interval.
func (s *VectorSearcher) Available(ctx context.Context) bool {
	if s.embedder == nil {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if time.Since(s.probedAt) < s.probeTTL {
		return s.probeOK
	}

	probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	_, err := s.embedder.EmbedSingle(probeCtx, s.probeText)
	s.probedAt = time.Now()
	s.probeOK = err == nil
	return s.probeOK
}

// Search embeds the query and each product's text and returns the topK
// products ordered by descending similarity. Ties keep catalog order.
func (s *VectorSearcher) Search(ctx context.Context, query string, products []assist.Product, topK int) ([]Scored, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	if len(products) == 0 {
		return nil, nil
	}

	texts := make([]string, 0, len(products)+1)
	texts = append(texts, query)
	for _, p := range products {
		texts = append(texts, productText(p))
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed query and products: %w", err)
	}
	if len(vectors) != len(texts) || vectors[0] == nil {
		return nil, fmt.Errorf("embedder returned %d vectors for %d texts", len(vectors), len(texts))
	}

	queryVec := vectors[0]
	scored := make([]Scored, 0, len(products))
	for i, p := range products {
		vec := vectors[i+1]
		if vec == nil {
			continue
		}
		scored = append(scored, Scored{
			Product:    p,
			Similarity: cosineSimilarity(queryVec, vec),
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Similarity > scored[j].Similarity
	})

	if topK > 0 && len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

func productText(p assist.Product) string {
	parts := []string{p.Title}
	if p.Description != "" {
		parts = append(parts, p.Description)
	}
	return strings.Join(parts, ". ")
}

// cosineSimilarity computes the cosine of the angle between two vectors,
// clamped to [0, 1] so downstream scores stay in range.
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}

	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

var _ Searcher = (*VectorSearcher)(nil)
