// Package ranking scores and orders catalog products against a shopper
// query.
package ranking

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/assist"
	"github.com/cartmind-ai/cartmind/libs/assist-engine/internal/embedding"
)

// Scoring weights for the keyword strategy.
const (
	titleMatchWeight       = 5
	descriptionMatchWeight = 2
	priceRangeWeight       = 3
)

// neutralScore is the relevance assigned by the generic sample.
const neutralScore = 50

// stopWords are dropped from the query before keyword matching.
var stopWords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "that": true,
	"this": true, "you": true, "your": true, "have": true, "are": true,
	"can": true, "les": true, "des": true, "une": true,
	"pour": true, "los": true, "las": true, "por": true, "para": true,
	"und": true, "der": true, "die": true, "das": true,
}

// Engine ranks products with a keyword or semantic strategy.
type Engine struct {
	searcher embedding.Searcher
}

// NewEngine creates a ranking engine. The searcher may be nil when no
// semantic collaborator is configured.
func NewEngine(searcher embedding.Searcher) *Engine {
	return &Engine{searcher: searcher}
}

// SemanticAvailable reports whether the semantic strategy can be used.
func (e *Engine) SemanticAvailable(ctx context.Context) bool {
	return e.searcher != nil && e.searcher.Available(ctx)
}

// RankSemantic scores products via the embedding collaborator. The relevance
// score is the similarity scaled to [0, 100].
func (e *Engine) RankSemantic(ctx context.Context, shopDomain, query string, products []assist.Product) ([]assist.Recommendation, error) {
	if e.searcher == nil {
		return nil, fmt.Errorf("no semantic searcher configured")
	}
	if len(products) == 0 {
		return nil, nil
	}

	scored, err := e.searcher.Search(ctx, query, products, assist.MaxRecommendations)
	if err != nil {
		return nil, fmt.Errorf("semantic search for %s: %w", shopDomain, err)
	}

	recs := make([]assist.Recommendation, 0, len(scored))
	for _, s := range scored {
		recs = append(recs, toRecommendation(s.Product, assist.ClampScore(int(math.Round(s.Similarity*100)))))
	}
	return recs, nil
}

// RankKeyword scores products by token matches against title and
// description, plus a bonus for landing in the preferred price range.
// Zero-score products are dropped, ties keep catalog order, and the result
// is capped at six entries.
func (e *Engine) RankKeyword(query string, products []assist.Product, prefs *assist.UserPreferences) []assist.Recommendation {
	tokens := tokenize(query)
	if len(tokens) == 0 || len(products) == 0 {
		return nil
	}

	type scoredProduct struct {
		product assist.Product
		score   int
	}

	scored := make([]scoredProduct, 0, len(products))
	for _, p := range products {
		title := strings.ToLower(p.Title)
		desc := strings.ToLower(p.Description)

		score := 0
		for _, token := range tokens {
			if strings.Contains(title, token) {
				score += titleMatchWeight
			}
			if strings.Contains(desc, token) {
				score += descriptionMatchWeight
			}
		}
		if prefs != nil && prefs.PriceRange != nil && prefs.PriceRange.Contains(p.Price) {
			score += priceRangeWeight
		}

		if score > 0 {
			scored = append(scored, scoredProduct{product: p, score: score})
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	if len(scored) > assist.MaxRecommendations {
		scored = scored[:assist.MaxRecommendations]
	}

	recs := make([]assist.Recommendation, 0, len(scored))
	for _, s := range scored {
		recs = append(recs, toRecommendation(s.product, normalizeScore(s.score)))
	}
	return recs
}

// GenericSample returns the first six catalog products at neutral relevance.
func (e *Engine) GenericSample(products []assist.Product) []assist.Recommendation {
	if len(products) == 0 {
		return nil
	}

	n := len(products)
	if n > assist.MaxRecommendations {
		n = assist.MaxRecommendations
	}

	recs := make([]assist.Recommendation, 0, n)
	for _, p := range products[:n] {
		recs = append(recs, toRecommendation(p, neutralScore))
	}
	return recs
}

// normalizeScore maps a raw keyword score to the 0-100 relevance scale.
func normalizeScore(raw int) int {
	return assist.ClampScore(raw * 10)
}

// tokenize splits the query on whitespace and drops short tokens and stop
// words.
func tokenize(query string) []string {
	fields := strings.Fields(strings.ToLower(query))

	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, ".,!?;:()[]{}'\"")
		if len([]rune(f)) <= 2 || stopWords[f] {
			continue
		}
		tokens = append(tokens, f)
	}
	return tokens
}

func toRecommendation(p assist.Product, score int) assist.Recommendation {
	return assist.Recommendation{
		ID:             p.ID,
		Title:          p.Title,
		Handle:         p.Handle,
		Price:          p.Price,
		RelevanceScore: score,
		Description:    p.Description,
	}
}
