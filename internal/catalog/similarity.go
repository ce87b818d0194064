package catalog

import (
	"math/rand/v2"
	"sort"

	"github.com/tilestudio/site/internal/domain"
)

// Similarity weights.
const (
	designStyleWeight  = 40
	mainCategoryWeight = 30
	finishWeight       = 20
	jitterRange        = 10
)

// Ranker scores candidate products against a focal product. Each call adds
// fresh jitter in [0, 10) per candidate so equally similar products come
// back in a different order every time; callers that render the list should
// compute it once per view.
type Ranker struct {
	jitter func() float64
}

// NewRanker creates a ranker drawing jitter from rnd, which must return
// values in [0, 1). A nil rnd uses the global math/rand/v2 source.
func NewRanker(rnd func() float64) *Ranker {
	if rnd == nil {
		rnd = rand.Float64 // #nosec G404 -- display variety only
	}
	return &Ranker{jitter: rnd}
}

// Score returns the deterministic part of the similarity between focal and
// candidate. Two empty design styles count as a match.
func Score(focal, candidate domain.Product) float64 {
	var score float64
	if focal.DesignStyle == candidate.DesignStyle {
		score += designStyleWeight
	}
	if focal.MainCategory == candidate.MainCategory {
		score += mainCategoryWeight
	}
	if focal.Finish == candidate.Finish {
		score += finishWeight
	}
	return score
}

// Rank returns at most limit candidates ordered by descending similarity to
// focal. The focal product is excluded by slug.
func (r *Ranker) Rank(focal domain.Product, candidates []domain.Product, limit int) []domain.Product {
	if limit <= 0 {
		return []domain.Product{}
	}

	type scored struct {
		product domain.Product
		score   float64
	}

	results := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c.Slug == focal.Slug {
			continue
		}
		results = append(results, scored{
			product: c,
			score:   Score(focal, c) + r.jitter()*jitterRange,
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].score > results[j].score
	})

	if len(results) > limit {
		results = results[:limit]
	}

	ranked := make([]domain.Product, len(results))
	for i, s := range results {
		ranked[i] = s.product
	}
	return ranked
}

var defaultRanker = NewRanker(nil)

// RankSimilar ranks candidates against focal with the default random source.
// The result is not repeatable across calls.
func RankSimilar(focal domain.Product, candidates []domain.Product, limit int) []domain.Product {
	return defaultRanker.Rank(focal, candidates, limit)
}
