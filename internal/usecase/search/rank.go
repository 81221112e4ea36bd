package search

import (
	"math"
	"sort"

	"github.com/stephen-mccullough/fashion-search/internal/domain"
)

// Weights control the relative contribution of each ranking factor. They are
// not required to sum to 1; the defaults happen to.
type Weights struct {
	Similarity float64
	Rating     float64
	Popularity float64
}

// DefaultWeights returns the production ranking weights.
func DefaultWeights() Weights {
	return Weights{Similarity: 0.7, Rating: 0.2, Popularity: 0.1}
}

// rankCandidates scores and orders retrieved candidates.
//
// Per candidate: similarity = 1 - distance (unclamped, may go negative),
// ratingScore = (ratingAverage / 5) damped by a confidence factor
// min(ratingCount/minRatings, 1), popularityScore = log1p(ratingCount) /
// log1p(max ratingCount over the batch, floored at 1). The final score is the
// weighted sum of the three. Candidates are returned in descending score
// order; the sort is stable, so ties keep retrieval order.
//
// Candidates failing validation are skipped, and their identifiers returned,
// rather than failing the whole pass. Inputs are never mutated.
func rankCandidates(
	candidates []domain.Candidate, w Weights, minRatings int,
) (ranked []domain.ScoredCandidate, skipped []string) {
	ranked = make([]domain.ScoredCandidate, 0, len(candidates))
	if len(candidates) == 0 {
		return ranked, nil
	}
	if minRatings < 1 {
		minRatings = 1
	}

	valid := make([]domain.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if err := c.Validate(); err != nil {
			skipped = append(skipped, c.ParentASIN)
			continue
		}
		valid = append(valid, c)
	}

	// Floor of 1 guards the empty and all-zero cases.
	maxRatingCount := 1
	for _, c := range valid {
		if c.RatingCount > maxRatingCount {
			maxRatingCount = c.RatingCount
		}
	}

	for _, c := range valid {
		similarity := 1 - c.Distance
		normalizedRating := c.RatingAverage / 5.0
		confidence := math.Min(float64(c.RatingCount)/float64(minRatings), 1.0)
		ratingScore := normalizedRating * confidence
		popularityScore := math.Log1p(float64(c.RatingCount)) / math.Log1p(float64(maxRatingCount))

		score := w.Similarity*similarity + w.Rating*ratingScore + w.Popularity*popularityScore

		ranked = append(ranked, domain.ScoredCandidate{Candidate: c, Score: score})
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	return ranked, skipped
}
