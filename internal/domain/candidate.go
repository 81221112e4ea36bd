package domain

import (
	"fmt"
	"math"

	"github.com/stephen-mccullough/fashion-search/internal/domain/search/filter"
)

// Candidate is one product retrieved from the similarity store for a query.
// Distance is the store-supplied cosine distance (0 = identical). It is not
// guaranteed to stay within [0, 1] and is passed through unclamped.
type Candidate struct {
	ParentASIN    string  `json:"parent_asin"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	Distance      float64 `json:"cosine_distance"`
	RatingAverage float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_number"`
}

// Validate reports whether the candidate's numeric fields are usable for
// ranking. Malformed candidates are skipped, not fatal.
func (c Candidate) Validate() error {
	if math.IsNaN(c.Distance) || math.IsInf(c.Distance, 0) || c.Distance < 0 {
		return fmt.Errorf("%w %s: bad distance %g", ErrMalformedCandidate, c.ParentASIN, c.Distance)
	}
	if math.IsNaN(c.RatingAverage) || math.IsInf(c.RatingAverage, 0) {
		return fmt.Errorf("%w %s: bad average rating %g", ErrMalformedCandidate, c.ParentASIN, c.RatingAverage)
	}
	if c.RatingCount < 0 {
		return fmt.Errorf("%w %s: negative rating count %d", ErrMalformedCandidate, c.ParentASIN, c.RatingCount)
	}
	return nil
}

// ScoredCandidate is a Candidate with its composite ranking score attached.
// It is always built as a fresh value; the source Candidate is never mutated.
type ScoredCandidate struct {
	Candidate
	Score float64 `json:"score"`
}

// SearchResult is the envelope assembled for one search request.
// Items is nil for out-of-domain queries and empty (non-nil) when retrieval
// matched nothing.
type SearchResult struct {
	Items          []ScoredCandidate
	Recommendation *string
	Warnings       []string
	Filters        filter.Predicate
}
