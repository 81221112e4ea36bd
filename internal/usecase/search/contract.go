package search

import (
	"context"

	"github.com/stephen-mccullough/fashion-search/internal/domain"
	"github.com/stephen-mccullough/fashion-search/internal/domain/search/filter"
)

// FilterExtractor turns free text into structured facet constraints and a
// flag telling whether the query is about fashion at all. Implementations
// must wrap failures in domain.ErrFilterExtraction.
type FilterExtractor interface {
	ExtractFilter(ctx context.Context, prompt string) (filter.Predicate, bool, error)
}

// Embedder vectorizes the query text. Implementations must wrap failures in
// domain.ErrEmbedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Retriever runs the nearest-neighbor query against the catalog. Candidates
// whose distance exceeds threshold are excluded; at most limit candidates are
// returned. An empty result is not an error. Implementations must wrap
// failures in domain.ErrRetrieval.
type Retriever interface {
	Retrieve(
		ctx context.Context, vector []float32, pred filter.Predicate,
		threshold float64, limit int,
	) ([]domain.Candidate, error)
}

// Recommender produces a short natural-language recommendation from the
// original query and the ranked candidate titles. Implementations must wrap
// failures in domain.ErrRecommendation.
type Recommender interface {
	Recommend(ctx context.Context, prompt string, titles []string) (string, error)
}
