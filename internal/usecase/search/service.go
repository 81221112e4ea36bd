// Package search orchestrates one semantic search request: filter
// extraction, query embedding, catalog retrieval, multi-factor ranking, and
// recommendation generation.
package search

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stephen-mccullough/fashion-search/internal/domain"
	"github.com/stephen-mccullough/fashion-search/internal/logger"
)

// User-facing warning strings returned in the response envelope.
const (
	WarningOutOfDomain = "Looks like you're searching for something outside of fashion! " +
		"Try asking about clothing, accessories, or fashion items instead."
	WarningSparseResults    = "Not many items were found. Try broadening your search!"
	WarningNoRecommendation = "A recommendation could not be generated for this search."
)

// Config holds the tuning knobs of the search pipeline. It is read-only
// after construction; the service carries no other state, so concurrent
// Search calls are independent.
type Config struct {
	Weights Weights
	// DistanceThreshold excludes candidates farther than this from the query
	// vector, on the store's distance scale.
	DistanceThreshold float64
	// MaxResults caps how many candidates retrieval may return.
	MaxResults int
	// MinResults is the bound below which the sparse-result warning is added.
	MinResults int
	// MinRatingsForConfidence is the rating count at which the rating factor
	// reaches full confidence.
	MinRatingsForConfidence int
}

// DefaultConfig returns the production pipeline settings.
func DefaultConfig() Config {
	return Config{
		Weights:                 DefaultWeights(),
		DistanceThreshold:       0.3,
		MaxResults:              10,
		MinResults:              5,
		MinRatingsForConfidence: 1,
	}
}

// Service runs the search pipeline. Collaborator handles are injected once
// and treated as long-lived and safe for concurrent use.
type Service struct {
	extractor   FilterExtractor
	embedder    Embedder
	retriever   Retriever
	recommender Recommender
	cfg         Config
}

// New creates a search service.
func New(
	extractor FilterExtractor,
	embedder Embedder,
	retriever Retriever,
	recommender Recommender,
	cfg Config,
) *Service {
	return &Service{
		extractor:   extractor,
		embedder:    embedder,
		retriever:   retriever,
		recommender: recommender,
		cfg:         cfg,
	}
}

// Search executes the full pipeline for one query.
//
// Extraction, embedding, and retrieval failures are fatal: no partial result
// is returned. A recommendation failure degrades gracefully — the ranked
// items are returned with a warning instead. Out-of-domain queries
// short-circuit after extraction: the embedder, the store, and the
// recommender are never invoked for them.
func (s *Service) Search(ctx context.Context, prompt string) (domain.SearchResult, error) {
	pred, inDomain, err := s.extractor.ExtractFilter(ctx, prompt)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("extract filter: %w", err)
	}

	if !inDomain {
		return domain.SearchResult{
			Items:    nil,
			Warnings: []string{WarningOutOfDomain},
			Filters:  pred,
		}, nil
	}

	emb, err := s.embedder.Embed(ctx, prompt)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("embed query: %w", err)
	}

	candidates, err := s.retriever.Retrieve(ctx, emb.Embedding, pred, s.cfg.DistanceThreshold, s.cfg.MaxResults)
	if err != nil {
		return domain.SearchResult{}, fmt.Errorf("retrieve candidates: %w", err)
	}

	ranked, skipped := rankCandidates(candidates, s.cfg.Weights, s.cfg.MinRatingsForConfidence)

	warnings := make([]string, 0, 2)
	if len(skipped) > 0 {
		logger.FromContext(ctx).Warn("skipped malformed candidates",
			zap.Strings("parent_asins", skipped))
		warnings = append(warnings, fmt.Sprintf("%d item(s) could not be ranked and were omitted.", len(skipped)))
	}
	if len(ranked) < s.cfg.MinResults {
		warnings = append(warnings, WarningSparseResults)
	}

	result := domain.SearchResult{
		Items:    ranked,
		Warnings: warnings,
		Filters:  pred,
	}

	titles := make([]string, len(ranked))
	for i, c := range ranked {
		titles[i] = c.Title
	}

	rec, err := s.recommender.Recommend(ctx, prompt, titles)
	if err != nil {
		// Ranked results are useful without prose; degrade instead of failing.
		logger.FromContext(ctx).Warn("recommendation generation failed", zap.Error(err))
		result.Warnings = append(result.Warnings, WarningNoRecommendation)
		return result, nil
	}
	result.Recommendation = &rec

	return result, nil
}
