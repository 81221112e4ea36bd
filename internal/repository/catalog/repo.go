// Package catalog adapts the Redis FT index of fashion products to the
// retrieval and lookup contracts of the use cases.
package catalog

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/stephen-mccullough/fashion-search/internal/db"
	"github.com/stephen-mccullough/fashion-search/internal/domain"
	"github.com/stephen-mccullough/fashion-search/internal/domain/search/filter"
	"github.com/stephen-mccullough/fashion-search/internal/logger"
)

// store is the consumer interface for catalog operations.
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	CreateIndex(ctx context.Context, def *db.IndexDefinition) error
	IndexExists(ctx context.Context, name string) (bool, error)
}

// HNSWConfig holds index build parameters.
type HNSWConfig struct {
	M           int
	EFConstruct int
}

// Repo implements search.Retriever and item.ProductReader over a Redis
// product index.
type Repo struct {
	store     store
	keyPrefix string
	hnsw      HNSWConfig
}

// New creates a catalog repository. keyPrefix namespaces all product keys
// and the index name.
func New(s store, keyPrefix string) *Repo {
	return &Repo{
		store:     s,
		keyPrefix: keyPrefix,
		hnsw:      HNSWConfig{M: 32, EFConstruct: 400},
	}
}

// WithHNSW overrides HNSW index build parameters.
func (r *Repo) WithHNSW(cfg HNSWConfig) *Repo {
	if cfg.M > 0 {
		r.hnsw.M = cfg.M
	}
	if cfg.EFConstruct > 0 {
		r.hnsw.EFConstruct = cfg.EFConstruct
	}
	return r
}

func (r *Repo) indexName() string { return r.keyPrefix + "products:idx" }
func (r *Repo) docPrefix() string { return r.keyPrefix + "products:" }

// Retrieve implements search.Retriever: KNN over the product index with the
// predicate as a pre-filter, keeping only candidates within threshold on the
// distance scale.
func (r *Repo) Retrieve(
	ctx context.Context, vector []float32, pred filter.Predicate,
	threshold float64, limit int,
) ([]domain.Candidate, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName(),
		Filter:       pred,
		Vector:       vector,
		K:            limit,
		ReturnFields: []string{"title", "description", "average_rating", "rating_number", "__vector_score"},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("%w: search knn: %w", domain.ErrRetrieval, err)
	}
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	candidates := make([]domain.Candidate, 0, len(sr.Entries))
	for _, entry := range sr.Entries {
		if entry.Distance > threshold {
			continue
		}
		c, err := candidateFromEntry(r.docPrefix(), entry)
		if err != nil {
			// One broken record must not sink the whole retrieval.
			logger.FromContext(ctx).Warn("dropping unparsable catalog entry",
				zap.String("key", entry.Key), zap.Error(err))
			continue
		}
		candidates = append(candidates, c)
	}

	return candidates, nil
}

// Get implements item.ProductReader.
func (r *Repo) Get(ctx context.Context, parentASIN string) (domain.Product, error) {
	fields, err := r.store.HGetAll(ctx, r.docPrefix()+parentASIN)
	if err != nil {
		return domain.Product{}, fmt.Errorf("%w: get product: %w", domain.ErrRetrieval, err)
	}
	if len(fields) == 0 {
		return domain.Product{}, domain.ErrProductNotFound
	}
	return productFromFields(parentASIN, fields)
}

// EnsureIndex creates the product FT index when it does not exist yet.
// vectorDim must match the embedding model's output dimensions.
func (r *Repo) EnsureIndex(ctx context.Context, vectorDim int) error {
	exists, err := r.store.IndexExists(ctx, r.indexName())
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	if exists {
		return nil
	}

	def, err := db.NewIndex(r.indexName()).
		Prefix(r.docPrefix()).
		Tag("main_category").
		Tag("brand").
		Tag("store").
		Numeric("price").
		Numeric("average_rating").
		Numeric("rating_number").
		Text("title").
		VectorHNSW("embedding", vectorDim, db.DistanceCosine, r.hnsw.M, r.hnsw.EFConstruct).
		Build()
	if err != nil {
		return fmt.Errorf("build index definition: %w", err)
	}

	if err := r.store.CreateIndex(ctx, def); err != nil {
		return fmt.Errorf("create index %s: %w", r.indexName(), err)
	}
	return nil
}
