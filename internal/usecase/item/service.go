// Package item serves single-product lookups by parent ASIN. This is a
// pass-through outside the ranking pipeline.
package item

import (
	"context"
	"fmt"
	"strings"

	"github.com/stephen-mccullough/fashion-search/internal/domain"
)

// Service handles product lookups.
type Service struct {
	products ProductReader
}

// New creates an item service.
func New(products ProductReader) *Service {
	return &Service{products: products}
}

// Get fetches one product by its parent ASIN.
func (s *Service) Get(ctx context.Context, parentASIN string) (domain.Product, error) {
	parentASIN = strings.TrimSpace(parentASIN)
	if parentASIN == "" {
		return domain.Product{}, fmt.Errorf("parent ASIN is required: %w", domain.ErrProductNotFound)
	}

	p, err := s.products.Get(ctx, parentASIN)
	if err != nil {
		return domain.Product{}, fmt.Errorf("get product %s: %w", parentASIN, err)
	}
	return p, nil
}
