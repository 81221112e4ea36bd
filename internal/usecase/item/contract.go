package item

import (
	"context"

	"github.com/stephen-mccullough/fashion-search/internal/domain"
)

// ProductReader fetches full catalog records by external identifier.
type ProductReader interface {
	Get(ctx context.Context, parentASIN string) (domain.Product, error)
}
