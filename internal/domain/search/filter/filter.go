// Package filter defines the structured facet constraints extracted from a
// free-text query and applied as a pre-filter during retrieval.
package filter

import "fmt"

// Predicate holds optional facet constraints over the product catalog.
// A nil field means the facet is unconstrained. The zero value matches
// everything. The JSON shape is shared by the LLM extraction schema and
// the `filters` field of the search response envelope.
type Predicate struct {
	MainCategory *string  `json:"main_category,omitempty"`
	Brand        *string  `json:"brand,omitempty"`
	Store        *string  `json:"store,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	MinRating    *float64 `json:"min_average_rating,omitempty"`
	MaxRating    *float64 `json:"max_average_rating,omitempty"`
}

// IsEmpty reports whether the predicate constrains nothing.
func (p Predicate) IsEmpty() bool {
	return p.MainCategory == nil && p.Brand == nil && p.Store == nil &&
		p.MinPrice == nil && p.MaxPrice == nil &&
		p.MinRating == nil && p.MaxRating == nil
}

// Validate checks bound ordering and rating scale.
func (p Predicate) Validate() error {
	if p.MinPrice != nil && *p.MinPrice < 0 {
		return fmt.Errorf("min_price must be non-negative, got %g", *p.MinPrice)
	}
	if p.MinPrice != nil && p.MaxPrice != nil && *p.MinPrice > *p.MaxPrice {
		return fmt.Errorf("min_price %g exceeds max_price %g", *p.MinPrice, *p.MaxPrice)
	}
	for name, r := range map[string]*float64{"min_average_rating": p.MinRating, "max_average_rating": p.MaxRating} {
		if r != nil && (*r < 0 || *r > 5) {
			return fmt.Errorf("%s must be within [0, 5], got %g", name, *r)
		}
	}
	if p.MinRating != nil && p.MaxRating != nil && *p.MinRating > *p.MaxRating {
		return fmt.Errorf("min_average_rating %g exceeds max_average_rating %g", *p.MinRating, *p.MaxRating)
	}
	return nil
}
