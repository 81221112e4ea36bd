package sdk

// Filters mirrors the facet constraints the server extracted from the prompt.
// Nil fields were not constrained.
type Filters struct {
	MainCategory *string  `json:"main_category,omitempty"`
	Brand        *string  `json:"brand,omitempty"`
	Store        *string  `json:"store,omitempty"`
	MinPrice     *float64 `json:"min_price,omitempty"`
	MaxPrice     *float64 `json:"max_price,omitempty"`
	MinRating    *float64 `json:"min_average_rating,omitempty"`
	MaxRating    *float64 `json:"max_average_rating,omitempty"`
}

// ScoredItem is one ranked search hit.
type ScoredItem struct {
	ParentASIN     string  `json:"parent_asin"`
	Title          string  `json:"title"`
	Description    string  `json:"description"`
	CosineDistance float64 `json:"cosine_distance"`
	AverageRating  float64 `json:"average_rating"`
	RatingNumber   int     `json:"rating_number"`
	Score          float64 `json:"score"`
}

// SearchResponse is the POST /search envelope. Response is nil for
// out-of-domain queries and empty for queries that matched nothing.
type SearchResponse struct {
	Response       []ScoredItem `json:"response"`
	Recommendation *string      `json:"recommendation"`
	Warnings       []string     `json:"warnings"`
	Filters        Filters      `json:"filters"`
}

// Product is a full catalog record returned by GET /items/{parentASIN}.
type Product struct {
	ParentASIN    string  `json:"parent_asin"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	MainCategory  string  `json:"main_category"`
	Brand         string  `json:"brand"`
	Store         string  `json:"store"`
	Price         float64 `json:"price"`
	AverageRating float64 `json:"average_rating"`
	RatingNumber  int     `json:"rating_number"`
}

// HealthStatus represents the aggregated system health.
type HealthStatus struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
