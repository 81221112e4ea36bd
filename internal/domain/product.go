package domain

// Product is a full catalog record as stored in the similarity store.
// ParentASIN is the external identifier callers use for item lookup.
type Product struct {
	ParentASIN    string  `json:"parent_asin"`
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	MainCategory  string  `json:"main_category"`
	Brand         string  `json:"brand"`
	Store         string  `json:"store"`
	Price         float64 `json:"price"`
	RatingAverage float64 `json:"average_rating"`
	RatingCount   int     `json:"rating_number"`
}
