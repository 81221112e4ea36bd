package db

import "github.com/stephen-mccullough/fashion-search/internal/domain/search/filter"

// KNNQuery is the input for vector similarity search.
type KNNQuery struct {
	IndexName    string
	Filter       filter.Predicate
	Vector       []float32
	K            int
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit. Distance is the raw vector distance
// reported by the engine, not converted to a similarity.
type SearchEntry struct {
	Key      string
	Distance float64
	Fields   map[string]string
}
