package domain

import "errors"

var (
	// ErrFilterExtraction signals a failed or malformed filter-extraction call.
	ErrFilterExtraction = errors.New("filter extraction failed")
	// ErrEmbedding signals an embedding provider failure.
	ErrEmbedding = errors.New("embedding failed")
	// ErrRetrieval signals a similarity store failure.
	ErrRetrieval = errors.New("retrieval failed")
	// ErrRecommendation signals a failed recommendation-generation call.
	ErrRecommendation = errors.New("recommendation failed")
	// ErrMalformedCandidate signals a retrieved candidate with unusable numeric fields.
	ErrMalformedCandidate = errors.New("malformed candidate")
	// ErrProductNotFound signals a missing catalog product.
	ErrProductNotFound = errors.New("product not found")
)
