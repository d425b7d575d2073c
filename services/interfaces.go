// Package services defines the contracts between the index engine and its
// callers.
package services

import "github.com/andrewlalis/airsearch/model"

// SearchHit is a single ranked result: the matching document's id, its
// display value resolved from the document store, and its accumulated
// relevance score.
type SearchHit struct {
	DocID uint64  `json:"doc_id"`
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

// SearchResult holds the ranked hits for one query.
type SearchResult struct {
	Hits    []SearchHit `json:"hits"`
	Total   int         `json:"total"`
	Took    int64       `json:"took"`     // milliseconds
	QueryID string      `json:"query_id"` // unique UUID for this search query
}

// Builder constructs and persists an index from a record sequence. A build
// is all-or-nothing: on failure no partial index becomes visible.
type Builder interface {
	BuildIndex(records []model.Document) error
}

// Searcher evaluates a raw query against a built index and returns up to k
// ranked hits. A blank query or a missing index yields an empty result and
// a nil error.
type Searcher interface {
	SearchTopK(rawQuery string, k int) (SearchResult, error)
}

// IndexAccessor combines the build and query surfaces of one index
// location.
type IndexAccessor interface {
	Builder
	Searcher
	Exists() bool
}
