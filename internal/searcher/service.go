// Package searcher evaluates raw queries against a built index. Every
// whitespace-delimited query token becomes one prefix clause per text
// field; the clauses form a disjunction whose per-document contributions
// accumulate additively, and the top-K documents by score are returned.
package searcher

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
	"github.com/juju/clock"

	"github.com/andrewlalis/airsearch/config"
	"github.com/andrewlalis/airsearch/index"
	"github.com/andrewlalis/airsearch/internal/analyzer"
	apperrors "github.com/andrewlalis/airsearch/internal/errors"
	"github.com/andrewlalis/airsearch/services"
	"github.com/andrewlalis/airsearch/store"
)

// DefaultTopK is the number of hits returned when the caller does not ask
// for a specific k.
const DefaultTopK = 10

// Service implements the query evaluation logic for a single index.
// It fulfills the services.Searcher contract.
type Service struct {
	invertedIndex *index.InvertedIndex
	documentStore *store.DocumentStore
	schema        *config.Schema
	boosts        map[string]float64
	clk           clock.Clock
}

// NewService creates a new search Service. The boost table is materialized
// from the schema once, so a text field without a declared boost fails here.
// A nil clk falls back to the wall clock.
func NewService(invIndex *index.InvertedIndex, docStore *store.DocumentStore, schema *config.Schema, clk clock.Clock) (*Service, error) {
	if invIndex == nil {
		return nil, fmt.Errorf("inverted index cannot be nil")
	}
	if docStore == nil {
		return nil, fmt.Errorf("document store cannot be nil")
	}
	if schema == nil {
		return nil, fmt.Errorf("schema cannot be nil")
	}
	boosts, err := schema.BoostTable()
	if err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if clk == nil {
		clk = clock.WallClock
	}
	return &Service{
		invertedIndex: invIndex,
		documentStore: docStore,
		schema:        schema,
		boosts:        boosts,
		clk:           clk,
	}, nil
}

// Search evaluates rawQuery and returns up to k hits ordered by descending
// score, ties broken by ascending document id. A blank query yields an
// empty result with a nil error. Failures resolving stored documents are
// reported as a SearchError alongside an empty result, never a panic.
func (s *Service) Search(rawQuery string, k int) (services.SearchResult, error) {
	start := s.clk.Now()
	result := services.SearchResult{
		Hits:    []services.SearchHit{},
		QueryID: uuid.NewString(),
	}
	if k <= 0 {
		k = DefaultTopK
	}

	queryTerms := analyzer.Analyze(rawQuery)
	if len(queryTerms) == 0 {
		result.Took = s.clk.Now().Sub(start).Milliseconds()
		return result, nil
	}

	s.invertedIndex.Mu.RLock()
	defer s.invertedIndex.Mu.RUnlock()

	scores := s.accumulateScores(queryTerms)
	ranked := rankTopK(scores, k)

	hits := make([]services.SearchHit, 0, len(ranked))
	for _, cand := range ranked {
		fields, ok := s.documentStore.Get(cand.docID)
		if !ok {
			result.Took = s.clk.Now().Sub(start).Milliseconds()
			return result, apperrors.NewSearchError(
				fmt.Sprintf("stored fields missing for document %d", cand.docID), nil)
		}
		hits = append(hits, services.SearchHit{
			DocID: cand.docID,
			Name:  fields[s.schema.DisplayField].Text(),
			Score: cand.score,
		})
	}

	result.Hits = hits
	result.Total = len(scores)
	result.Took = s.clk.Now().Sub(start).Milliseconds()
	return result, nil
}

type candidate struct {
	docID uint64
	score float64
}

// accumulateScores resolves every (query term, text field) prefix clause
// and sums its contributions per document. Contribution of one matching
// term is boost(field) * (1 + ln(tf)) * ln(1 + N/df): sublinear in term
// frequency, increasing in rarity. Fields are walked in schema declaration
// order so floating-point accumulation order is reproducible.
func (s *Service) accumulateScores(queryTerms []string) map[uint64]float64 {
	scores := make(map[uint64]float64)
	totalDocs := float64(s.invertedIndex.DocCount)
	if totalDocs == 0 {
		return scores
	}

	for _, queryTerm := range queryTerms {
		for _, fd := range s.schema.TextFields() {
			dict, ok := s.invertedIndex.Dictionary(fd.Name)
			if !ok {
				continue
			}
			boost := s.boosts[fd.Name]
			for _, term := range dict.TermsWithPrefix(queryTerm) {
				postings, _ := dict.Lookup(term)
				idf := math.Log(1 + totalDocs/float64(len(postings)))
				for _, posting := range postings {
					tfScore := 1 + math.Log(float64(posting.TermFreq))
					scores[posting.DocID] += boost * tfScore * idf
				}
			}
		}
	}
	return scores
}

// rankTopK selects the k highest-scoring candidates, ties broken by
// ascending document id for determinism.
func rankTopK(scores map[uint64]float64, k int) []candidate {
	ranked := make([]candidate, 0, len(scores))
	for docID, score := range scores {
		ranked = append(ranked, candidate{docID: docID, score: score})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].docID < ranked[j].docID
	})
	if len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}
