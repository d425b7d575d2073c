package searcher

import (
	"errors"
	"testing"

	"github.com/andrewlalis/airsearch/config"
	"github.com/andrewlalis/airsearch/internal/builder"
	apperrors "github.com/andrewlalis/airsearch/internal/errors"
	"github.com/andrewlalis/airsearch/model"
	"github.com/andrewlalis/airsearch/services"
	"github.com/andrewlalis/airsearch/store"
)

// --- Test Helpers ---

func newTestSchema() *config.Schema {
	return &config.Schema{
		DisplayField: "name",
		Fields: []config.FieldDescriptor{
			{Name: "name", Kind: config.TextIndexed, Boost: 3},
			{Name: "municipality", Kind: config.TextIndexed, Boost: 2, Optional: true},
			{Name: "ident", Kind: config.TextIndexed, Boost: 2, Optional: true},
		},
	}
}

func airport(id uint64, name, municipality string) model.Document {
	fields := map[string]model.Value{"name": model.String(name)}
	if municipality != "" {
		fields["municipality"] = model.String(municipality)
	}
	return model.Document{ID: id, Fields: fields}
}

// setupTestSearcher builds an index over records and returns a search
// service plus the backing document store.
func setupTestSearcher(t *testing.T, records []model.Document) (*Service, *store.DocumentStore) {
	t.Helper()
	schema := newTestSchema()
	buildService, err := builder.NewService(schema, nil)
	if err != nil {
		t.Fatalf("failed to create build service: %v", err)
	}
	invIndex, docs, err := buildService.Build(records)
	if err != nil {
		t.Fatalf("failed to build index: %v", err)
	}
	searchService, err := NewService(invIndex, docs, schema, nil)
	if err != nil {
		t.Fatalf("failed to create search service: %v", err)
	}
	return searchService, docs
}

func hitIDs(result services.SearchResult) []uint64 {
	ids := make([]uint64, len(result.Hits))
	for i, hit := range result.Hits {
		ids[i] = hit.DocID
	}
	return ids
}

// --- Test Cases ---

func TestNewService(t *testing.T) {
	schema := newTestSchema()
	buildService, _ := builder.NewService(schema, nil)
	invIndex, docs, _ := buildService.Build(nil)

	t.Run("valid initialization", func(t *testing.T) {
		if _, err := NewService(invIndex, docs, schema, nil); err != nil {
			t.Errorf("NewService() error = %v, wantErr nil", err)
		}
	})
	t.Run("nil inverted index", func(t *testing.T) {
		if _, err := NewService(nil, docs, schema, nil); err == nil {
			t.Error("NewService() with nil invertedIndex, wantErr, got nil")
		}
	})
	t.Run("nil document store", func(t *testing.T) {
		if _, err := NewService(invIndex, nil, schema, nil); err == nil {
			t.Error("NewService() with nil documentStore, wantErr, got nil")
		}
	})
	t.Run("nil schema", func(t *testing.T) {
		if _, err := NewService(invIndex, docs, nil, nil); err == nil {
			t.Error("NewService() with nil schema, wantErr, got nil")
		}
	})
}

func TestSearchTacomaExample(t *testing.T) {
	searchService, _ := setupTestSearcher(t, []model.Document{
		airport(1, "Seattle-Tacoma International Airport", "Seattle"),
		airport(2, "Tacoma Narrows Airport", "Tacoma"),
	})

	result, err := searchService.Search("tac", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(result.Hits) != 2 {
		t.Fatalf("got %d hits, want 2: %v", len(result.Hits), result.Hits)
	}
	// Doc 2 matches "tacoma" in both the boosted name field and
	// municipality, doc 1 only in name; doc 2 must rank at or above doc 1.
	if result.Hits[0].DocID != 2 {
		t.Errorf("expected doc 2 first, got order %v", hitIDs(result))
	}
	if result.Hits[0].Score < result.Hits[1].Score {
		t.Errorf("hits not ordered by descending score: %v", result.Hits)
	}
	if result.Hits[0].Name != "Tacoma Narrows Airport" {
		t.Errorf("display name = %q, want %q", result.Hits[0].Name, "Tacoma Narrows Airport")
	}
	if result.QueryID == "" {
		t.Error("result should carry a query id")
	}
}

func TestSearchBlankQuery(t *testing.T) {
	searchService, _ := setupTestSearcher(t, []model.Document{
		airport(1, "Tacoma Narrows Airport", "Tacoma"),
	})

	for _, query := range []string{"", "   ", "\t\n"} {
		result, err := searchService.Search(query, 10)
		if err != nil {
			t.Errorf("Search(%q) returned error %v, want nil", query, err)
		}
		if len(result.Hits) != 0 {
			t.Errorf("Search(%q) returned %d hits, want 0", query, len(result.Hits))
		}
	}
}

func TestSearchTopKTruncation(t *testing.T) {
	records := []model.Document{
		airport(1, "Alpha airport", ""),
		airport(2, "Bravo airport", ""),
		airport(3, "Charlie airport", ""),
		airport(4, "Delta airport", ""),
		airport(5, "Echo airport airport", ""), // highest tf for "airport"
	}
	searchService, _ := setupTestSearcher(t, records)

	all, err := searchService.Search("airport", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(all.Hits) != 5 {
		t.Fatalf("got %d hits, want 5", len(all.Hits))
	}
	if all.Total != 5 {
		t.Errorf("Total = %d, want 5", all.Total)
	}

	one, err := searchService.Search("airport", 1)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(one.Hits) != 1 {
		t.Fatalf("got %d hits with k=1, want 1", len(one.Hits))
	}
	if one.Hits[0].DocID != all.Hits[0].DocID {
		t.Errorf("k=1 should return the top hit %d, got %d", all.Hits[0].DocID, one.Hits[0].DocID)
	}
	if one.Hits[0].DocID != 5 {
		t.Errorf("doc 5 has the highest term frequency and should rank first, got %d", one.Hits[0].DocID)
	}
}

func TestSearchTieBreakByAscendingDocID(t *testing.T) {
	// Identical documents accumulate identical scores.
	records := []model.Document{
		airport(30, "Tacoma Field", "Tacoma"),
		airport(3, "Tacoma Field", "Tacoma"),
		airport(12, "Tacoma Field", "Tacoma"),
	}
	searchService, _ := setupTestSearcher(t, records)

	result, err := searchService.Search("tacoma", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	want := []uint64{3, 12, 30}
	got := hitIDs(result)
	if len(got) != 3 || got[0] != want[0] || got[1] != want[1] || got[2] != want[2] {
		t.Errorf("tie-break order = %v, want %v", got, want)
	}
}

func TestSearchDeterminism(t *testing.T) {
	records := []model.Document{
		airport(1, "Seattle-Tacoma International Airport", "Seattle"),
		airport(2, "Tacoma Narrows Airport", "Tacoma"),
		airport(3, "Tahiti Faa'a International Airport", "Papeete"),
	}
	searchService, _ := setupTestSearcher(t, records)

	first, err := searchService.Search("ta airport", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	for i := 0; i < 20; i++ {
		again, err := searchService.Search("ta airport", 10)
		if err != nil {
			t.Fatalf("Search failed: %v", err)
		}
		if len(again.Hits) != len(first.Hits) {
			t.Fatalf("hit count changed between runs: %d != %d", len(again.Hits), len(first.Hits))
		}
		for j := range again.Hits {
			if again.Hits[j].DocID != first.Hits[j].DocID || again.Hits[j].Score != first.Hits[j].Score {
				t.Fatalf("run %d differs at position %d: %+v != %+v", i, j, again.Hits[j], first.Hits[j])
			}
		}
	}
}

func TestSearchBoostMonotonicity(t *testing.T) {
	// Two documents identical except for which field holds the matching
	// term: name (boost 3) must rank at or above municipality (boost 2).
	records := []model.Document{
		airport(1, "Plainfield", "Zephyr"),
		airport(2, "Zephyr", "Plainfield"),
	}
	searchService, _ := setupTestSearcher(t, records)

	result, err := searchService.Search("zephyr", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(result.Hits) != 2 {
		t.Fatalf("got %d hits, want 2", len(result.Hits))
	}
	if result.Hits[0].DocID != 2 {
		t.Errorf("doc with the match in the higher-boosted name field should rank first, got %v", hitIDs(result))
	}
	if result.Hits[0].Score <= result.Hits[1].Score {
		t.Errorf("name-field match should outscore municipality-field match: %v", result.Hits)
	}
}

func TestSearchUniquePrefixReachesDocument(t *testing.T) {
	records := []model.Document{
		airport(7, "Xylophone Field", ""),
		airport(8, "Common Airport", ""),
	}
	searchService, _ := setupTestSearcher(t, records)

	result, err := searchService.Search("xylo", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(result.Hits) != 1 || result.Hits[0].DocID != 7 {
		t.Fatalf("unique prefix should reach exactly doc 7, got %v", hitIDs(result))
	}
	if result.Hits[0].Score <= 0 {
		t.Errorf("matching document must have a strictly positive score, got %v", result.Hits[0].Score)
	}
}

func TestSearchDisjunctionAcrossQueryTerms(t *testing.T) {
	records := []model.Document{
		airport(1, "Tacoma Narrows", ""),
		airport(2, "Narrows Bridge Strip", ""),
		airport(3, "Unrelated Field", ""),
	}
	searchService, _ := setupTestSearcher(t, records)

	// No single term is required: doc 1 matches both terms, docs 1 and 2
	// match "narrows", doc 3 matches neither.
	result, err := searchService.Search("tacoma narrows", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	got := hitIDs(result)
	if len(got) != 2 {
		t.Fatalf("got hits %v, want docs 1 and 2", got)
	}
	if got[0] != 1 {
		t.Errorf("doc 1 satisfies more query terms and should rank first, got %v", got)
	}
}

func TestSearchDefaultK(t *testing.T) {
	records := make([]model.Document, 0, 15)
	for id := uint64(1); id <= 15; id++ {
		records = append(records, airport(id, "Shared Airport", ""))
	}
	searchService, _ := setupTestSearcher(t, records)

	result, err := searchService.Search("shared", 0)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(result.Hits) != DefaultTopK {
		t.Errorf("k<=0 should default to %d hits, got %d", DefaultTopK, len(result.Hits))
	}
}

func TestSearchReportsMissingStoredDocument(t *testing.T) {
	searchService, docs := setupTestSearcher(t, []model.Document{
		airport(1, "Tacoma Narrows Airport", "Tacoma"),
	})

	// Simulate a corrupted index segment: postings reference a document
	// the store no longer has.
	docs.Mu.Lock()
	delete(docs.Docs, 1)
	docs.Mu.Unlock()

	result, err := searchService.Search("tacoma", 10)
	if err == nil {
		t.Fatal("expected a SearchError")
	}
	if !errors.Is(err, apperrors.ErrSearch) {
		t.Errorf("error %v should match ErrSearch", err)
	}
	if len(result.Hits) != 0 {
		t.Errorf("failed search must return an empty payload, got %d hits", len(result.Hits))
	}
}
