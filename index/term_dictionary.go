package index

import (
	"sort"
	"strings"
)

// TermDictionary maps every normalized term of one text field to its
// postings. The document frequency of a term is the length of its posting
// list. A sealed dictionary additionally keeps a sorted term slice so that
// prefix resolution is a binary search rather than a scan of every term.
type TermDictionary struct {
	Postings map[string]PostingList

	// sortedTerms is derived from Postings by Seal and is not persisted.
	sortedTerms []string
}

// NewTermDictionary creates an empty dictionary.
func NewTermDictionary() *TermDictionary {
	return &TermDictionary{Postings: make(map[string]PostingList)}
}

// Add appends a posting for term. Build-time only; callers must Seal the
// dictionary before querying it.
func (d *TermDictionary) Add(term string, docID uint64, termFreq uint32) {
	d.Postings[term] = append(d.Postings[term], Posting{DocID: docID, TermFreq: termFreq})
	d.sortedTerms = nil
}

// Seal sorts every posting list by ascending DocID and rebuilds the sorted
// term slice. After sealing, the dictionary is read-only.
func (d *TermDictionary) Seal() {
	for term, postings := range d.Postings {
		sort.Slice(postings, func(i, j int) bool { return postings[i].DocID < postings[j].DocID })
		d.Postings[term] = postings
	}
	terms := make([]string, 0, len(d.Postings))
	for term := range d.Postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)
	d.sortedTerms = terms
}

// Lookup returns the posting list for an exact term.
func (d *TermDictionary) Lookup(term string) (PostingList, bool) {
	postings, ok := d.Postings[term]
	return postings, ok
}

// DocFreq returns the number of distinct documents containing term.
func (d *TermDictionary) DocFreq(term string) int {
	return len(d.Postings[term])
}

// NumTerms returns the number of distinct terms in the dictionary.
func (d *TermDictionary) NumTerms() int {
	return len(d.Postings)
}

// TermsWithPrefix returns every term in the dictionary beginning with
// prefix, in ascending order. The dictionary must be sealed. Resolution
// binary-searches the sorted term slice for the first candidate and walks
// forward while the prefix still matches, so cost is O(log T + matches).
func (d *TermDictionary) TermsWithPrefix(prefix string) []string {
	if prefix == "" {
		return nil
	}
	start := sort.SearchStrings(d.sortedTerms, prefix)
	var matches []string
	for i := start; i < len(d.sortedTerms); i++ {
		if !strings.HasPrefix(d.sortedTerms[i], prefix) {
			break
		}
		matches = append(matches, d.sortedTerms[i])
	}
	return matches
}
