package index

// Posting records one document containing a term, with the term's frequency
// within that document's field.
type Posting struct {
	DocID    uint64
	TermFreq uint32
}

// PostingList is the set of documents containing a term within one field.
// Lists are kept sorted by ascending DocID so result ordering is
// reproducible across builds.
type PostingList []Posting
