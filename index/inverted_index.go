// Package index holds the in-memory inverted index: one term dictionary per
// text-indexed field, plus the corpus document count used for scoring. The
// index is mutated only during a build pass; once sealed it is immutable
// and safe for unlimited concurrent readers.
package index

import (
	"bytes"
	"encoding/gob"
	"sync"

	"github.com/andrewlalis/airsearch/config"
)

// InvertedIndex is the aggregate of all per-field term dictionaries.
type InvertedIndex struct {
	Mu       sync.RWMutex
	Fields   map[string]*TermDictionary
	DocCount int
}

// NewInvertedIndex creates an empty index with one dictionary per
// text-indexed field of the schema.
func NewInvertedIndex(schema *config.Schema) *InvertedIndex {
	fields := make(map[string]*TermDictionary)
	for _, fd := range schema.TextFields() {
		fields[fd.Name] = NewTermDictionary()
	}
	return &InvertedIndex{Fields: fields}
}

// Dictionary returns the term dictionary for a text field.
func (ii *InvertedIndex) Dictionary(field string) (*TermDictionary, bool) {
	dict, ok := ii.Fields[field]
	return dict, ok
}

// Seal finalizes every dictionary after a build pass.
func (ii *InvertedIndex) Seal() {
	for _, dict := range ii.Fields {
		dict.Seal()
	}
}

// gobInvertedIndexData is a helper struct for gob encoding/decoding of
// InvertedIndex data. It excludes the mutex.
type gobInvertedIndexData struct {
	Fields   map[string]map[string]PostingList
	DocCount int
}

// GobEncode implements the gob.GobEncoder interface for InvertedIndex.
func (ii *InvertedIndex) GobEncode() ([]byte, error) {
	ii.Mu.RLock()
	defer ii.Mu.RUnlock()

	data := gobInvertedIndexData{
		Fields:   make(map[string]map[string]PostingList, len(ii.Fields)),
		DocCount: ii.DocCount,
	}
	for field, dict := range ii.Fields {
		data.Fields[field] = dict.Postings
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(data); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for InvertedIndex. The
// decoded dictionaries are sealed so the index is immediately queryable.
func (ii *InvertedIndex) GobDecode(raw []byte) error {
	var data gobInvertedIndexData
	if err := gob.NewDecoder(bytes.NewBuffer(raw)).Decode(&data); err != nil {
		return err
	}

	ii.Mu.Lock()
	defer ii.Mu.Unlock()

	ii.Fields = make(map[string]*TermDictionary, len(data.Fields))
	for field, postings := range data.Fields {
		if postings == nil {
			postings = make(map[string]PostingList)
		}
		ii.Fields[field] = &TermDictionary{Postings: postings}
	}
	ii.DocCount = data.DocCount
	for _, dict := range ii.Fields {
		dict.Seal()
	}
	return nil
}
