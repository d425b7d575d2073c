// Package store holds the per-document stored field values needed to
// render and filter search results. Entries are created exactly once during
// an index build and never mutated afterwards.
package store

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"sort"
	"sync"

	"github.com/andrewlalis/airsearch/model"
)

// DocumentStore maps document ids to their stored field values. A stored
// field that was supplied empty keeps an entry with an empty value; a field
// that was absent has no entry at all, so the two cases stay
// distinguishable after a round-trip through disk.
type DocumentStore struct {
	Mu   sync.RWMutex
	Docs map[uint64]model.StoredFields
}

// NewDocumentStore creates an empty store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{Docs: make(map[uint64]model.StoredFields)}
}

// Put stores the fields for a new document id. Each id may be stored
// exactly once.
func (ds *DocumentStore) Put(docID uint64, fields model.StoredFields) error {
	ds.Mu.Lock()
	defer ds.Mu.Unlock()
	if _, exists := ds.Docs[docID]; exists {
		return fmt.Errorf("document id %d already stored", docID)
	}
	ds.Docs[docID] = fields
	return nil
}

// Get returns the stored fields for docID.
func (ds *DocumentStore) Get(docID uint64) (model.StoredFields, bool) {
	ds.Mu.RLock()
	defer ds.Mu.RUnlock()
	fields, ok := ds.Docs[docID]
	return fields, ok
}

// Len returns the number of stored documents.
func (ds *DocumentStore) Len() int {
	ds.Mu.RLock()
	defer ds.Mu.RUnlock()
	return len(ds.Docs)
}

// IDs returns every stored document id in ascending order.
func (ds *DocumentStore) IDs() []uint64 {
	ds.Mu.RLock()
	defer ds.Mu.RUnlock()
	ids := make([]uint64, 0, len(ds.Docs))
	for id := range ds.Docs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// gobDocumentStoreData is a helper struct for gob encoding/decoding of
// DocumentStore data. It excludes the mutex.
type gobDocumentStoreData struct {
	Docs map[uint64]model.StoredFields
}

// GobEncode implements the gob.GobEncoder interface for DocumentStore.
func (ds *DocumentStore) GobEncode() ([]byte, error) {
	ds.Mu.RLock()
	defer ds.Mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(gobDocumentStoreData{Docs: ds.Docs}); err != nil {
		return nil, fmt.Errorf("failed to gob encode document store data: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements the gob.GobDecoder interface for DocumentStore.
func (ds *DocumentStore) GobDecode(raw []byte) error {
	var data gobDocumentStoreData
	if err := gob.NewDecoder(bytes.NewBuffer(raw)).Decode(&data); err != nil {
		return fmt.Errorf("failed to gob decode document store data: %w", err)
	}

	ds.Mu.Lock()
	defer ds.Mu.Unlock()
	ds.Docs = data.Docs
	if ds.Docs == nil {
		ds.Docs = make(map[uint64]model.StoredFields)
	}
	return nil
}
