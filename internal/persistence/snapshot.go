// Package persistence writes a built index to disk and reopens it. A saved
// snapshot round-trips exactly: every term, posting, and stored value comes
// back identical. Saving is atomic from the caller's point of view: the new
// snapshot is assembled in a sibling temp directory and swapped into place
// only once fully written, so an old index stays queryable until then and a
// failed save leaves no partial state at the target location.
package persistence

import (
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/andrewlalis/airsearch/config"
	"github.com/andrewlalis/airsearch/index"
	apperrors "github.com/andrewlalis/airsearch/internal/errors"
	"github.com/andrewlalis/airsearch/store"
)

const (
	schemaFile        = "schema.gob"
	invertedIndexFile = "inverted_index.gob"
	documentStoreFile = "document_store.gob"
)

// Snapshot is the persisted aggregate of one built index.
type Snapshot struct {
	Schema *config.Schema
	Index  *index.InvertedIndex
	Docs   *store.DocumentStore
}

// Exists reports whether a previously saved index is present at location.
func Exists(location string) bool {
	_, err := os.Stat(filepath.Join(location, schemaFile))
	return err == nil
}

// Save writes the snapshot to location, replacing any previous index there.
// The three index files are written concurrently into a temp directory
// which then replaces the target in a single rename.
func Save(location string, snap *Snapshot) error {
	tmp := location + ".tmp"
	if err := os.RemoveAll(tmp); err != nil {
		return apperrors.NewPersistenceError("clear temp dir", tmp, err)
	}
	if err := os.MkdirAll(tmp, 0750); err != nil {
		return apperrors.NewPersistenceError("create temp dir", tmp, err)
	}

	var g errgroup.Group
	g.Go(func() error { return SaveGob(filepath.Join(tmp, schemaFile), snap.Schema) })
	g.Go(func() error { return SaveGob(filepath.Join(tmp, invertedIndexFile), snap.Index) })
	g.Go(func() error { return SaveGob(filepath.Join(tmp, documentStoreFile), snap.Docs) })
	if err := g.Wait(); err != nil {
		_ = os.RemoveAll(tmp)
		return apperrors.NewPersistenceError("write snapshot", tmp, err)
	}

	if err := os.RemoveAll(location); err != nil {
		_ = os.RemoveAll(tmp)
		return apperrors.NewPersistenceError("remove previous index", location, err)
	}
	if err := os.Rename(tmp, location); err != nil {
		return apperrors.NewPersistenceError("publish snapshot", location, err)
	}
	return nil
}

// Open loads a previously saved index from location. It returns
// errors.ErrNoIndex when nothing has been saved there.
func Open(location string) (*Snapshot, error) {
	if !Exists(location) {
		return nil, fmt.Errorf("location %s: %w", location, apperrors.ErrNoIndex)
	}

	schema := &config.Schema{}
	if err := LoadGob(filepath.Join(location, schemaFile), schema); err != nil {
		return nil, apperrors.NewPersistenceError("load schema", location, err)
	}
	invIndex := &index.InvertedIndex{}
	if err := LoadGob(filepath.Join(location, invertedIndexFile), invIndex); err != nil {
		return nil, apperrors.NewPersistenceError("load inverted index", location, err)
	}
	docs := store.NewDocumentStore()
	if err := LoadGob(filepath.Join(location, documentStoreFile), docs); err != nil {
		return nil, apperrors.NewPersistenceError("load document store", location, err)
	}

	return &Snapshot{Schema: schema, Index: invIndex, Docs: docs}, nil
}
