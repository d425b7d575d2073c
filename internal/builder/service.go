// Package builder turns a sequence of records into a sealed inverted index
// and document store in a single pass. Building is all-or-nothing: the
// first bad record aborts the build and nothing is published.
package builder

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/andrewlalis/airsearch/config"
	"github.com/andrewlalis/airsearch/index"
	"github.com/andrewlalis/airsearch/internal/analyzer"
	apperrors "github.com/andrewlalis/airsearch/internal/errors"
	"github.com/andrewlalis/airsearch/model"
	"github.com/andrewlalis/airsearch/store"
)

// Service implements the index build pass for one schema.
type Service struct {
	schema *config.Schema
	log    *logrus.Entry
}

// NewService creates a new build Service. The schema is validated up front,
// including the boost table, so a field without a declared boost fails here
// rather than at query time.
func NewService(schema *config.Schema, log *logrus.Entry) (*Service, error) {
	if schema == nil {
		return nil, fmt.Errorf("schema cannot be nil")
	}
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if _, err := schema.BoostTable(); err != nil {
		return nil, fmt.Errorf("invalid schema: %w", err)
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return &Service{schema: schema, log: log}, nil
}

// Build iterates the records once, in input order, and produces a sealed
// inverted index plus the document store. Any record missing a required
// field, carrying a mistyped numeric value, or reusing an id aborts the
// whole build with a BuildError.
func (s *Service) Build(records []model.Document) (*index.InvertedIndex, *store.DocumentStore, error) {
	invIndex := index.NewInvertedIndex(s.schema)
	docs := store.NewDocumentStore()

	for _, rec := range records {
		if err := s.addRecord(invIndex, docs, rec); err != nil {
			return nil, nil, err
		}
	}

	invIndex.DocCount = docs.Len()
	invIndex.Seal()

	termTotal := 0
	for _, dict := range invIndex.Fields {
		termTotal += dict.NumTerms()
	}
	s.log.WithFields(logrus.Fields{
		"documents": docs.Len(),
		"terms":     termTotal,
	}).Info("built index")
	return invIndex, docs, nil
}

func (s *Service) addRecord(invIndex *index.InvertedIndex, docs *store.DocumentStore, rec model.Document) error {
	stored := make(model.StoredFields, len(s.schema.Fields))

	for _, fd := range s.schema.Fields {
		value, present := rec.Get(fd.Name)
		if !present {
			if !fd.Optional {
				return apperrors.NewBuildError(rec.ID, fd.Name, "missing required field")
			}
			continue
		}

		switch fd.Kind {
		case config.TextIndexed:
			dict, ok := invIndex.Dictionary(fd.Name)
			if !ok {
				return apperrors.NewBuildError(rec.ID, fd.Name, "no dictionary for text field")
			}
			termFreqs := make(map[string]uint32)
			for _, term := range analyzer.Analyze(value.Text()) {
				termFreqs[term]++
			}
			for term, freq := range termFreqs {
				dict.Add(term, rec.ID, freq)
			}
		case config.NumericStored:
			if value.Kind != model.KindInt && value.Kind != model.KindFloat {
				return apperrors.NewBuildError(rec.ID, fd.Name, "numeric field holds a non-numeric value")
			}
		}

		stored[fd.Name] = value
	}

	if err := docs.Put(rec.ID, stored); err != nil {
		return apperrors.NewBuildError(rec.ID, "", err.Error())
	}
	return nil
}
