package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common error conditions
var (
	// ErrParse is returned when an input record cannot be parsed
	ErrParse = errors.New("record parse failed")

	// ErrBuild is returned when index construction fails
	ErrBuild = errors.New("index build failed")

	// ErrPersistence is returned when index storage I/O fails
	ErrPersistence = errors.New("index persistence failed")

	// ErrSearch is returned when query evaluation fails
	ErrSearch = errors.New("search failed")

	// ErrNoIndex is returned when no index exists at the requested location
	ErrNoIndex = errors.New("index not found")
)

// ParseError represents a malformed input record, identifying the offending
// row and field.
type ParseError struct {
	Row     int
	Field   string
	Message string
}

func (e *ParseError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("row %d: field '%s': %s", e.Row, e.Field, e.Message)
	}
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// NewParseError creates a new ParseError
func NewParseError(row int, field, message string) *ParseError {
	return &ParseError{Row: row, Field: field, Message: message}
}

// BuildError represents a failed index build, identifying the offending
// record and field. A BuildError aborts the whole build.
type BuildError struct {
	DocID   uint64
	Field   string
	Message string
}

func (e *BuildError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("record %d: field '%s': %s", e.DocID, e.Field, e.Message)
	}
	return fmt.Sprintf("record %d: %s", e.DocID, e.Message)
}

func (e *BuildError) Is(target error) bool {
	return target == ErrBuild
}

// NewBuildError creates a new BuildError
func NewBuildError(docID uint64, field, message string) *BuildError {
	return &BuildError{DocID: docID, Field: field, Message: message}
}

// PersistenceError represents an I/O failure while reading or writing index
// storage.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Is(target error) bool {
	return target == ErrPersistence
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// NewPersistenceError creates a new PersistenceError
func NewPersistenceError(op, path string, err error) *PersistenceError {
	return &PersistenceError{Op: op, Path: path, Err: err}
}

// SearchError represents a failure during query evaluation, e.g. a
// corrupted index segment. Callers receive it alongside an empty result so
// "no matches" and "search failed" stay distinguishable.
type SearchError struct {
	Message string
	Err     error
}

func (e *SearchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *SearchError) Is(target error) bool {
	return target == ErrSearch
}

func (e *SearchError) Unwrap() error {
	return e.Err
}

// NewSearchError creates a new SearchError
func NewSearchError(message string, err error) *SearchError {
	return &SearchError{Message: message, Err: err}
}
