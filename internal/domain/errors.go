package domain

import (
	"errors"
	"fmt"
)

// ErrNotReady is returned when a query is issued before the pipeline
// has been built.
var ErrNotReady = errors.New("pipeline not built")

// ErrNoResults is returned when retrieval finds zero chunks for a query.
var ErrNoResults = errors.New("no matching chunks retrieved")

// SchemaError reports that the designated text column is absent from
// the input's header row.
type SchemaError struct {
	Column string
	Path   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("text column %q not found in header of %s", e.Column, e.Path)
}

// ModelLoadError reports that an embedding or summarization model
// failed to initialize or prepare.
type ModelLoadError struct {
	Model string
	Err   error
}

func (e *ModelLoadError) Error() string {
	return fmt.Sprintf("model %q failed to load: %v", e.Model, e.Err)
}

func (e *ModelLoadError) Unwrap() error { return e.Err }

// StorageError reports that the persisted vector store could not be
// opened, written, or read at the configured path.
type StorageError struct {
	Path string
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("vector store at %q: %v", e.Path, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
