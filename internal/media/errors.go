package media

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRecord is returned when a record fails validation on append.
	ErrInvalidRecord = errors.New("invalid media record")
	// ErrDuplicateID is returned when a record id is already present in the store.
	ErrDuplicateID = errors.New("media record id already exists")
)

// CorruptStoreError reports a persisted document that is not a valid sequence of records.
type CorruptStoreError struct {
	Path string
	Err  error
}

func (e *CorruptStoreError) Error() string {
	return fmt.Sprintf("corrupt media store %s: %v", e.Path, e.Err)
}

func (e *CorruptStoreError) Unwrap() error {
	return e.Err
}

// PersistenceError reports a failed write of the backing document.
type PersistenceError struct {
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist media store %s: %v", e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
