package store

import (
	"errors"
	"fmt"

	"github.com/Makepad-fr/tasktracker/internal/store/jsonstore"
)

var (
	// ErrNotFound means no task carries the requested id.
	ErrNotFound = errors.New("task not found")
	// ErrInvalidArgument covers bad ids, blank titles and unknown statuses.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrIDsExhausted means the file already holds the largest allowed id.
	ErrIDsExhausted = errors.New("no task ids left")
	// ErrMalformed means the backing file exists but is not a valid task document.
	ErrMalformed = jsonstore.ErrMalformed
)

// PersistenceError reports a failed write of the backing file.
//
// The in-memory change that triggered the write has already been applied
// when this is returned, so memory and disk disagree until the next
// successful persist. That is harmless for a one-shot CLI process but
// matters to anything that keeps a Store open.
type PersistenceError struct {
	Op   string
	Path string
	Err  error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s: persist %s: %v", e.Op, e.Path, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }
