package kindcache

import (
	"errors"
	"fmt"
)

var (
	// ErrConfig marks invalid Options. New fails with it before any store
	// call is made.
	ErrConfig = errors.New("kindcache: invalid configuration")

	// ErrEmptyIdentifier is returned when the logical identifier is empty.
	ErrEmptyIdentifier = errors.New("kindcache: empty cache identifier")

	// ErrNegativeLifetime is returned by SetWithLifetime for lifetimes
	// below zero. Zero itself is valid and means "never expires".
	ErrNegativeLifetime = errors.New("kindcache: negative lifetime")
)

// WriteError reports a store mutation the backend could not complete.
type WriteError struct {
	Op  string // "set", "remove"
	Key string // fully-qualified cache key
	Err error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("kindcache: %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// ReadError reports a failed query or page fetch.
type ReadError struct {
	Op  string
	Err error
}

func (e *ReadError) Error() string {
	return fmt.Sprintf("kindcache: %s: query failed: %v", e.Op, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// DecodeError reports a stored payload the configured codec could not
// decompress. Corrupt entries surface to the caller instead of reading as
// misses, so mixed-level deployments are caught loudly.
type DecodeError struct {
	Key string
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("kindcache: corrupt payload for %q: %v", e.Key, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// BulkDeleteError reports a paginated bulk delete that stopped part-way.
// Pages and Entries count the work that had already committed, so callers
// can tell partial progress from none. Deleted pages stay deleted.
type BulkDeleteError struct {
	Op      string // "flush", "flush_by_tag", "collect_garbage"
	Pages   int
	Entries int
	Err     error
}

func (e *BulkDeleteError) Error() string {
	return fmt.Sprintf("kindcache: %s stopped after %d pages (%d entries deleted): %v",
		e.Op, e.Pages, e.Entries, e.Err)
}

func (e *BulkDeleteError) Unwrap() error { return e.Err }
