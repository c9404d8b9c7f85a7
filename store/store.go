// Package store defines the document-store boundary consumed by kindcache.
//
// The contract is deliberately primitive: insert, single and batched delete,
// and filtered queries with page-wise iteration. Replace-on-set, TTL expiry
// and tag invalidation are all built by the cache backend from these calls
// alone, so a driver only has to be honest about them. Drivers MUST return
// entries byte-for-byte as inserted: no field may be rewritten, re-encoded
// or dropped between Insert and a later page that yields the entry back.
//
// The native key of an entry is the (kind, CacheID) pair. Mutations carry
// the kind explicitly; queries carry it in Query.Kind.
package store

import (
	"context"
	"errors"
)

var (
	// ErrAlreadyExists is returned by Insert when the native key is taken.
	ErrAlreadyExists = errors.New("store: entry already exists")

	// ErrCorruptEntry wraps EntryCodec failures on previously stored bytes.
	ErrCorruptEntry = errors.New("store: corrupt entry")
)

// Store is a minimal document store scoped to entity kinds.
// Implementations must be safe for concurrent use.
type Store interface {
	// Insert stores a new entry under its (kind, CacheID) key and fails
	// with ErrAlreadyExists when that key is already live.
	Insert(ctx context.Context, kind string, e Entry) error

	// Delete removes one entry by key (no-op when absent).
	Delete(ctx context.Context, kind, cacheID string) error

	// DeleteBatch removes many entries in a single round trip where the
	// backing store supports it.
	DeleteBatch(ctx context.Context, kind string, cacheIDs []string) error

	// Run starts q and returns a page-wise cursor over its results.
	Run(ctx context.Context, q Query) (Cursor, error)

	// Close releases resources.
	Close(ctx context.Context) error
}

// Upserter is an optional Store capability: atomic insert-or-replace by
// native key. Drivers that can replace in one mutation should implement it;
// the cache backend detects it with a type assertion and skips its
// remove-then-insert fallback, closing the window in between.
type Upserter interface {
	Upsert(ctx context.Context, kind string, e Entry) error
}

// Cursor iterates a result set page by page.
type Cursor interface {
	// Next returns the next page of results. An empty page means the
	// result set is exhausted; drivers whose backing store can emit
	// empty-but-not-final pages (cursor scans) must absorb those
	// internally. On keys-only queries the returned entries carry only
	// CacheID.
	Next(ctx context.Context) ([]Entry, error)
}

// sliceCursor serves a fully materialized result set in fixed-size pages.
// In-process drivers hand their filtered snapshot to NewSliceCursor instead
// of growing their own paging loop.
type sliceCursor struct {
	entries  []Entry
	pageSize int
	off      int
}

// NewSliceCursor returns a Cursor over entries with the given page size
// (values < 1 collapse to a single page).
func NewSliceCursor(entries []Entry, pageSize int) Cursor {
	if pageSize < 1 {
		pageSize = len(entries)
		if pageSize < 1 {
			pageSize = 1
		}
	}
	return &sliceCursor{entries: entries, pageSize: pageSize}
}

func (c *sliceCursor) Next(context.Context) ([]Entry, error) {
	if c.off >= len(c.entries) {
		return nil, nil
	}
	end := c.off + c.pageSize
	if end > len(c.entries) {
		end = len(c.entries)
	}
	page := c.entries[c.off:end]
	c.off = end
	return page, nil
}
