package kindcache

import (
	"context"
	"time"

	"github.com/unkn0wn-root/kindcache/store"
)

// Backend is the framework-facing cache contract, served entirely through
// the primitive store operations: key lookup, filtered paginated queries,
// and single or batched deletes. A miss is a normal outcome, never an
// error.
type Backend interface {
	Enabled() bool
	Close(context.Context) error

	// Entry ops
	Set(ctx context.Context, id string, data []byte, tags []string) error
	SetWithLifetime(ctx context.Context, id string, data []byte, tags []string, lifetime time.Duration) error
	Get(ctx context.Context, id string) (data []byte, ok bool, err error)
	Has(ctx context.Context, id string) (bool, error)
	Remove(ctx context.Context, id string) (bool, error)

	// Tag ops
	//
	// FlushByTag returns the number of result PAGES processed, not the
	// number of entries deleted. With more than one page the value
	// under-counts entries; treat a positive return as "something was
	// removed" and read exact counts from Hooks.EntriesDeleted. Kept
	// as-is for compatibility with the backend contract this implements.
	FlushByTag(ctx context.Context, tag string) (int, error)
	IdentifiersByTag(ctx context.Context, tag string) ([]string, error)

	// Maintenance
	CollectGarbage(ctx context.Context) error
	Flush(ctx context.Context) error
}

// Options tune the backend.
// Only Kind, Prefix and Store are required; others have sensible defaults.
type Options struct {
	// Required
	Kind string // entity kind holding the entries, shared by all namespaces
	// Prefix isolates backends sharing a kind, e.g. "pages", "rootline".
	// One backend's prefix must not be another's plus a ":" segment:
	// "pages" and "pages:v2" would share a keyspace, so bulk operations
	// on the first would also hit the second's entries.
	Prefix string
	Store  store.Store // document-store driver (see store/ subpackages)

	Logger           Logger        // if nil, NopLogger is used
	Hooks            Hooks         // if nil, NopHooks is used
	CompressionLevel int           // 0 => off; 1..9 => zlib level
	DefaultLifetime  time.Duration // lifetime for Set; 0 => entries never expire
	// PageSize bounds query pages and delete batches; 0 => 500. Stores cap
	// batch mutations (a Cloud Datastore commit takes at most 500), so the
	// datastore driver splits oversized delete batches rather than fail.
	PageSize int
	Now      func() time.Time // clock; nil => time.Now
	Disabled bool             // default false (enabled)
}

// New validates opts and returns a ready Backend. Validation fails fast
// with an ErrConfig-wrapped error before any store call is made.
func New(opts Options) (Backend, error) {
	return newBackend(opts)
}
