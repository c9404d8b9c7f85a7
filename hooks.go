package kindcache

// Hooks are lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The backend calls them inline.
type Hooks interface {
	// One paginated bulk delete finished.
	// op ∈ {"flush", "flush_by_tag", "collect_garbage"}.
	// entries is the exact number of keys deleted. FlushByTag's return
	// value counts pages, so this is where real entry counts live.
	EntriesDeleted(op string, pages, entries int)

	// A Set lost the remove-then-insert race: the insert hit a key a
	// concurrent writer re-created first. The loser's error follows via
	// the normal return path.
	SetRaced(storageKey string)

	// A stored payload failed to decompress on read. Fired just before
	// the *DecodeError reaches the caller.
	EntryCorrupt(storageKey string)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) EntriesDeleted(string, int, int) {}
func (NopHooks) SetRaced(string)                 {}
func (NopHooks) EntryCorrupt(string)             {}
