package kindcache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/unkn0wn-root/kindcache/compress"
	"github.com/unkn0wn-root/kindcache/store"
)

// defaultPageSize bounds query pages and delete batches. 500 is the batch
// mutation ceiling of the document store this backend was built against, so
// one page always fits one batch call.
const defaultPageSize = 500

type backend struct {
	kind            string
	prefix          string
	store           store.Store
	codec           compress.Codec
	log             Logger
	hooks           Hooks
	enabled         bool
	defaultLifetime time.Duration
	pageSize        int
	now             func() time.Time
}

func newBackend(opts Options) (*backend, error) {
	if opts.Kind == "" {
		return nil, fmt.Errorf("%w: kind is required", ErrConfig)
	}
	if opts.Prefix == "" {
		return nil, fmt.Errorf("%w: prefix is required", ErrConfig)
	}
	if opts.Store == nil {
		return nil, fmt.Errorf("%w: store is required", ErrConfig)
	}
	if opts.DefaultLifetime < 0 {
		return nil, fmt.Errorf("%w: default lifetime must not be negative", ErrConfig)
	}
	if opts.PageSize < 0 {
		return nil, fmt.Errorf("%w: page size must not be negative", ErrConfig)
	}
	codec, err := compress.ForLevel(opts.CompressionLevel)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	b := &backend{
		kind:            opts.Kind,
		prefix:          opts.Prefix,
		store:           opts.Store,
		codec:           codec,
		enabled:         !opts.Disabled,
		defaultLifetime: opts.DefaultLifetime,
	}

	// defaults
	b.log = coalesce[Logger](opts.Logger, NopLogger{})
	b.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	b.pageSize = coalesce[int](opts.PageSize, defaultPageSize)
	if opts.Now != nil {
		b.now = opts.Now
	} else {
		b.now = time.Now
	}

	return b, nil
}

func (b *backend) Enabled() bool { return b.enabled }

func (b *backend) Close(ctx context.Context) error {
	if b.store != nil {
		return b.store.Close(ctx)
	}
	return nil
}

func (b *backend) Set(ctx context.Context, id string, data []byte, tags []string) error {
	return b.SetWithLifetime(ctx, id, data, tags, b.defaultLifetime)
}

func (b *backend) SetWithLifetime(ctx context.Context, id string, data []byte, tags []string, lifetime time.Duration) error {
	if !b.enabled {
		return nil
	}
	if id == "" {
		return ErrEmptyIdentifier
	}
	if lifetime < 0 {
		return ErrNegativeLifetime
	}

	key := b.key(id)
	content, err := b.codec.Compress(data)
	if err != nil {
		return &WriteError{Op: "set", Key: key, Err: err}
	}

	now := b.now()
	e := store.Entry{
		CacheID: key,
		Created: now,
		Tags:    tags,
		Content: content,
	}
	if lifetime == 0 {
		e.Unlimited = true
	} else {
		e.Expires = now.Add(lifetime)
	}

	if up, ok := b.store.(store.Upserter); ok {
		// atomic replace; no remove/insert window
		if err := up.Upsert(ctx, b.kind, e); err != nil {
			return &WriteError{Op: "set", Key: key, Err: err}
		}
		b.log.Debug("entry stored", Fields{"key": key, "tags": len(tags), "unlimited": e.Unlimited})
		return nil
	}

	// Two-step replace: clear every previous entry for the id, then insert
	// the fresh one. Not atomic - a concurrent reader can miss between the
	// steps, and a concurrent writer can take the key first.
	if _, err := b.Remove(ctx, id); err != nil {
		return err
	}
	if err := b.store.Insert(ctx, b.kind, e); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			b.hooks.SetRaced(key)
		}
		return &WriteError{Op: "set", Key: key, Err: err}
	}
	b.log.Debug("entry stored", Fields{"key": key, "tags": len(tags), "unlimited": e.Unlimited})
	return nil
}

func (b *backend) Get(ctx context.Context, id string) ([]byte, bool, error) {
	if !b.enabled {
		return nil, false, nil
	}
	if id == "" {
		return nil, false, ErrEmptyIdentifier
	}
	key := b.key(id)
	e, ok, err := b.lookupOne(ctx, "get", key, false)
	if err != nil || !ok {
		return nil, false, err
	}
	data, err := b.codec.Decompress(e.Content)
	if err != nil {
		b.log.Warn("corrupt payload", Fields{"key": key, "err": err})
		b.hooks.EntryCorrupt(key)
		return nil, false, &DecodeError{Key: key, Err: err}
	}
	return data, true, nil
}

func (b *backend) Has(ctx context.Context, id string) (bool, error) {
	if !b.enabled {
		return false, nil
	}
	if id == "" {
		return false, ErrEmptyIdentifier
	}
	_, ok, err := b.lookupOne(ctx, "has", b.key(id), true)
	return ok, err
}

func (b *backend) Remove(ctx context.Context, id string) (bool, error) {
	if !b.enabled {
		return false, nil
	}
	if id == "" {
		return false, ErrEmptyIdentifier
	}
	key := b.key(id)

	// Every match is deleted, not only the first: the two-step Set can
	// leave duplicates behind and they all have to go.
	q := store.Query{
		Kind:     b.kind,
		Filters:  []store.Filter{{Field: store.FieldCacheID, Op: store.OpEq, Value: key}},
		KeysOnly: true,
		PageSize: b.pageSize,
	}
	cur, err := b.store.Run(ctx, q)
	if err != nil {
		return false, &ReadError{Op: "remove", Err: err}
	}

	removed := 0
	for {
		page, err := cur.Next(ctx)
		if err != nil {
			return removed > 0, &ReadError{Op: "remove", Err: err}
		}
		if len(page) == 0 {
			break
		}
		for _, e := range page {
			if err := b.store.Delete(ctx, b.kind, e.CacheID); err != nil {
				return removed > 0, &WriteError{Op: "remove", Key: e.CacheID, Err: err}
			}
			removed++
		}
	}
	if removed > 0 {
		b.log.Debug("entry removed", Fields{"key": key, "matches": removed})
	}
	return removed > 0, nil
}

// lookupOne fetches at most one entry by fully-qualified key.
func (b *backend) lookupOne(ctx context.Context, op, key string, keysOnly bool) (store.Entry, bool, error) {
	q := store.Query{
		Kind:     b.kind,
		Filters:  []store.Filter{{Field: store.FieldCacheID, Op: store.OpEq, Value: key}},
		Limit:    1,
		KeysOnly: keysOnly,
		PageSize: 1,
	}
	cur, err := b.store.Run(ctx, q)
	if err != nil {
		return store.Entry{}, false, &ReadError{Op: op, Err: err}
	}
	page, err := cur.Next(ctx)
	if err != nil {
		return store.Entry{}, false, &ReadError{Op: op, Err: err}
	}
	if len(page) == 0 {
		return store.Entry{}, false, nil
	}
	return page[0], true, nil
}

func (b *backend) key(id string) string {
	// isolate by namespace
	return entryKey(b.prefix, id)
}
