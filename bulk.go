package kindcache

import (
	"context"

	"github.com/unkn0wn-root/kindcache/store"
)

// Operation labels used in errors, hooks and logs.
const (
	opFlush      = "flush"
	opFlushByTag = "flush_by_tag"
	opCollect    = "collect_garbage"
)

func (b *backend) FlushByTag(ctx context.Context, tag string) (int, error) {
	if !b.enabled {
		return 0, nil
	}
	pages, entries, err := b.deletePages(ctx, opFlushByTag, b.tagQuery(tag))
	if err != nil {
		return pages, err
	}
	b.log.Debug("tag flushed", Fields{"tag": tag, "pages": pages, "entries": entries})
	return pages, nil
}

func (b *backend) IdentifiersByTag(ctx context.Context, tag string) ([]string, error) {
	if !b.enabled {
		return nil, nil
	}
	cur, err := b.store.Run(ctx, b.tagQuery(tag))
	if err != nil {
		return nil, &ReadError{Op: "identifiers_by_tag", Err: err}
	}

	var ids []string
	for {
		page, err := cur.Next(ctx)
		if err != nil {
			return nil, &ReadError{Op: "identifiers_by_tag", Err: err}
		}
		if len(page) == 0 {
			return ids, nil
		}
		for _, e := range page {
			// entries of other namespaces sharing the kind are not ours
			if id, ok := logicalID(b.prefix, e.CacheID); ok {
				ids = append(ids, id)
			}
		}
	}
}

func (b *backend) CollectGarbage(ctx context.Context) error {
	if !b.enabled {
		return nil
	}

	// Unlimited entries carry no meaningful Expires, so the equality
	// filter keeps them out of the inequality's reach.
	q := store.Query{
		Kind: b.kind,
		Filters: []store.Filter{
			{Field: store.FieldUnlimited, Op: store.OpEq, Value: false},
			{Field: store.FieldExpires, Op: store.OpLe, Value: b.now()},
		},
		KeysOnly: true,
		PageSize: b.pageSize,
	}
	pages, entries, err := b.deletePages(ctx, opCollect, q)
	if err != nil {
		return err
	}
	if entries > 0 {
		b.log.Debug("garbage collected", Fields{"pages": pages, "entries": entries})
	}
	return nil
}

func (b *backend) Flush(ctx context.Context) error {
	if !b.enabled {
		return nil
	}

	lo, hi := keyRange(b.prefix)
	filters := []store.Filter{{Field: store.FieldCacheID, Op: store.OpGe, Value: lo}}
	if hi != "" {
		filters = append(filters, store.Filter{Field: store.FieldCacheID, Op: store.OpLt, Value: hi})
	}
	q := store.Query{
		Kind:     b.kind,
		Filters:  filters,
		KeysOnly: true,
		PageSize: b.pageSize,
	}
	pages, entries, err := b.deletePages(ctx, opFlush, q)
	if err != nil {
		return err
	}
	b.log.Debug("namespace flushed", Fields{"prefix": b.prefix, "pages": pages, "entries": entries})
	return nil
}

func (b *backend) tagQuery(tag string) store.Query {
	return store.Query{
		Kind:     b.kind,
		Filters:  []store.Filter{{Field: store.FieldTags, Op: store.OpEq, Value: tag}},
		KeysOnly: true,
		PageSize: b.pageSize,
	}
}

// deletePages walks q's result pages and issues one batch delete per page,
// so memory stays bounded by a single page of keys and the store sees one
// mutation call per page instead of one per entry. An empty page ends the
// walk. Keys outside this backend's namespace are skipped, which keeps tag
// and expiry sweeps from crossing namespaces that share the entity kind; a
// page that only held foreign keys still counts as processed.
func (b *backend) deletePages(ctx context.Context, op string, q store.Query) (pages, entries int, err error) {
	cur, err := b.store.Run(ctx, q)
	if err != nil {
		return 0, 0, &ReadError{Op: op, Err: err}
	}
	for {
		page, err := cur.Next(ctx)
		if err != nil {
			return pages, entries, &BulkDeleteError{Op: op, Pages: pages, Entries: entries, Err: err}
		}
		if len(page) == 0 {
			break
		}

		keys := make([]string, 0, len(page))
		for _, e := range page {
			if _, ok := logicalID(b.prefix, e.CacheID); ok {
				keys = append(keys, e.CacheID)
			}
		}
		if len(keys) > 0 {
			if err := b.store.DeleteBatch(ctx, b.kind, keys); err != nil {
				return pages, entries, &BulkDeleteError{Op: op, Pages: pages, Entries: entries, Err: err}
			}
			entries += len(keys)
		}
		pages++
	}
	if entries > 0 {
		b.hooks.EntriesDeleted(op, pages, entries)
	}
	return pages, entries, nil
}
