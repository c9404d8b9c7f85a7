// Package bigcache provides an ephemeral in-process Store on top of
// allegro/bigcache, for single-process setups where a remote document store
// is overkill. Entries survive nothing and may be dropped early under
// memory pressure; for a cache backend both degrade to misses. Queries
// snapshot the keyspace through bigcache's iterator and filter client-side.
package bigcache

import (
	"context"
	"sort"
	"strings"
	"time"

	bc "github.com/allegro/bigcache/v3"

	"github.com/unkn0wn-root/kindcache/store"
)

type Store struct {
	c     *bc.BigCache
	codec store.EntryCodec
}

var (
	_ store.Store    = (*Store)(nil)
	_ store.Upserter = (*Store)(nil)
)

type Config struct {
	// LifeWindow is bigcache's global retention. The cache's expiry sweep
	// handles per-entry lifetimes; keep this comfortably above the longest
	// lifetime in use. 0 => 24h.
	LifeWindow         time.Duration
	CleanWindow        time.Duration
	MaxEntriesInWindow int
	MaxEntrySize       int
	HardMaxCacheSizeMB int              // ~ memory limit; 0 = unlimited
	Codec              store.EntryCodec // nil => store.Msgpack{}
}

func New(cfg Config) (*Store, error) {
	life := cfg.LifeWindow
	if life <= 0 {
		life = 24 * time.Hour
	}
	conf := bc.DefaultConfig(life)
	if cfg.CleanWindow > 0 {
		conf.CleanWindow = cfg.CleanWindow
	}
	if cfg.MaxEntriesInWindow > 0 {
		conf.MaxEntriesInWindow = cfg.MaxEntriesInWindow
	}
	if cfg.MaxEntrySize > 0 {
		conf.MaxEntrySize = cfg.MaxEntrySize
	}
	if cfg.HardMaxCacheSizeMB > 0 {
		conf.HardMaxCacheSize = cfg.HardMaxCacheSizeMB
	}
	c, err := bc.NewBigCache(conf)
	if err != nil {
		return nil, err
	}
	codec := cfg.Codec
	if codec == nil {
		codec = store.Msgpack{}
	}
	return &Store{c: c, codec: codec}, nil
}

func nativeKey(kind, cacheID string) string {
	return kind + ":" + cacheID
}

func (p *Store) Insert(_ context.Context, kind string, e store.Entry) error {
	k := nativeKey(kind, e.CacheID)
	// check-then-set; not atomic, but a lost insert race just surfaces as
	// ErrAlreadyExists one call later
	if _, err := p.c.Get(k); err == nil {
		return store.ErrAlreadyExists
	}
	raw, err := p.codec.Marshal(e)
	if err != nil {
		return err
	}
	return p.c.Set(k, raw)
}

func (p *Store) Upsert(_ context.Context, kind string, e store.Entry) error {
	raw, err := p.codec.Marshal(e)
	if err != nil {
		return err
	}
	return p.c.Set(nativeKey(kind, e.CacheID), raw)
}

func (p *Store) Delete(_ context.Context, kind, cacheID string) error {
	err := p.c.Delete(nativeKey(kind, cacheID))
	if err == bc.ErrEntryNotFound {
		return nil
	}
	return err
}

// DeleteBatch loops single deletes. In-process, each one is a shard map
// op; the one-call-per-page economy only matters for remote stores.
func (p *Store) DeleteBatch(ctx context.Context, kind string, cacheIDs []string) error {
	for _, id := range cacheIDs {
		if err := p.Delete(ctx, kind, id); err != nil {
			return err
		}
	}
	return nil
}

func (p *Store) Run(_ context.Context, q store.Query) (store.Cursor, error) {
	prefix := nativeKey(q.Kind, "")
	matched := make([]store.Entry, 0)

	it := p.c.Iterator()
	for it.SetNext() {
		info, err := it.Value()
		if err != nil {
			// entry evicted mid-iteration; a cache read would miss too
			continue
		}
		if !strings.HasPrefix(info.Key(), prefix) {
			continue
		}
		e, err := p.codec.Unmarshal(info.Value())
		if err != nil {
			return nil, err
		}
		if !store.Matches(e, q.Filters) {
			continue
		}
		if q.KeysOnly {
			e = store.Entry{CacheID: e.CacheID}
		}
		matched = append(matched, e)
	}

	sort.Slice(matched, func(i, j int) bool { return matched[i].CacheID < matched[j].CacheID })
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	ps := q.PageSize
	if ps < 1 {
		ps = 100
	}
	return store.NewSliceCursor(matched, ps), nil
}

func (p *Store) Close(context.Context) error {
	return p.c.Close()
}
