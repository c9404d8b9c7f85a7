// Package redis implements the store contract on a plain Redis keyspace.
//
// Entries live as EntryCodec blobs under "<kind>:<cache_id>". Redis has no
// filtered queries, so Run walks the kind's keyspace with SCAN, fetches
// candidate pages with MGET and evaluates filters client-side. SCAN pages
// are approximate and may repeat keys; the cursor absorbs empty SCAN
// iterations so that an empty page from Next always means "done".
package redis

import (
	"context"
	"errors"

	goredis "github.com/redis/go-redis/v9"

	"github.com/unkn0wn-root/kindcache/store"
)

var ErrNilClient = errors.New("redis store: nil client")

// scanCount hints SCAN when the query carries no page size.
const scanCount = 100

type Redis struct {
	rdb         goredis.UniversalClient
	codec       store.EntryCodec
	closeClient bool
}

var (
	_ store.Store    = (*Redis)(nil)
	_ store.Upserter = (*Redis)(nil)
)

type Config struct {
	Client      goredis.UniversalClient
	Codec       store.EntryCodec // nil => store.Msgpack{}
	CloseClient bool             // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Redis, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	codec := cfg.Codec
	if codec == nil {
		codec = store.Msgpack{}
	}
	return &Redis{rdb: cfg.Client, codec: codec, closeClient: cfg.CloseClient}, nil
}

func nativeKey(kind, cacheID string) string {
	return kind + ":" + cacheID
}

// Insert claims the key with SET NX. Expiry is the cache's job, not the
// driver's: entries must stay queryable for the expiry sweep, so no native
// TTL is set.
func (p *Redis) Insert(ctx context.Context, kind string, e store.Entry) error {
	raw, err := p.codec.Marshal(e)
	if err != nil {
		return err
	}
	ok, err := p.rdb.SetNX(ctx, nativeKey(kind, e.CacheID), raw, 0).Result()
	if err != nil {
		return err
	}
	if !ok {
		return store.ErrAlreadyExists
	}
	return nil
}

// Upsert replaces in one SET, which lets the cache skip its
// remove-then-insert fallback.
func (p *Redis) Upsert(ctx context.Context, kind string, e store.Entry) error {
	raw, err := p.codec.Marshal(e)
	if err != nil {
		return err
	}
	return p.rdb.Set(ctx, nativeKey(kind, e.CacheID), raw, 0).Err()
}

func (p *Redis) Delete(ctx context.Context, kind, cacheID string) error {
	return p.rdb.Del(ctx, nativeKey(kind, cacheID)).Err()
}

func (p *Redis) DeleteBatch(ctx context.Context, kind string, cacheIDs []string) error {
	if len(cacheIDs) == 0 {
		return nil
	}
	keys := make([]string, len(cacheIDs))
	for i, id := range cacheIDs {
		keys[i] = nativeKey(kind, id)
	}
	return p.rdb.Del(ctx, keys...).Err()
}

func (p *Redis) Run(_ context.Context, q store.Query) (store.Cursor, error) {
	ps := q.PageSize
	if ps < 1 {
		ps = scanCount
	}
	return &scanCursor{
		p:        p,
		pattern:  nativeKey(q.Kind, "*"),
		filters:  q.Filters,
		keysOnly: q.KeysOnly,
		limit:    q.Limit,
		pageSize: ps,
	}, nil
}

// Close releases the underlying redis client only when this store owns it.
// Safe to call multiple times; repeated calls become no-ops.
func (p *Redis) Close(context.Context) error {
	if p.closeClient {
		if err := p.rdb.Close(); err != nil && !errors.Is(err, goredis.ErrClosed) {
			return err
		}
	}
	return nil
}

type scanCursor struct {
	p        *Redis
	pattern  string
	filters  []store.Filter
	keysOnly bool
	limit    int
	pageSize int

	cursor uint64
	done   bool
	seen   int
}

func (c *scanCursor) Next(ctx context.Context) ([]store.Entry, error) {
	for !c.done {
		keys, next, err := c.p.rdb.Scan(ctx, c.cursor, c.pattern, int64(c.pageSize)).Result()
		if err != nil {
			return nil, err
		}
		c.cursor = next
		if next == 0 {
			c.done = true
		}
		if len(keys) == 0 {
			continue
		}

		vals, err := c.p.rdb.MGet(ctx, keys...).Result()
		if err != nil {
			return nil, err
		}
		page := make([]store.Entry, 0, len(vals))
		for _, v := range vals {
			raw, ok := v.(string)
			if !ok {
				continue // deleted between SCAN and MGET
			}
			e, err := c.p.codec.Unmarshal([]byte(raw))
			if err != nil {
				return nil, err
			}
			if !store.Matches(e, c.filters) {
				continue
			}
			if c.keysOnly {
				e = store.Entry{CacheID: e.CacheID}
			}
			page = append(page, e)
			c.seen++
			if c.limit > 0 && c.seen >= c.limit {
				c.done = true
				break
			}
		}
		if len(page) > 0 {
			return page, nil
		}
	}
	return nil, nil
}
