// Package datastore implements the store contract on Google Cloud
// Datastore. The mapping is one-to-one: entity kinds, property filters,
// keys-only queries, cursor pagination and batched mutations are all
// native. Entries become entities keyed by name (the CacheID) with the
// CacheID mirrored into an indexed property for equality filters.
//
// The expiry sweep combines an equality and an inequality filter, which
// Datastore serves from a composite index:
//
//	indexes:
//	  - kind: <your kind>
//	    properties:
//	      - name: unlimited
//	      - name: expires
package datastore

import (
	"context"
	"errors"

	gcds "cloud.google.com/go/datastore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/unkn0wn-root/kindcache/store"
)

var ErrNilClient = errors.New("datastore store: nil client")

// maxMutations is the Datastore ceiling on mutations per commit; larger
// delete batches are split into runs of this size.
const maxMutations = 500

// defaultPageSize applies when a query does not set one. Matches
// maxMutations so a default page is deletable in one DeleteMulti.
const defaultPageSize = maxMutations

type Store struct {
	client      *gcds.Client
	closeClient bool
}

var (
	_ store.Store    = (*Store)(nil)
	_ store.Upserter = (*Store)(nil)
)

type Config struct {
	Client      *gcds.Client
	CloseClient bool // set true only if this store exclusively owns the client
}

func New(cfg Config) (*Store, error) {
	if cfg.Client == nil {
		return nil, ErrNilClient
	}
	return &Store{client: cfg.Client, closeClient: cfg.CloseClient}, nil
}

func nameKey(kind, cacheID string) *gcds.Key {
	return gcds.NameKey(kind, cacheID, nil)
}

func (p *Store) Insert(ctx context.Context, kind string, e store.Entry) error {
	_, err := p.client.Mutate(ctx, gcds.NewInsert(nameKey(kind, e.CacheID), &e))
	if status.Code(err) == codes.AlreadyExists {
		return store.ErrAlreadyExists
	}
	return err
}

// Upsert is a native Put; the cache uses it instead of remove-then-insert.
func (p *Store) Upsert(ctx context.Context, kind string, e store.Entry) error {
	_, err := p.client.Put(ctx, nameKey(kind, e.CacheID), &e)
	return err
}

func (p *Store) Delete(ctx context.Context, kind, cacheID string) error {
	return p.client.Delete(ctx, nameKey(kind, cacheID))
}

func (p *Store) DeleteBatch(ctx context.Context, kind string, cacheIDs []string) error {
	if len(cacheIDs) == 0 {
		return nil
	}
	keys := make([]*gcds.Key, len(cacheIDs))
	for i, id := range cacheIDs {
		keys[i] = nameKey(kind, id)
	}
	for _, batch := range mutationBatches(keys, maxMutations) {
		if err := p.client.DeleteMulti(ctx, batch); err != nil {
			return err
		}
	}
	return nil
}

// mutationBatches splits keys into runs of at most n, order preserved.
func mutationBatches(keys []*gcds.Key, n int) [][]*gcds.Key {
	if n < 1 || len(keys) <= n {
		return [][]*gcds.Key{keys}
	}
	out := make([][]*gcds.Key, 0, (len(keys)+n-1)/n)
	for len(keys) > n {
		out = append(out, keys[:n])
		keys = keys[n:]
	}
	return append(out, keys)
}

func (p *Store) Run(_ context.Context, q store.Query) (store.Cursor, error) {
	dq := gcds.NewQuery(q.Kind)
	for _, f := range q.Filters {
		dq = dq.FilterField(f.Field, string(f.Op), f.Value)
	}
	if q.KeysOnly {
		dq = dq.KeysOnly()
	}
	ps := q.PageSize
	if ps < 1 {
		ps = defaultPageSize
	}
	return &pageCursor{
		client:    p.client,
		query:     dq,
		keysOnly:  q.KeysOnly,
		pageSize:  ps,
		remaining: q.Limit,
	}, nil
}

func (p *Store) Close(context.Context) error {
	if p.closeClient {
		return p.client.Close()
	}
	return nil
}

// pageCursor drives the native iterator one bounded page at a time and
// carries the Datastore cursor between pages.
type pageCursor struct {
	client    *gcds.Client
	query     *gcds.Query
	keysOnly  bool
	pageSize  int
	remaining int // entries left under Query.Limit; 0 when unbounded

	start   gcds.Cursor
	started bool
	done    bool
}

func (c *pageCursor) Next(ctx context.Context) ([]store.Entry, error) {
	if c.done {
		return nil, nil
	}

	limit := c.pageSize
	if c.remaining > 0 && c.remaining < limit {
		limit = c.remaining
	}
	dq := c.query.Limit(limit)
	if c.started {
		dq = dq.Start(c.start)
	}

	it := c.client.Run(ctx, dq)
	page := make([]store.Entry, 0, limit)
	for {
		var e store.Entry
		var key *gcds.Key
		var err error
		if c.keysOnly {
			key, err = it.Next(nil)
		} else {
			key, err = it.Next(&e)
		}
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		if c.keysOnly {
			e = store.Entry{CacheID: key.Name}
		}
		page = append(page, e)
	}

	if len(page) < limit {
		c.done = true
	} else {
		cur, err := it.Cursor()
		if err != nil {
			return nil, err
		}
		c.start = cur
		c.started = true
	}
	if c.remaining > 0 {
		c.remaining -= len(page)
		if c.remaining <= 0 {
			c.done = true
		}
	}
	return page, nil
}
