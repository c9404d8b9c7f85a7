// Package memory provides an in-process Store for tests and development.
// It doubles as the reference for the store contract: inserts fail on live
// duplicates, queries evaluate filters over a snapshot, and pages come out
// exact-size in CacheID order, which makes page math in tests
// deterministic.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/unkn0wn-root/kindcache/store"
)

// defaultPageSize applies when a query does not set one.
const defaultPageSize = 100

type Store struct {
	mu    sync.RWMutex
	kinds map[string]map[string]store.Entry
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{kinds: make(map[string]map[string]store.Entry)}
}

func (s *Store) Insert(_ context.Context, kind string, e store.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.kinds[kind]
	if entries == nil {
		entries = make(map[string]store.Entry)
		s.kinds[kind] = entries
	}
	if _, ok := entries[e.CacheID]; ok {
		return store.ErrAlreadyExists
	}
	entries[e.CacheID] = cloneEntry(e)
	return nil
}

func (s *Store) Delete(_ context.Context, kind, cacheID string) error {
	s.mu.Lock()
	delete(s.kinds[kind], cacheID)
	s.mu.Unlock()
	return nil
}

func (s *Store) DeleteBatch(_ context.Context, kind string, cacheIDs []string) error {
	s.mu.Lock()
	for _, id := range cacheIDs {
		delete(s.kinds[kind], id)
	}
	s.mu.Unlock()
	return nil
}

func (s *Store) Run(_ context.Context, q store.Query) (store.Cursor, error) {
	s.mu.RLock()
	matched := make([]store.Entry, 0)
	for _, e := range s.kinds[q.Kind] {
		if store.Matches(e, q.Filters) {
			matched = append(matched, cloneEntry(e))
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool { return matched[i].CacheID < matched[j].CacheID })
	if q.Limit > 0 && len(matched) > q.Limit {
		matched = matched[:q.Limit]
	}
	if q.KeysOnly {
		for i := range matched {
			matched[i] = store.Entry{CacheID: matched[i].CacheID}
		}
	}

	ps := q.PageSize
	if ps < 1 {
		ps = defaultPageSize
	}
	return store.NewSliceCursor(matched, ps), nil
}

func (s *Store) Close(context.Context) error { return nil }

// Len reports the number of live entries of a kind. Test helper.
func (s *Store) Len(kind string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.kinds[kind])
}

// cloneEntry keeps callers from mutating stored state through shared
// slices.
func cloneEntry(e store.Entry) store.Entry {
	out := e
	if e.Tags != nil {
		out.Tags = append([]string(nil), e.Tags...)
	}
	if e.Content != nil {
		out.Content = append([]byte(nil), e.Content...)
	}
	return out
}
