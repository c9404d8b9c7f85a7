// Package asynchook decouples hook sinks from the cache's call path.
// Backend hooks run inline and must stay cheap; wrap a slow sink (remote
// metrics, chatty loggers) in an async dispatcher and events are handed to
// worker goroutines through a bounded queue instead. When the queue is
// full, events are dropped - hooks are telemetry, not state.
//
// usage:
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	backend, _ := kindcache.New(kindcache.Options{
//	    Kind:   "cache_entry",
//	    Prefix: "pages",
//	    Store:  st,
//	    Hooks:  hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/kindcache"
)

type Hooks struct {
	inner kindcache.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ kindcache.Hooks = (*Hooks)(nil)

func New(inner kindcache.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) EntriesDeleted(op string, pages, entries int) {
	h.try(func() { h.inner.EntriesDeleted(op, pages, entries) })
}
func (h *Hooks) SetRaced(k string)     { h.try(func() { h.inner.SetRaced(k) }) }
func (h *Hooks) EntryCorrupt(k string) { h.try(func() { h.inner.EntryCorrupt(k) }) }
