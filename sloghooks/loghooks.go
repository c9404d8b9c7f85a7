package sloghooks

import (
	"crypto/sha256"
	"encoding/hex"
	"log/slog"
	"sync/atomic"

	"github.com/unkn0wn-root/kindcache"
)

type Options struct {
	// Sampling for race events on contended keys; 0/1 = log all.
	SetRacedEvery uint64
	// Optional key redactor. Defaults to SHA-256 prefix so raw cache
	// identifiers never reach the logs.
	Redact func(string) string
}

type Hooks struct {
	l    *slog.Logger
	opts Options

	setRacedCtr atomic.Uint64
}

var _ kindcache.Hooks = (*Hooks)(nil)

func New(l *slog.Logger, opts Options) *Hooks {
	return &Hooks{l: l, opts: opts}
}

func (h *Hooks) redact(k string) string {
	if h.opts.Redact != nil {
		return h.opts.Redact(k)
	}
	sum := sha256.Sum256([]byte(k))
	return hex.EncodeToString(sum[:8])
}

func sample(n uint64, ctr *atomic.Uint64) bool {
	if n == 0 || n == 1 {
		return true
	}
	return ctr.Add(1)%n == 0
}

func (h *Hooks) EntriesDeleted(op string, pages, entries int) {
	if h.l == nil {
		return
	}
	h.l.Info("kindcache.entries_deleted",
		"op", op,
		"pages", pages,
		"entries", entries)
}

func (h *Hooks) SetRaced(storageKey string) {
	if h.l == nil || !sample(h.opts.SetRacedEvery, &h.setRacedCtr) {
		return
	}
	h.l.Debug("kindcache.set_raced",
		"key", h.redact(storageKey))
}

func (h *Hooks) EntryCorrupt(storageKey string) {
	if h.l == nil {
		return
	}
	h.l.Warn("kindcache.entry_corrupt",
		"key", h.redact(storageKey))
}
