package sweep

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/unkn0wn-root/kindcache"
)

// gcBackend counts CollectGarbage calls. Other Backend methods are never
// reached by the sweeper, so the embedded nil interface is fine.
type gcBackend struct {
	kindcache.Backend
	calls atomic.Int32
	err   error
}

func (b *gcBackend) CollectGarbage(context.Context) error {
	b.calls.Add(1)
	return b.err
}

func TestSweeperRunsOnInterval(t *testing.T) {
	ctx := context.Background()
	b := &gcBackend{}
	s := New(b, 20*time.Millisecond, 0, nil)
	t.Cleanup(func() { _ = s.Close(ctx) })

	time.Sleep(150 * time.Millisecond)
	if got := b.calls.Load(); got < 2 {
		t.Fatalf("expected >= 2 sweeps, got %d", got)
	}
}

func TestSweeperSurvivesFailedRuns(t *testing.T) {
	ctx := context.Background()
	b := &gcBackend{err: errors.New("store down")}
	s := New(b, 20*time.Millisecond, 0, nil)
	t.Cleanup(func() { _ = s.Close(ctx) })

	time.Sleep(150 * time.Millisecond)
	if got := b.calls.Load(); got < 2 {
		t.Fatalf("loop should keep ticking after errors, got %d sweeps", got)
	}
}

func TestSweeperCloseStopsLoop(t *testing.T) {
	ctx := context.Background()
	b := &gcBackend{}
	s := New(b, 10*time.Millisecond, 0, nil)

	time.Sleep(50 * time.Millisecond)
	if err := s.Close(ctx); err != nil {
		t.Fatal(err)
	}
	n := b.calls.Load()

	time.Sleep(60 * time.Millisecond)
	if got := b.calls.Load(); got != n {
		t.Fatalf("sweeps after Close: %d -> %d", n, got)
	}
}

func TestRunOnce(t *testing.T) {
	ctx := context.Background()
	b := &gcBackend{}
	s := New(b, 0, 0, nil) // no loop
	t.Cleanup(func() { _ = s.Close(ctx) })

	if err := s.RunOnce(ctx); err != nil {
		t.Fatal(err)
	}
	if got := b.calls.Load(); got != 1 {
		t.Fatalf("calls = %d, want 1", got)
	}

	b.err = errors.New("boom")
	if err := s.RunOnce(ctx); err == nil {
		t.Fatal("expected backend error to surface")
	}
}
