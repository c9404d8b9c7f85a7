// Package sweep schedules a backend's expiry sweep.
//
// The store never expires entries on its own; expired rows stay until
// Backend.CollectGarbage removes them. A Sweeper calls CollectGarbage on a
// fixed interval so hosts without a task scheduler don't accumulate dead
// entries. Run one Sweeper per backend: each sweep only touches its own
// namespace.
//
// usage:
//
//	sw := sweep.New(backend, time.Hour, time.Minute, nil)
//	defer sw.Close(context.Background())
package sweep

import (
	"context"
	"sync"
	"time"

	"github.com/unkn0wn-root/kindcache"
)

type Sweeper struct {
	b       kindcache.Backend
	log     kindcache.Logger
	timeout time.Duration

	ticker *time.Ticker
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// New returns a Sweeper calling b.CollectGarbage every interval.
// interval <= 0 starts no loop; use RunOnce to sweep by hand.
// timeout bounds each scheduled run, <= 0 means no deadline.
// A failed run is logged and retried on the next tick.
func New(b kindcache.Backend, interval, timeout time.Duration, log kindcache.Logger) *Sweeper {
	if log == nil {
		log = kindcache.NopLogger{}
	}
	s := &Sweeper{b: b, log: log, timeout: timeout}
	if interval > 0 {
		s.ticker = time.NewTicker(interval)
		s.stopCh = make(chan struct{})
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			for {
				select {
				case <-s.ticker.C:
					s.sweep()
				case <-s.stopCh:
					return
				}
			}
		}()
	}
	return s
}

func (s *Sweeper) sweep() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if err := s.b.CollectGarbage(ctx); err != nil {
		s.log.Warn("scheduled sweep failed", kindcache.Fields{"err": err})
	}
}

// RunOnce triggers a single sweep outside the schedule.
func (s *Sweeper) RunOnce(ctx context.Context) error {
	return s.b.CollectGarbage(ctx)
}

func (s *Sweeper) Close(_ context.Context) error {
	if s.stopCh != nil {
		close(s.stopCh)
		if s.ticker != nil {
			s.ticker.Stop() // stop ticker before waiting
		}
		s.wg.Wait()
	}
	return nil
}
