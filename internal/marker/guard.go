package marker

import (
	"sync"
	"time"
)

// Guard is the set of document keys with a synchronization in flight.
//
// A key is claimed with TryEnter before any edit starts and released by
// LeaveAfter once everything, including the forced save, has settled. The
// delayed release is what swallows the save notification caused by the
// engine's own write.
type Guard struct {
	mu       sync.Mutex
	inflight map[string]struct{}
	pending  sync.WaitGroup
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{inflight: make(map[string]struct{})}
}

// TryEnter claims key. It returns false if key is already in flight.
func (g *Guard) TryEnter(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.inflight[key]; busy {
		return false
	}
	g.inflight[key] = struct{}{}
	return true
}

// LeaveAfter releases key after delay. A non-positive delay releases now.
func (g *Guard) LeaveAfter(key string, delay time.Duration) {
	if delay <= 0 {
		g.leave(key)
		return
	}

	g.pending.Add(1)
	time.AfterFunc(delay, func() {
		defer g.pending.Done()
		g.leave(key)
	})
}

// InFlight reports whether key is currently claimed.
func (g *Guard) InFlight(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.inflight[key]
	return busy
}

// Len returns the number of claimed keys.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.inflight)
}

// Wait blocks until every scheduled release has run.
func (g *Guard) Wait() {
	g.pending.Wait()
}

func (g *Guard) leave(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inflight, key)
}
