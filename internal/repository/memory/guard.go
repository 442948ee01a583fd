package memory

import (
	"context"
	"sync"

	"clinic-scheduling-server/internal/scheduling"
)

type keyLock struct {
	mu   sync.Mutex
	refs int
}

// Guard serializes bookings per key with one mutex per key. A key's mutex
// lives only while some caller holds or waits on it.
type Guard struct {
	mu    sync.Mutex
	locks map[scheduling.BookingKey]*keyLock
}

func NewGuard() *Guard {
	return &Guard{locks: make(map[scheduling.BookingKey]*keyLock)}
}

func (g *Guard) Serialize(ctx context.Context, key scheduling.BookingKey, fn func(ctx context.Context) error) error {
	l := g.acquire(key)
	defer g.release(key, l)

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(ctx)
}

func (g *Guard) acquire(key scheduling.BookingKey) *keyLock {
	g.mu.Lock()
	defer g.mu.Unlock()
	l, ok := g.locks[key]
	if !ok {
		l = &keyLock{}
		g.locks[key] = l
	}
	l.refs++
	return l
}

func (g *Guard) release(key scheduling.BookingKey, l *keyLock) {
	g.mu.Lock()
	defer g.mu.Unlock()
	l.refs--
	if l.refs == 0 {
		delete(g.locks, key)
	}
}
