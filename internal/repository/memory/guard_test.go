package memory

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"clinic-scheduling-server/internal/scheduling"
)

func TestGuard_SerializesSameKey(t *testing.T) {
	g := NewGuard()
	key := scheduling.BookingKey{ClinicID: "c1", ProfessionalID: "p1", Day: "2030-03-04"}

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = g.Serialize(context.Background(), key, func(context.Context) error {
				n := atomic.AddInt32(&inside, 1)
				for {
					m := atomic.LoadInt32(&maxInside)
					if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
						break
					}
				}
				time.Sleep(time.Millisecond)
				atomic.AddInt32(&inside, -1)
				return nil
			})
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("expected at most one holder per key, saw %d", maxInside)
	}
}

func TestGuard_DifferentKeysRunConcurrently(t *testing.T) {
	g := NewGuard()
	a := scheduling.BookingKey{ClinicID: "c1", ProfessionalID: "p1", Day: "2030-03-04"}
	b := scheduling.BookingKey{ClinicID: "c1", ProfessionalID: "p2", Day: "2030-03-04"}

	entered := make(chan struct{})
	release := make(chan struct{})
	done := make(chan error, 1)
	go func() {
		done <- g.Serialize(context.Background(), a, func(context.Context) error {
			close(entered)
			<-release
			return nil
		})
	}()
	<-entered

	if err := g.Serialize(context.Background(), b, func(context.Context) error { return nil }); err != nil {
		t.Fatalf("Serialize(b): %v", err)
	}
	close(release)
	if err := <-done; err != nil {
		t.Fatalf("Serialize(a): %v", err)
	}
}

func TestGuard_CancelledContext(t *testing.T) {
	g := NewGuard()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := g.Serialize(ctx, scheduling.BookingKey{ClinicID: "c1"}, func(context.Context) error {
		called = true
		return nil
	})
	if err == nil || called {
		t.Fatalf("expected cancelled context to skip fn, err=%v called=%v", err, called)
	}
}

func TestGuard_ReleasesIdleKeys(t *testing.T) {
	g := NewGuard()
	days := []string{"2030-03-04", "2030-03-05", "2030-03-06", "2030-03-07"}
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := scheduling.BookingKey{ClinicID: "c1", ProfessionalID: "p1", Day: days[i%len(days)]}
			_ = g.Serialize(context.Background(), key, func(context.Context) error { return nil })
		}(i)
	}
	wg.Wait()

	g.mu.Lock()
	defer g.mu.Unlock()
	if n := len(g.locks); n != 0 {
		t.Errorf("expected no retained locks, got %d", n)
	}
}
