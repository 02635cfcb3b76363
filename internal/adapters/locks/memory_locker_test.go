package locks

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestMemoryLockerSerializesSameRoute(t *testing.T) {
	l := NewMemoryLocker()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.Lock(context.Background(), 7)
			if err != nil {
				t.Errorf("lock: %v", err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Fatalf("max concurrent holders = %d, want 1", maxInside)
	}
	if n := l.held(); n != 0 {
		t.Fatalf("lock entries left behind: %d", n)
	}
}

func TestMemoryLockerIndependentRoutes(t *testing.T) {
	l := NewMemoryLocker()

	unlock1, err := l.Lock(context.Background(), 1)
	if err != nil {
		t.Fatalf("lock route 1: %v", err)
	}
	defer unlock1()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	unlock2, err := l.Lock(ctx, 2)
	if err != nil {
		t.Fatalf("lock route 2 blocked by route 1: %v", err)
	}
	unlock2()
}

func TestMemoryLockerHonorsContext(t *testing.T) {
	l := NewMemoryLocker()

	unlock, err := l.Lock(context.Background(), 3)
	if err != nil {
		t.Fatalf("lock: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := l.Lock(ctx, 3); err == nil {
		t.Fatal("expected second lock to time out")
	}

	unlock()
	unlock() // idempotent

	if n := l.held(); n != 0 {
		t.Fatalf("lock entries left behind: %d", n)
	}
}
