package locks

import (
	"context"
	"sync"
)

// MemoryLocker serializes work per route within one process.
// Entries are reference counted and dropped once no caller holds or waits on them.
type MemoryLocker struct {
	mu    sync.Mutex
	locks map[int64]*routeLock
}

type routeLock struct {
	ch   chan struct{}
	refs int
}

func NewMemoryLocker() *MemoryLocker {
	return &MemoryLocker{locks: make(map[int64]*routeLock)}
}

// Lock blocks until the route is free or ctx is done.
func (l *MemoryLocker) Lock(ctx context.Context, routeID int64) (func(), error) {
	l.mu.Lock()
	rl, ok := l.locks[routeID]
	if !ok {
		rl = &routeLock{ch: make(chan struct{}, 1)}
		l.locks[routeID] = rl
	}
	rl.refs++
	l.mu.Unlock()

	select {
	case rl.ch <- struct{}{}:
	case <-ctx.Done():
		l.release(routeID, rl)
		return nil, ctx.Err()
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			<-rl.ch
			l.release(routeID, rl)
		})
	}, nil
}

func (l *MemoryLocker) release(routeID int64, rl *routeLock) {
	l.mu.Lock()
	defer l.mu.Unlock()

	rl.refs--
	if rl.refs == 0 {
		delete(l.locks, routeID)
	}
}

// held reports how many routes currently have holders or waiters.
func (l *MemoryLocker) held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
