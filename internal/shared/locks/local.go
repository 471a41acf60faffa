package locks

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type slotMutex struct {
	sem  chan struct{}
	refs int
}

// LocalLocker is an in-process per-slot mutex. Entries are dropped once no
// goroutine holds or waits on them.
type LocalLocker struct {
	mu    sync.Mutex
	slots map[uuid.UUID]*slotMutex
	wait  time.Duration
}

// NewLocalLocker creates a locker; wait <= 0 waits until ctx is done.
func NewLocalLocker(wait time.Duration) *LocalLocker {
	return &LocalLocker{
		slots: make(map[uuid.UUID]*slotMutex),
		wait:  wait,
	}
}

func (l *LocalLocker) Lock(ctx context.Context, slotID uuid.UUID) (func(), error) {
	m := l.acquireRef(slotID)

	var timeout <-chan time.Time
	if l.wait > 0 {
		timer := time.NewTimer(l.wait)
		defer timer.Stop()
		timeout = timer.C
	}

	select {
	case m.sem <- struct{}{}:
		var once sync.Once
		return func() {
			once.Do(func() {
				<-m.sem
				l.releaseRef(slotID)
			})
		}, nil
	case <-ctx.Done():
		l.releaseRef(slotID)
		return nil, ctx.Err()
	case <-timeout:
		l.releaseRef(slotID)
		return nil, ErrNotAcquired
	}
}

func (l *LocalLocker) acquireRef(slotID uuid.UUID) *slotMutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.slots[slotID]
	if !ok {
		m = &slotMutex{sem: make(chan struct{}, 1)}
		l.slots[slotID] = m
	}
	m.refs++
	return m
}

func (l *LocalLocker) releaseRef(slotID uuid.UUID) {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.slots[slotID]
	if !ok {
		return
	}
	m.refs--
	if m.refs == 0 {
		delete(l.slots, slotID)
	}
}

// size is the number of slots currently tracked.
func (l *LocalLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.slots)
}
