package cas

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// keyLock serializes commits of one key. refs counts the holder and waiters.
type keyLock struct {
	sem  *semaphore.Weighted
	refs int
}

// keyLocks is a context aware mutex map.
type keyLocks struct {
	mu    sync.Mutex
	locks map[string]*keyLock
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[string]*keyLock)}
}

// acquire blocks until key is free or ctx is done.
func (l *keyLocks) acquire(ctx context.Context, key string) error {
	l.mu.Lock()
	lock, ok := l.locks[key]
	if !ok {
		lock = &keyLock{sem: semaphore.NewWeighted(1)}
		l.locks[key] = lock
	}
	lock.refs++
	l.mu.Unlock()

	if err := lock.sem.Acquire(ctx, 1); err != nil {
		l.drop(key, lock)
		return err
	}
	return nil
}

func (l *keyLocks) release(key string) {
	l.mu.Lock()
	lock := l.locks[key]
	l.mu.Unlock()
	lock.sem.Release(1)
	l.drop(key, lock)
}

func (l *keyLocks) drop(key string, lock *keyLock) {
	l.mu.Lock()
	defer l.mu.Unlock()
	lock.refs--
	if lock.refs == 0 {
		delete(l.locks, key)
	}
}

// held reports whether a handle for key is open or awaited.
func (l *keyLocks) held(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.locks[key]
	return ok
}
