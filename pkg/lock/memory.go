package lock

import (
	"context"
	"sync"
	"time"
)

type memEntry struct {
	ch   chan struct{}
	refs int
}

// MemoryLocker keeps one single-slot channel per key. Entries are dropped
// once no holder or waiter references them.
type MemoryLocker struct {
	mu      sync.Mutex
	entries map[string]*memEntry
	timeout time.Duration
	observe Observer
}

type MemoryOption func(*MemoryLocker)

func WithMemoryObserver(o Observer) MemoryOption {
	return func(l *MemoryLocker) { l.observe = o }
}

func NewMemoryLocker(timeout time.Duration, opts ...MemoryOption) *MemoryLocker {
	if timeout <= 0 {
		timeout = DefaultWaitTimeout
	}
	l := &MemoryLocker{
		entries: make(map[string]*memEntry),
		timeout: timeout,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *MemoryLocker) WithLock(ctx context.Context, key string, fn func(ctx context.Context) error) error {
	e := l.acquireRef(key)
	defer l.releaseRef(key, e)

	timer := time.NewTimer(l.timeout)
	defer timer.Stop()

	started := time.Now()
	select {
	case e.ch <- struct{}{}:
	case <-timer.C:
		l.report(key, time.Since(started), false)
		return ErrBusy
	case <-ctx.Done():
		l.report(key, time.Since(started), false)
		return ErrBusy.Wrap(ctx.Err())
	}
	l.report(key, time.Since(started), true)
	defer func() { <-e.ch }()

	return fn(ctx)
}

func (l *MemoryLocker) report(key string, waited time.Duration, acquired bool) {
	if l.observe != nil {
		l.observe(key, waited, acquired)
	}
}

func (l *MemoryLocker) acquireRef(key string) *memEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok {
		e = &memEntry{ch: make(chan struct{}, 1)}
		l.entries[key] = e
	}
	e.refs++
	return e
}

func (l *MemoryLocker) releaseRef(key string, e *memEntry) {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.refs--
	if e.refs == 0 {
		delete(l.entries, key)
	}
}

// size reports the number of live keys.
func (l *MemoryLocker) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}
