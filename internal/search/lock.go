package search

import "sync"

// typeLocks serializes write batches per document type. Two concurrent
// syncs of the same family would otherwise interleave their batches and
// could resurrect documents a concurrent delete just removed.
type typeLocks struct {
	mu    sync.Mutex
	locks map[DocType]*sync.Mutex
}

func newTypeLocks() *typeLocks {
	return &typeLocks{locks: make(map[DocType]*sync.Mutex)}
}

func (t *typeLocks) get(dt DocType) *sync.Mutex {
	t.mu.Lock()
	defer t.mu.Unlock()
	l, ok := t.locks[dt]
	if !ok {
		l = &sync.Mutex{}
		t.locks[dt] = l
	}
	return l
}

// Lock acquires the write lock for a family and returns the unlock
// function.
func (t *typeLocks) Lock(dt DocType) func() {
	l := t.get(dt)
	l.Lock()
	return l.Unlock
}
