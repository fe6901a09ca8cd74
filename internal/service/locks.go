package service

import "sync"

// requestLocks hands out one exclusive critical section per request id.
// Operations on different ids never block each other; entries are
// dropped once the last holder releases, so the map stays bounded by
// the number of in-flight operations.
type requestLocks struct {
	mu      sync.Mutex
	entries map[string]*lockEntry
}

type lockEntry struct {
	mu   sync.Mutex
	refs int
}

func newRequestLocks() *requestLocks {
	return &requestLocks{entries: make(map[string]*lockEntry)}
}

// acquire blocks until the critical section for id is free and returns
// the release function.
func (l *requestLocks) acquire(id string) func() {
	l.mu.Lock()
	entry, ok := l.entries[id]
	if !ok {
		entry = &lockEntry{}
		l.entries[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.entries, id)
		}
		l.mu.Unlock()
	}
}
