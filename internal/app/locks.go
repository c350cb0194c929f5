package app

import "sync"

// leadLocks serializes mutations per lead. Entries are reference counted so
// the map only holds leads with an operation in flight.
type leadLocks struct {
	mu    sync.Mutex
	locks map[string]*leadLock
}

type leadLock struct {
	mu   sync.Mutex
	refs int
}

func newLeadLocks() *leadLocks {
	return &leadLocks{locks: make(map[string]*leadLock)}
}

// lock blocks until the caller owns leadID and returns the release func.
func (l *leadLocks) lock(leadID string) func() {
	l.mu.Lock()
	entry, ok := l.locks[leadID]
	if !ok {
		entry = &leadLock{}
		l.locks[leadID] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()

	return func() {
		entry.mu.Unlock()

		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, leadID)
		}
		l.mu.Unlock()
	}
}

// size reports how many leads currently have a lock entry.
func (l *leadLocks) size() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
