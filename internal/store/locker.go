package store

import "sync"

// Locker hands out one mutex per session id so that turns on the same
// session run one at a time while different sessions proceed in parallel.
// Entries are reference counted and released when no holder remains.
type Locker struct {
	mu    sync.Mutex
	locks map[string]*keyedLock
}

type keyedLock struct {
	mu   sync.Mutex
	refs int
}

// NewLocker creates an empty Locker.
func NewLocker() *Locker {
	return &Locker{locks: make(map[string]*keyedLock)}
}

// Lock blocks until id is free and returns the matching unlock function.
//
// Postcondition: The caller holds id exclusively until unlock is called.
// unlock must be called exactly once.
func (l *Locker) Lock(id string) (unlock func()) {
	l.mu.Lock()
	kl, ok := l.locks[id]
	if !ok {
		kl = &keyedLock{}
		l.locks[id] = kl
	}
	kl.refs++
	l.mu.Unlock()

	kl.mu.Lock()
	return func() {
		kl.mu.Unlock()
		l.mu.Lock()
		kl.refs--
		if kl.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}

// Held reports how many ids currently have a holder or waiter.
func (l *Locker) Held() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.locks)
}
