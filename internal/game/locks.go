package game

import "sync"

// sessionLocks hands out one mutex per session id so settlement of a session
// is serialized while settlements of unrelated sessions proceed in parallel.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[int]*sync.Mutex
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[int]*sync.Mutex)}
}

func (l *sessionLocks) Get(sessionID int) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[sessionID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[sessionID] = m
	}
	return m
}

// Release drops the entry for a session that can no longer be settled, so the
// map does not grow with every session ever played. A result event that
// arrives after release gets a fresh mutex; the row lock and the finished
// guard inside the settlement transaction still make it a no-op.
func (l *sessionLocks) Release(sessionID int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.locks, sessionID)
}
