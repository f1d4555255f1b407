// Package session provides per-user concurrency control for event
// handling. The store's read-validate-write of a session is not atomic;
// wrapping each event in the user's critical section closes that window
// without serializing unrelated users.
package session

import "sync"

// lockEntry holds the mutex and its reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Guard serializes work per user id. Locks are keyed and garbage
// collected by reference counting, so idle users cost nothing.
type Guard struct {
	mu    sync.Mutex // global lock for the map only
	locks map[int64]*lockEntry
}

// NewGuard creates an empty guard.
func NewGuard() *Guard {
	return &Guard{locks: make(map[int64]*lockEntry)}
}

// acquire gets or creates a lock entry and increments its reference
// count. The caller must lock entry.mu and pair with release.
func (g *Guard) acquire(userID int64) *lockEntry {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.locks[userID]
	if !ok {
		entry = &lockEntry{}
		g.locks[userID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and drops the entry at zero.
func (g *Guard) release(userID int64) {
	g.mu.Lock()
	defer g.mu.Unlock()

	entry, ok := g.locks[userID]
	if !ok {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(g.locks, userID)
	}
}

// Do executes fn while holding the lock for the user.
func (g *Guard) Do(userID int64, fn func()) {
	entry := g.acquire(userID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		g.release(userID)
	}()

	fn()
}
