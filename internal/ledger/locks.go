package ledger

import "sync"

// lockTable hands out one mutex per user so trades for the same user
// serialize while trades for different users proceed in parallel.
type lockTable struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newLockTable() *lockTable {
	return &lockTable{locks: make(map[string]*sync.Mutex)}
}

func (t *lockTable) lock(userID string) {
	t.mu.Lock()
	m, ok := t.locks[userID]
	if !ok {
		m = &sync.Mutex{}
		t.locks[userID] = m
	}
	t.mu.Unlock()

	m.Lock()
}

func (t *lockTable) unlock(userID string) {
	t.mu.Lock()
	m := t.locks[userID]
	t.mu.Unlock()

	if m != nil {
		m.Unlock()
	}
}
