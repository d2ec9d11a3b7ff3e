package service

import "sync"

// tutorLocks serializes schedule and booking writes per tutor. Writes to
// different tutors never contend; the map only grows, which is fine for the
// number of tutors one instance serves.
type tutorLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newTutorLocks() *tutorLocks {
	return &tutorLocks{locks: make(map[int64]*sync.Mutex)}
}

func (t *tutorLocks) lock(tutorID int64) *sync.Mutex {
	t.mu.Lock()
	m, ok := t.locks[tutorID]
	if !ok {
		m = &sync.Mutex{}
		t.locks[tutorID] = m
	}
	t.mu.Unlock()

	m.Lock()
	return m
}
