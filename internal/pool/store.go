package pool

import (
	"sync"
	"time"
)

// Result is a finished task as kept in the completed store.
type Result struct {
	ID          ID
	Description string
	Status      Status

	// Err is the error returned by the task body, or ErrTaskPanicked wrapping the
	// recovered value when the body panicked.
	Err error

	Task   Task
	Worker int

	StartedAt  time.Time
	FinishedAt time.Time
}

func (r *Result) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *Result) Failed() bool {
	return r.Err != nil
}

// completedStore maps task identity to its finished result. Entries are only
// added until the store is cleared.
type completedStore struct {
	mu      sync.RWMutex
	results map[ID]*Result
}

func newCompletedStore() *completedStore {
	return &completedStore{
		results: make(map[ID]*Result),
	}
}

func (s *completedStore) Save(res *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[res.ID] = res
}

func (s *completedStore) Get(id ID) (*Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	res, exists := s.results[id]
	return res, exists
}

func (s *completedStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.results)
}

// Clear empties the store and returns how many results were dropped.
func (s *completedStore) Clear() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.results)
	clear(s.results)
	return n
}
