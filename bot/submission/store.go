package submission

import "sync"

// Store keeps the open submission per user. The bot handles one update at a
// time per user, so implementations only need to be safe across users.
type Store interface {
	Get(userID int64) (*Submission, bool)
	Put(s *Submission)
	Delete(userID int64)
}

// MemoryStore is the default process-local Store. A restart loses all
// in-flight submissions, which is acceptable: the user just re-registers.
type MemoryStore struct {
	mu   sync.Mutex
	subs map[int64]*Submission
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{subs: map[int64]*Submission{}}
}

func (m *MemoryStore) Get(userID int64) (*Submission, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.subs[userID]
	return s, ok
}

// Put stores the submission, silently replacing any open one for the same
// user.
func (m *MemoryStore) Put(s *Submission) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subs[s.UserID] = s
}

func (m *MemoryStore) Delete(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.subs, userID)
}
