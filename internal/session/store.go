package session

import (
	"sync"
	"time"

	"interview-bot/internal/interview"
)

// lockEntry serializes work on one user's session. refs counts the callers
// holding or waiting for mu so the entry can be dropped when unused.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Store keeps one active interview per user. Sessions live in memory only.
type Store struct {
	mu       sync.Mutex
	sessions map[int64]*interview.Session
	locks    map[int64]*lockEntry
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{
		sessions: make(map[int64]*interview.Session),
		locks:    make(map[int64]*lockEntry),
		now:      time.Now,
	}
}

func (s *Store) acquire(userID int64) *lockEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.locks[userID]
	if !ok {
		e = &lockEntry{}
		s.locks[userID] = e
	}
	e.refs++
	return e
}

func (s *Store) release(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.locks[userID]
	if !ok {
		return
	}
	e.refs--
	if e.refs <= 0 {
		delete(s.locks, userID)
	}
}

// WithLock runs fn while holding the user's lock. Calls for different users
// run in parallel; calls for the same user never overlap.
func (s *Store) WithLock(userID int64, fn func() error) error {
	e := s.acquire(userID)
	e.mu.Lock()
	defer s.release(userID)
	defer e.mu.Unlock()
	return fn()
}

// Get returns the active session or nil.
func (s *Store) Get(userID int64) *interview.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID]
}

// GetOrCreate returns the active session, registering a fresh one if needed.
func (s *Store) GetOrCreate(userID int64) *interview.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess := interview.NewSession(userID, s.now())
	s.sessions[userID] = sess
	return sess
}

// Start always installs a fresh session. replaced reports whether an
// unfinished one was dropped.
func (s *Store) Start(userID int64) (sess *interview.Session, replaced bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, replaced = s.sessions[userID]
	sess = interview.NewSession(userID, s.now())
	s.sessions[userID] = sess
	return sess, replaced
}

// Discard removes the session together with its pain draft. It reports
// whether there was anything to remove.
func (s *Store) Discard(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[userID]
	if ok {
		sess.Draft = nil
		delete(s.sessions, userID)
	}
	return ok
}

// Len returns the number of active sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
