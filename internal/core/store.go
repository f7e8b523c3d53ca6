package core

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store holds every live editor session in memory. It is the single owner of
// each Document: callers get value snapshots and change state only through
// Update.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]Session),
		now:      time.Now,
	}
}

// Create starts a new session holding doc and returns its snapshot.
func (s *Store) Create(doc Document) Session {
	now := s.now()
	sess := Session{
		ID:        uuid.New().String(),
		Document:  doc.Clone(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	return sess.snapshot()
}

// Get returns a snapshot of a session.
func (s *Store) Get(id string) (Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return sess.snapshot(), nil
}

// Update applies fn to the current session under the store lock and keeps
// the result. If fn fails the session is left unchanged.
func (s *Store) Update(id string, fn func(Session) (Session, error)) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return Session{}, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}

	next, err := fn(sess.snapshot())
	if err != nil {
		return sess.snapshot(), err
	}

	next.ID = sess.ID
	next.CreatedAt = sess.CreatedAt
	next.UpdatedAt = s.now()
	s.sessions[id] = next

	return next.snapshot(), nil
}

// Delete drops a session. Unknown IDs are ignored.
func (s *Store) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Sweep removes sessions idle for longer than maxIdle and returns how many
// were removed.
func (s *Store) Sweep(maxIdle time.Duration) int {
	cutoff := s.now().Add(-maxIdle)

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, sess := range s.sessions {
		if sess.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

func (s Session) snapshot() Session {
	out := s
	out.Document = s.Document.Clone()
	if s.Editing != nil {
		p := *s.Editing
		out.Editing = &p
	}
	return out
}
