package server

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mj1618/uitree/internal/uitree"
)

// Session is one reduced observation kept so later tool calls can resolve
// its tags against the unreduced dump.
type Session struct {
	ID      string
	Source  string
	Result  *uitree.Result
	created time.Time
}

// SessionStore provides a TTL-bounded store of reductions. Tags are only
// meaningful within the reduction that produced them, so every session is
// addressed by its own id.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]*Session
	ttl     time.Duration
	max     int
	now     func() time.Time
}

// NewSessionStore creates a store. Sessions older than ttl are dropped; when
// more than max sessions are held the oldest go first. A max of 0 means no limit.
func NewSessionStore(ttl time.Duration, max int) *SessionStore {
	return &SessionStore{
		entries: make(map[string]*Session),
		ttl:     ttl,
		max:     max,
		now:     time.Now,
	}
}

// Put stores res and returns its new session.
func (s *SessionStore) Put(source string, res *uitree.Result) *Session {
	sess := &Session{
		ID:     uuid.NewString(),
		Source: source,
		Result: res,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess.created = s.now()
	s.entries[sess.ID] = sess
	s.sweepLocked()
	return sess
}

// Get returns the session if it exists and has not expired.
func (s *SessionStore) Get(id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	if s.ttl > 0 && s.now().Sub(sess.created) >= s.ttl {
		delete(s.entries, id)
		return nil, false
	}
	return sess, true
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sweepLocked()
	return len(s.entries)
}

// sweepLocked drops expired sessions, then the oldest ones above max.
func (s *SessionStore) sweepLocked() {
	now := s.now()
	if s.ttl > 0 {
		for id, sess := range s.entries {
			if now.Sub(sess.created) >= s.ttl {
				delete(s.entries, id)
			}
		}
	}
	if s.max <= 0 || len(s.entries) <= s.max {
		return
	}
	all := make([]*Session, 0, len(s.entries))
	for _, sess := range s.entries {
		all = append(all, sess)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].created.Before(all[j].created) })
	for _, sess := range all[:len(all)-s.max] {
		delete(s.entries, sess.ID)
	}
}
