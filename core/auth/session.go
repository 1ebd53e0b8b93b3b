package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/trezcool/peereval/core/roster"
)

// Session is the state of one login cycle: the pending one-time code, then the logged in student.
// It is created before login and torn down on logout or after the session timeout.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu      sync.Mutex
	student *roster.Student
	code    *pendingCode
}

type pendingCode struct {
	studentID string
	code      string
	expiresAt time.Time
}

// Student returns the logged in student, if any.
func (s *Session) Student() (roster.Student, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.student == nil {
		return roster.Student{}, false
	}
	return *s.student, true
}

func (s *Session) Authenticated() bool {
	_, ok := s.Student()
	return ok
}

// PendingCode returns the expiry of the code awaiting verification, if any.
func (s *Session) PendingCode() (expiresAt time.Time, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.code == nil {
		return time.Time{}, false
	}
	return s.code.expiresAt, true
}

func (s *Session) setStudent(student roster.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.student = &student
	s.code = nil
}

// SessionStore keeps sessions in memory; idle sessions expire after the configured timeout.
type SessionStore struct {
	cache   *cache.Cache
	timeout time.Duration
}

func NewSessionStore(timeout time.Duration) *SessionStore {
	return &SessionStore{
		cache:   cache.New(timeout, 10*time.Minute),
		timeout: timeout,
	}
}

// New starts a new session.
func (ss *SessionStore) New() *Session {
	sess := &Session{
		ID:        uuid.New().String(),
		CreatedAt: NowFunc(),
	}
	ss.cache.Set(sess.ID, sess, cache.DefaultExpiration)
	return sess
}

// Get returns an active session and extends its lifetime.
func (ss *SessionStore) Get(id string) (*Session, error) {
	v, found := ss.cache.Get(id)
	if !found {
		return nil, ErrSessionNotFound
	}
	sess, ok := v.(*Session)
	if !ok {
		return nil, ErrSessionNotFound
	}
	ss.cache.Set(sess.ID, sess, cache.DefaultExpiration)
	return sess, nil
}

// Delete tears a session down.
func (ss *SessionStore) Delete(id string) {
	ss.cache.Delete(id)
}

func (ss *SessionStore) Len() int { return ss.cache.ItemCount() }
