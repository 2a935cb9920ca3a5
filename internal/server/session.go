package server

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/graphscope/pkg/scene"
)

// ErrStoreFull is returned by Store.Add when the session limit is reached.
var ErrStoreFull = errors.New("session limit reached")

// Session is one headless scene owned by an API client. The scene is
// single-threaded, so every access goes through Do.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu       sync.Mutex
	scene    *scene.Scene
	lastUsed time.Time
	closed   bool
}

func newSession(sc *scene.Scene, now time.Time) *Session {
	return &Session{
		ID:        uuid.NewString(),
		CreatedAt: now,
		scene:     sc,
		lastUsed:  now,
	}
}

// Do runs fn with exclusive access to the scene. It reports false when
// the session was closed in the meantime.
func (s *Session) Do(fn func(sc *scene.Scene) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false, nil
	}
	return true, fn(s.scene)
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastUsed = now
	s.mu.Unlock()
}

func (s *Session) idleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUsed
}

func (s *Session) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.scene.Destroy()
	s.closed = true
}

// Store keeps sessions in memory and expires them after ttl of inactivity.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	max      int
	now      func() time.Time
	onChange func(n int)
}

// NewStore returns an empty store. A zero ttl never expires sessions and a
// zero max allows any number.
func NewStore(ttl time.Duration, max int) *Store {
	return &Store{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		max:      max,
		now:      time.Now,
		onChange: func(int) {},
	}
}

// Add creates a session around sc. On ErrStoreFull the caller still owns sc.
func (st *Store) Add(sc *scene.Scene) (*Session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	if st.max > 0 && len(st.sessions) >= st.max {
		return nil, ErrStoreFull
	}
	sess := newSession(sc, st.now())
	st.sessions[sess.ID] = sess
	st.onChange(len(st.sessions))
	return sess, nil
}

// Get returns a live session and marks it used. Expired sessions are
// closed and reported missing.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	expired := ok && st.expired(sess)
	if expired {
		delete(st.sessions, id)
		st.onChange(len(st.sessions))
	}
	st.mu.Unlock()

	switch {
	case !ok:
		return nil, false
	case expired:
		sess.close()
		return nil, false
	}
	sess.touch(st.now())
	return sess, true
}

// Delete closes and removes a session. It reports whether it existed.
func (st *Store) Delete(id string) bool {
	st.mu.Lock()
	sess, ok := st.sessions[id]
	if ok {
		delete(st.sessions, id)
		st.onChange(len(st.sessions))
	}
	st.mu.Unlock()
	if ok {
		sess.close()
	}
	return ok
}

// Cleanup closes every expired session and returns how many it removed.
func (st *Store) Cleanup() int {
	st.mu.Lock()
	var stale []*Session
	for id, sess := range st.sessions {
		if st.expired(sess) {
			stale = append(stale, sess)
			delete(st.sessions, id)
		}
	}
	if len(stale) > 0 {
		st.onChange(len(st.sessions))
	}
	st.mu.Unlock()

	for _, sess := range stale {
		sess.close()
	}
	return len(stale)
}

// Len returns the number of open sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}

// Close closes every session.
func (st *Store) Close() {
	st.mu.Lock()
	all := make([]*Session, 0, len(st.sessions))
	for id, sess := range st.sessions {
		all = append(all, sess)
		delete(st.sessions, id)
	}
	st.onChange(0)
	st.mu.Unlock()

	for _, sess := range all {
		sess.close()
	}
}

func (st *Store) expired(sess *Session) bool {
	return st.ttl > 0 && st.now().Sub(sess.idleSince()) > st.ttl
}
