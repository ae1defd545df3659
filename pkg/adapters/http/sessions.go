package http

import (
	"context"
	"sync"
	"time"

	"github.com/aretw0/carepath/pkg/domain"
	"github.com/aretw0/carepath/pkg/view"
)

// session is one traversal held by the server.
type session struct {
	id       string
	ctrl     *view.Controller
	cancel   context.CancelFunc
	lastSeen time.Time
}

// sessionStore indexes sessions by id and evicts idle ones.
type sessionStore struct {
	mu   sync.Mutex
	byID map[string]*session
	ttl  time.Duration
	now  func() time.Time
}

func newSessionStore(ttl time.Duration, now func() time.Time) *sessionStore {
	return &sessionStore{byID: make(map[string]*session), ttl: ttl, now: now}
}

func (st *sessionStore) expired(s *session, now time.Time) bool {
	return st.ttl > 0 && now.Sub(s.lastSeen) > st.ttl
}

func (st *sessionStore) add(s *session) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s.lastSeen = st.now()
	st.byID[s.id] = s
}

// get returns a live session and marks it as seen. An expired session is
// removed and reported through the second result so the caller can release it.
func (st *sessionStore) get(id string) (*session, *session, error) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.byID[id]
	if !ok {
		return nil, nil, domain.ErrSessionNotFound
	}
	now := st.now()
	if st.expired(s, now) {
		delete(st.byID, id)
		return nil, s, domain.ErrSessionNotFound
	}
	s.lastSeen = now
	return s, nil, nil
}

func (st *sessionStore) remove(id string) (*session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.byID[id]
	if ok {
		delete(st.byID, id)
	}
	return s, ok
}

// sweep removes and returns every expired session.
func (st *sessionStore) sweep() []*session {
	st.mu.Lock()
	defer st.mu.Unlock()
	now := st.now()
	var out []*session
	for id, s := range st.byID {
		if st.expired(s, now) {
			delete(st.byID, id)
			out = append(out, s)
		}
	}
	return out
}

func (st *sessionStore) all() []*session {
	st.mu.Lock()
	defer st.mu.Unlock()
	out := make([]*session, 0, len(st.byID))
	for _, s := range st.byID {
		out = append(out, s)
	}
	return out
}

func (st *sessionStore) len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.byID)
}
