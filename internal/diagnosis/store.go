package diagnosis

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"symptom-checker/internal/knowledge"
)

// Store holds in-flight diagnosis sessions. Retention is TTL-based: a session
// expires a fixed duration after creation, enforced lazily on lookup and by
// the cache's background sweep. Expired lookups fail with ErrSessionNotFound.
type Store struct {
	sessions *gocache.Cache
}

type sessionEntry struct {
	mu      sync.Mutex
	session *Session
}

// NewStore creates a session store with the given TTL. The background sweep
// runs at half the TTL.
func NewStore(ttl time.Duration) *Store {
	return &Store{
		sessions: gocache.New(ttl, ttl/2),
	}
}

// Create registers a fresh session bound to the given knowledge snapshot.
func (s *Store) Create(kb *knowledge.Snapshot) *Session {
	sess := &Session{
		ID:        uuid.NewString(),
		Status:    StatusAsking,
		CreatedAt: time.Now(),
		KB:        kb,
	}
	s.sessions.Set(sess.ID, &sessionEntry{session: sess}, gocache.DefaultExpiration)
	return sess
}

// Get returns a point-in-time copy of the session for read-only use.
func (s *Store) Get(id string) (Session, error) {
	v, found := s.sessions.Get(id)
	if !found {
		return Session{}, fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	e := v.(*sessionEntry)
	e.mu.Lock()
	defer e.mu.Unlock()

	copied := *e.session
	copied.Answers = append([]Answer(nil), e.session.Answers...)
	return copied, nil
}

// Update runs fn while holding the session's lock. All mutations for a given
// session go through here, which gives the single-writer-per-session
// discipline: concurrent submissions serialize, and the loser then fails its
// pending-question check with ErrInvalidState instead of being merged.
func (s *Store) Update(id string, fn func(*Session) error) error {
	v, found := s.sessions.Get(id)
	if !found {
		return fmt.Errorf("session %s: %w", id, ErrSessionNotFound)
	}
	e := v.(*sessionEntry)
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.session)
}

// Count reports how many sessions are currently retained, expired ones
// included until the next sweep.
func (s *Store) Count() int {
	return s.sessions.ItemCount()
}
