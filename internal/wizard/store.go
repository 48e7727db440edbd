package wizard

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"github.com/stwalsh4118/agrireg/internal/logger"
)

// Store keeps registration sessions in memory. A session expires after ttl
// without access, which discards its draft.
type Store struct {
	sessions *cache.Cache
	log      *logger.Logger
}

// NewStore creates a Store whose sessions expire after ttl of inactivity.
func NewStore(ttl time.Duration, log *logger.Logger) *Store {
	sessions := cache.New(ttl, ttl)
	sessions.OnEvicted(func(id string, value interface{}) {
		sess, ok := value.(*Session)
		if !ok || sess.Submitted() {
			return
		}
		log.Info("Registration draft discarded", map[string]interface{}{
			"session_id": id,
			"user_id":    sess.UserID,
			"step":       sess.Step().String(),
		})
	})
	return &Store{sessions: sessions, log: log}
}

// Create starts a new session for userID.
func (s *Store) Create(userID string) (*Session, error) {
	sess, err := NewSession(uuid.NewString(), userID)
	if err != nil {
		return nil, err
	}
	if err := s.sessions.Add(sess.ID, sess, cache.DefaultExpiration); err != nil {
		return nil, fmt.Errorf("failed to store session: %w", err)
	}
	return sess, nil
}

// Get returns the session with id and extends its expiry.
func (s *Store) Get(id string) (*Session, error) {
	value, found := s.sessions.Get(id)
	if !found {
		return nil, ErrSessionNotFound
	}
	sess, ok := value.(*Session)
	if !ok {
		return nil, ErrSessionNotFound
	}
	// Replace fails if the session was deleted meanwhile, which is fine.
	_ = s.sessions.Replace(id, sess, cache.DefaultExpiration)
	return sess, nil
}

// Delete removes a session. Deleting an unknown id is a no-op.
func (s *Store) Delete(id string) {
	s.sessions.Delete(id)
}

// Count returns the number of live sessions, including expired ones not yet swept.
func (s *Store) Count() int {
	return s.sessions.ItemCount()
}
