package cache

import (
	"context"
	"sync"
	"time"

	"github.com/Uddesh-18/CropSmart/internal/domain/entities"
	"github.com/Uddesh-18/CropSmart/internal/pkg/logger"
)

// MemorySessionStore keeps sessions in process. Expired entries stay until
// CleanupExpired runs or they are looked up.
type MemorySessionStore struct {
	sessions map[string]entities.Session
	mu       sync.RWMutex
	now      func() time.Time
	logger   logger.Logger
}

func NewMemorySessionStore(log logger.Logger) *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string]entities.Session),
		now:      time.Now,
		logger:   logger.Component(log, "memory_session_store"),
	}
}

func (s *MemorySessionStore) Save(ctx context.Context, session *entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions[session.Token] = *session
	return nil
}

func (s *MemorySessionStore) Update(ctx context.Context, session *entities.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[session.Token]; !ok {
		return entities.ErrSessionNotFound
	}
	s.sessions[session.Token] = *session
	return nil
}

// Get returns a copy; callers mutate it freely and Save it back.
func (s *MemorySessionStore) Get(ctx context.Context, token string) (*entities.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return nil, entities.ErrSessionNotFound
	}
	return &session, nil
}

func (s *MemorySessionStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, token)
	return nil
}

func (s *MemorySessionStore) CleanupExpired(ctx context.Context) (int, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for token, session := range s.sessions {
		if session.Expired(now) {
			delete(s.sessions, token)
			removed++
		}
	}

	s.logger.Debugf("Session sweep removed %d, %d remaining", removed, len(s.sessions))
	return removed, nil
}

func (s *MemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *MemorySessionStore) HealthCheck(ctx context.Context) error { return nil }

func (s *MemorySessionStore) Close() error { return nil }
