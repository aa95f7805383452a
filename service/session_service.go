package service

import (
	"sync"

	log "github.com/sirupsen/logrus"
)

// SessionService enforces "at most one active game round per user". Every
// game type shares the same per-user slot: a user in the middle of a coin
// flip cannot open a dice round. The owning handler must call EndGame on
// every exit path, normally via defer right after a successful StartGame.
type SessionService struct {
	mu     sync.Mutex
	active map[int64]struct{}
}

// NewSessionService creates a new session service
func NewSessionService() *SessionService {
	return &SessionService{
		active: make(map[int64]struct{}),
	}
}

// StartGame marks the user as in an active round. Returns false without
// changing state if the user already has a round open.
func (s *SessionService) StartGame(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.active[userID]; exists {
		return false
	}
	s.active[userID] = struct{}{}
	return true
}

// EndGame clears the user's active round. Idempotent.
func (s *SessionService) EndGame(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.active, userID)
}

// IsActive reports whether the user has a round open
func (s *SessionService) IsActive(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, exists := s.active[userID]
	return exists
}

// ActiveCount returns the number of users with an open round
func (s *SessionService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.active)
}

// ForceEnd clears a user's slot regardless of who holds it. Administrative
// recovery for a leaked session; returns whether a slot was actually held.
func (s *SessionService) ForceEnd(userID int64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, exists := s.active[userID]
	if exists {
		delete(s.active, userID)
		log.WithField("userID", userID).Warn("Game session force-ended")
	}
	return exists
}
