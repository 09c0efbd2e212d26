package memory

import (
	"context"
	"sync"

	"music-quiz-service/internal/domain"
)

// UserStore is an in-memory implementation of game.UserStore.
type UserStore struct {
	mu       sync.RWMutex
	profiles map[string]domain.UserProfile
}

func NewUserStore() *UserStore {
	return &UserStore{
		profiles: make(map[string]domain.UserProfile),
	}
}

func (s *UserStore) LoadProfile(_ context.Context, userID string) (domain.UserProfile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[userID]
	if !ok {
		return domain.UserProfile{}, domain.ErrProfileNotFound
	}
	return profile, nil
}

func (s *UserStore) SaveProfile(_ context.Context, profile domain.UserProfile) error {
	s.mu.Lock()
	s.profiles[profile.UserID] = profile
	s.mu.Unlock()
	return nil
}
