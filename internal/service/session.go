package service

import (
	"github.com/mmcdole/bilirec/internal/adapter"
	"github.com/mmcdole/bilirec/internal/domain"
)

// SessionService manages user session operations
type SessionService struct {
	store domain.KVStore
}

// NewSessionService creates a new SessionService
func NewSessionService(store domain.KVStore) *SessionService {
	return &SessionService{store: store}
}

// Logout clears the stored session and every per-account cache
func (s *SessionService) Logout() error {
	if err := adapter.ClearAuth(); err != nil {
		return err
	}

	if s.store != nil {
		for _, prefix := range CachePrefixes() {
			s.store.DeletePrefix(prefix)
		}
	}

	return nil
}
