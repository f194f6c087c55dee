package verify

import (
	"context"
	"sync"
	"time"

	"github.com/tgleech/teraboxbot/internal/models"
)

// MemoryStore keeps user counters in process memory. It backs the manager
// when no DATABASE_URL is configured; state is lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[int64]*models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{users: make(map[int64]*models.User)}
}

func (s *MemoryStore) GetByID(_ context.Context, userID int64) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[userID]
	if !ok {
		return nil, nil
	}
	cp := *u
	return &cp, nil
}

func (s *MemoryStore) SetLastVerify(_ context.Context, userID int64, ts int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user(userID).LastVerify = ts
	return nil
}

// Upsert mirrors the Mongo repository so the memory store can back the
// user service as well.
func (s *MemoryStore) Upsert(_ context.Context, userID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.user(userID)
	return nil
}

func (s *MemoryStore) IncrementDownloads(_ context.Context, userID int64, size int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.user(userID)
	u.Downloads++
	u.TotalSize += size
	return nil
}

func (s *MemoryStore) user(userID int64) *models.User {
	u, ok := s.users[userID]
	if !ok {
		u = &models.User{UserID: userID, CreatedAt: time.Now().UTC()}
		s.users[userID] = u
	}
	u.UpdatedAt = time.Now().UTC()
	return u
}
