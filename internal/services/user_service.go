package services

import (
	"context"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/tgleech/teraboxbot/internal/models"
	"github.com/tgleech/teraboxbot/internal/repositories"
)

// UserStore is the per-user persistence the service needs. Backed by the
// Mongo user repository, or the in-memory store when no database is
// configured.
type UserStore interface {
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	Upsert(ctx context.Context, userID int64) error
	IncrementDownloads(ctx context.Context, userID int64, size int64) error
}

type UserService struct {
	store      UserStore
	stats      *repositories.StatsRepository // nil without a database
	ownerID    int64
	authorized map[int64]struct{} // empty means public bot
	log        *zap.Logger
}

func NewUserService(store UserStore, stats *repositories.StatsRepository, ownerID int64, authorizedChats string, log *zap.Logger) *UserService {
	authorized := make(map[int64]struct{})
	for _, field := range strings.Fields(authorizedChats) {
		id, err := strconv.ParseInt(field, 10, 64)
		if err != nil {
			log.Warn("skipping malformed AUTHORIZED_CHATS entry", zap.String("entry", field))
			continue
		}
		authorized[id] = struct{}{}
	}

	return &UserService{
		store:      store,
		stats:      stats,
		ownerID:    ownerID,
		authorized: authorized,
		log:        log,
	}
}

// Register ensures the user document exists, counting first-time users in
// the bot-wide stats.
func (s *UserService) Register(ctx context.Context, userID int64) (*models.User, error) {
	existing, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if err := s.store.Upsert(ctx, userID); err != nil {
		return nil, err
	}

	if existing == nil && s.stats != nil {
		if err := s.stats.RecordUser(ctx); err != nil {
			s.log.Warn("failed to record new user", zap.Error(err))
		}
	}

	return s.store.GetByID(ctx, userID)
}

func (s *UserService) IsOwner(userID int64) bool {
	return userID == s.ownerID
}

// IsAuthorized checks the AUTHORIZED_CHATS allow-list. An empty list means
// the bot is public. The owner is always authorized.
func (s *UserService) IsAuthorized(userID int64) bool {
	if s.IsOwner(userID) || len(s.authorized) == 0 {
		return true
	}
	_, ok := s.authorized[userID]
	return ok
}

// IsBanned reports whether the user is banned.
func (s *UserService) IsBanned(ctx context.Context, userID int64) (bool, error) {
	user, err := s.store.GetByID(ctx, userID)
	if err != nil {
		return false, err
	}
	return user != nil && user.IsBanned, nil
}

// RecordDownload bumps the user and bot-wide counters after a successful
// leech.
func (s *UserService) RecordDownload(ctx context.Context, userID int64, size int64) error {
	if err := s.store.IncrementDownloads(ctx, userID, size); err != nil {
		return err
	}
	if s.stats != nil {
		if err := s.stats.RecordDownload(ctx, size); err != nil {
			s.log.Warn("failed to record download stats", zap.Error(err))
		}
	}
	return nil
}

// Totals returns the bot-wide statistics, zero-valued without a database.
func (s *UserService) Totals(ctx context.Context) (*models.Stats, error) {
	if s.stats == nil {
		return &models.Stats{}, nil
	}
	return s.stats.Get(ctx)
}
