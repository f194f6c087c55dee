package verify

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tgleech/teraboxbot/internal/models"
)

// Store is the user state the manager needs. The Mongo user repository
// satisfies it; MemoryStore backs deployments without a database.
type Store interface {
	GetByID(ctx context.Context, userID int64) (*models.User, error)
	SetLastVerify(ctx context.Context, userID int64, ts int64) error
}

// Verification describes a minted verification challenge.
type Verification struct {
	Token     string
	VerifyURL string
	ShortURL  string
	ExpiresAt time.Time
}

// Manager decides when a user must verify and mints/redeems tokens.
type Manager struct {
	store     Store
	shortener *Shortener
	secret    string
	freeCount int
	validity  time.Duration
	baseURL   string
	enabled   bool
	log       *zap.Logger
	now       func() time.Time
}

func NewManager(store Store, shortener *Shortener, secret string, freeCount int, validity time.Duration, baseURL string, enabled bool, log *zap.Logger) *Manager {
	return &Manager{
		store:     store,
		shortener: shortener,
		secret:    secret,
		freeCount: freeCount,
		validity:  validity,
		baseURL:   strings.TrimRight(baseURL, "/"),
		enabled:   enabled,
		log:       log,
		now:       time.Now,
	}
}

// Needed reports whether the user has exhausted the free quota and their
// last verification has lapsed. The returned count is the downloads used.
func (m *Manager) Needed(ctx context.Context, userID int64) (bool, int, error) {
	if !m.enabled || m.freeCount <= 0 {
		return false, 0, nil
	}

	user, err := m.store.GetByID(ctx, userID)
	if err != nil {
		return false, 0, err
	}
	if user == nil {
		return false, 0, nil
	}
	if user.Downloads < m.freeCount {
		return false, user.Downloads, nil
	}
	if user.Verified(m.validity, m.now()) {
		return false, user.Downloads, nil
	}
	return true, user.Downloads, nil
}

// New mints a verification token and shortens its redeem URL.
func (m *Manager) New(ctx context.Context, userID int64) (*Verification, error) {
	now := m.now()
	token := MintToken(userID, now, m.secret)
	verifyURL := fmt.Sprintf("%s/verify/%s", m.baseURL, token)

	short := verifyURL
	if m.shortener != nil {
		short = m.shortener.Shorten(ctx, verifyURL)
	}

	return &Verification{
		Token:     token,
		VerifyURL: verifyURL,
		ShortURL:  short,
		ExpiresAt: now.Add(m.validity),
	}, nil
}

// Redeem validates the token and marks its owner verified.
func (m *Manager) Redeem(ctx context.Context, token string) (int64, error) {
	userID, err := ValidateToken(token, m.secret, m.validity, m.now())
	if err != nil {
		return 0, err
	}
	return userID, m.redeem(ctx, userID)
}

// RedeemFor redeems the token only when it belongs to userID. Nothing is
// written when the ownership check fails.
func (m *Manager) RedeemFor(ctx context.Context, token string, userID int64) error {
	owner, err := ValidateToken(token, m.secret, m.validity, m.now())
	if err != nil {
		return err
	}
	if owner != userID {
		return fmt.Errorf("token belongs to another user")
	}
	return m.redeem(ctx, userID)
}

func (m *Manager) redeem(ctx context.Context, userID int64) error {
	if err := m.store.SetLastVerify(ctx, userID, m.now().Unix()); err != nil {
		return err
	}
	m.log.Info("user verified", zap.Int64("user_id", userID))
	return nil
}
