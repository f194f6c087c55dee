package verify

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestManager(store Store, freeCount int, enabled bool) *Manager {
	return NewManager(store, nil, testSecret, freeCount, 24*time.Hour,
		"https://bot.example.com", enabled, zap.NewNop())
}

func TestNeededBelowQuota(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := newTestManager(store, 3, true)

	// Unknown user: no verification needed.
	needed, _, err := m.Needed(ctx, 1)
	if err != nil {
		t.Fatalf("Needed: %v", err)
	}
	if needed {
		t.Fatal("unknown user should not need verification")
	}

	// Two downloads out of three: still free.
	store.IncrementDownloads(ctx, 1, 100)
	store.IncrementDownloads(ctx, 1, 100)

	needed, used, err := m.Needed(ctx, 1)
	if err != nil {
		t.Fatalf("Needed: %v", err)
	}
	if needed {
		t.Fatal("user below quota should not need verification")
	}
	if used != 2 {
		t.Fatalf("used = %d", used)
	}
}

func TestNeededOverQuota(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := newTestManager(store, 2, true)

	store.IncrementDownloads(ctx, 1, 100)
	store.IncrementDownloads(ctx, 1, 100)

	needed, used, err := m.Needed(ctx, 1)
	if err != nil {
		t.Fatalf("Needed: %v", err)
	}
	if !needed {
		t.Fatal("user at quota should need verification")
	}
	if used != 2 {
		t.Fatalf("used = %d", used)
	}
}

func TestNeededAfterVerification(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := newTestManager(store, 1, true)

	store.IncrementDownloads(ctx, 1, 100)

	needed, _, err := m.Needed(ctx, 1)
	if err != nil || !needed {
		t.Fatalf("expected verification needed, got needed=%v err=%v", needed, err)
	}

	v, err := m.New(ctx, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if !strings.HasPrefix(v.VerifyURL, "https://bot.example.com/verify/") {
		t.Fatalf("verify url = %q", v.VerifyURL)
	}
	// Without a shortener the short URL falls back to the long one.
	if v.ShortURL != v.VerifyURL {
		t.Fatalf("short url = %q", v.ShortURL)
	}

	userID, err := m.Redeem(ctx, v.Token)
	if err != nil {
		t.Fatalf("Redeem: %v", err)
	}
	if userID != 1 {
		t.Fatalf("redeemed user = %d", userID)
	}

	needed, _, err = m.Needed(ctx, 1)
	if err != nil {
		t.Fatalf("Needed: %v", err)
	}
	if needed {
		t.Fatal("verified user should not need verification")
	}
}

func TestNeededDisabled(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	for i := 0; i < 10; i++ {
		store.IncrementDownloads(ctx, 1, 100)
	}

	m := newTestManager(store, 3, false)
	if needed, _, _ := m.Needed(ctx, 1); needed {
		t.Fatal("disabled verification should never gate")
	}

	// Non-positive free count means unlimited.
	m = newTestManager(store, 0, true)
	if needed, _, _ := m.Needed(ctx, 1); needed {
		t.Fatal("zero free count should never gate")
	}
}

func TestRedeemInvalidToken(t *testing.T) {
	m := newTestManager(NewMemoryStore(), 3, true)
	if _, err := m.Redeem(context.Background(), "1_2_deadbeefdeadbeef"); err == nil {
		t.Fatal("expected invalid token to fail")
	}
}

func TestRedeemForWrongUser(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	m := newTestManager(store, 3, true)

	v, err := m.New(ctx, 1)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	// Someone else pasting user 1's token must not verify anyone.
	if err := m.RedeemFor(ctx, v.Token, 2); err == nil {
		t.Fatal("expected foreign token to be rejected")
	}

	owner, err := store.GetByID(ctx, 1)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if owner != nil && owner.LastVerify != 0 {
		t.Fatalf("token owner was verified anyway: last_verify = %d", owner.LastVerify)
	}

	if err := m.RedeemFor(ctx, v.Token, 1); err != nil {
		t.Fatalf("RedeemFor owner: %v", err)
	}
}
