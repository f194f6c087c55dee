package verify

import (
	"strings"
	"testing"
	"time"
)

const testSecret = "shortlink-api-key"

func TestTokenRoundtrip(t *testing.T) {
	now := time.Now()
	token := MintToken(12345, now, testSecret)

	userID, err := ValidateToken(token, testSecret, 24*time.Hour, now.Add(time.Hour))
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if userID != 12345 {
		t.Fatalf("userID = %d", userID)
	}
}

func TestTokenExpired(t *testing.T) {
	now := time.Now()
	token := MintToken(12345, now, testSecret)

	if _, err := ValidateToken(token, testSecret, time.Hour, now.Add(2*time.Hour)); err == nil {
		t.Fatal("expected expired token to fail")
	}
}

func TestTokenTampered(t *testing.T) {
	now := time.Now()
	token := MintToken(12345, now, testSecret)

	// Re-sign for a different user keeping the same hash.
	parts := strings.SplitN(token, "_", 2)
	forged := "99999_" + parts[1]
	if _, err := ValidateToken(forged, testSecret, 24*time.Hour, now); err == nil {
		t.Fatal("expected forged token to fail")
	}

	if _, err := ValidateToken(token, "other-secret", 24*time.Hour, now); err == nil {
		t.Fatal("expected wrong secret to fail")
	}
}

func TestTokenFormat(t *testing.T) {
	bad := []string{
		"",
		"notatoken",
		"123_456",
		"123_456_zzzz",
		"abc_456_0123456789abcdef",
	}
	for _, token := range bad {
		if _, err := ValidateToken(token, testSecret, 24*time.Hour, time.Now()); err == nil {
			t.Fatalf("expected %q to be rejected", token)
		}
	}
}
