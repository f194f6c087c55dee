// Package verify implements the shortlink verification gate: users get a
// number of free downloads, after which they must click through a
// shortlink that redeems a signed token.
package verify

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var tokenRe = regexp.MustCompile(`^\d+_\d+_[a-f0-9]{16}$`)

// MintToken builds a verification token for the user at the given time.
// Format: <user_id>_<unix>_<hash16> where hash16 is the first 16 hex chars
// of SHA-256("<user_id>:<unix>:<secret>").
func MintToken(userID int64, ts time.Time, secret string) string {
	return fmt.Sprintf("%d_%d_%s", userID, ts.Unix(), tokenHash(userID, ts.Unix(), secret))
}

func tokenHash(userID, unix int64, secret string) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%d:%d:%s", userID, unix, secret)))
	return hex.EncodeToString(sum[:])[:16]
}

// ValidateToken checks the token's format, signature and age, returning the
// user it belongs to.
func ValidateToken(token, secret string, validity time.Duration, now time.Time) (int64, error) {
	if !tokenRe.MatchString(token) {
		return 0, fmt.Errorf("invalid token format")
	}

	parts := strings.Split(token, "_")
	userID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token format")
	}
	ts, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid token format")
	}

	if now.Sub(time.Unix(ts, 0)) > validity {
		return 0, fmt.Errorf("token expired")
	}
	if parts[2] != tokenHash(userID, ts, secret) {
		return 0, fmt.Errorf("invalid token")
	}
	return userID, nil
}
