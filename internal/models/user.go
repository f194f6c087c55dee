package models

import (
	"time"
)

// User is the per-user document stored in the users collection. Downloads is
// incremented on every successful leech; LastVerify is the unix time of the
// last completed shortlink verification.
type User struct {
	UserID     int64     `bson:"user_id" json:"user_id"`
	Downloads  int       `bson:"downloads" json:"downloads"`
	LastVerify int64     `bson:"last_verify" json:"last_verify"`
	IsBanned   bool      `bson:"is_banned" json:"is_banned"`
	TotalSize  int64     `bson:"total_size" json:"total_size"`
	CreatedAt  time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time `bson:"updated_at" json:"updated_at"`
}

// Verified reports whether the user's last verification is still valid.
func (u *User) Verified(validity time.Duration, now time.Time) bool {
	if u.LastVerify == 0 {
		return false
	}
	return now.Sub(time.Unix(u.LastVerify, 0)) <= validity
}
