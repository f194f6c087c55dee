package models

import "time"

// Stats is the singleton bot-wide statistics document.
type Stats struct {
	TotalUsers     int64     `bson:"total_users" json:"total_users"`
	TotalDownloads int64     `bson:"total_downloads" json:"total_downloads"`
	TotalSize      int64     `bson:"total_size" json:"total_size"`
	UpdatedAt      time.Time `bson:"updated_at" json:"updated_at"`
}
