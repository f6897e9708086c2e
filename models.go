package main

import (
	"time"

	"gorm.io/gorm"
)

// RelayMessage is one forwarded mini-app message. The table is a bounded
// per-user history: rows beyond Config.MessageHistorySize are evicted
// oldest-first after each insert.
type RelayMessage struct {
	gorm.Model
	UserID         int64 `gorm:"index"`
	Username       string
	FirstName      string
	LastName       string
	Body           string `gorm:"type:text"`
	AdminDelivered bool
	SenderNotified bool
}

// CachedPhoto indexes the on-disk profile-photo cache. One row per Telegram
// user; the file itself lives under Config.CacheDir.
type CachedPhoto struct {
	gorm.Model
	TelegramID  int64 `gorm:"uniqueIndex;not null"`
	FilePath    string
	ContentType string
	FetchedAt   time.Time
}
