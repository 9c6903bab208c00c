package models

import "time"

type User struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	Handle    string `gorm:"size:64;uniqueIndex;not null"`
	Role      string `gorm:"size:16;not null;default:user"`
	Token     string `gorm:"size:64;uniqueIndex;not null"`
	CreatedAt time.Time
}

// Song holds the two collaborative text fields. A NULL column means the
// field never existed; an empty string means it was cleared. The *Rev
// columns carry the xxh3 hash of the normalized text for cheap no-op
// detection.
type Song struct {
	ID           int64   `gorm:"primaryKey;autoIncrement"`
	Title        string  `gorm:"size:256;not null"`
	Artist       string  `gorm:"size:256"`
	Lyrics       *string `gorm:"type:text"`
	LyricsRev    string  `gorm:"size:16"`
	SyncedLyrics *string `gorm:"type:text"`
	SyncedRev    string  `gorm:"size:16"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Contributor rows are upserted, never deleted; percent drops to 0 when a
// user no longer owns any of the current text.
type Contributor struct {
	ID        int64  `gorm:"primaryKey;autoIncrement"`
	SongID    int64  `gorm:"not null;index:uniq_song_user_kind,unique,priority:1"`
	UserID    int64  `gorm:"not null;index:uniq_song_user_kind,unique,priority:2"`
	Kind      string `gorm:"size:16;not null;index:uniq_song_user_kind,unique,priority:3"`
	Percent   int    `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Suggestion struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	SongID     int64  `gorm:"not null;index"`
	Kind       string `gorm:"size:16;not null"`
	Body       string `gorm:"type:text;not null"`
	ProposerID int64  `gorm:"not null;index"`
	Status     string `gorm:"size:16;not null;default:pending;index"`
	ReviewerID *int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
