package domain

import "time"

// TextKind selects which collaborative text field of a song an operation
// targets.
type TextKind string

const (
	KindLyrics TextKind = "lyrics"
	KindSync   TextKind = "sync"
)

// ParseTextKind maps a path/query token to a TextKind.
func ParseTextKind(s string) (TextKind, bool) {
	switch TextKind(s) {
	case KindLyrics:
		return KindLyrics, true
	case KindSync:
		return KindSync, true
	}
	return "", false
}

// Song is a song record with its two collaborative text fields. A nil text
// pointer means the field has never been written; an empty string means it
// was written and later cleared.
type Song struct {
	ID           int64     `json:"id"`
	Title        string    `json:"title"`
	Artist       string    `json:"artist,omitempty"`
	Lyrics       *string   `json:"lyrics"`
	LyricsRev    string    `json:"lyricsRev,omitempty"`
	SyncedLyrics *string   `json:"syncedLyrics"`
	SyncedRev    string    `json:"syncedRev,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// Text returns the text field selected by kind.
func (s *Song) Text(kind TextKind) *string {
	if kind == KindSync {
		return s.SyncedLyrics
	}
	return s.Lyrics
}

// Revision returns the revision hash of the text field selected by kind.
func (s *Song) Revision(kind TextKind) string {
	if kind == KindSync {
		return s.SyncedRev
	}
	return s.LyricsRev
}

// Contributor is one user's persisted stake in one text field of one song.
// Rows are never deleted; a contributor whose words are all gone stays at 0.
type Contributor struct {
	SongID  int64    `json:"songId"`
	UserID  int64    `json:"userId"`
	Kind    TextKind `json:"kind"`
	Percent int      `json:"percent"`
}

// EditEvent is the unit of work that triggers an attribution recomputation.
// On suggestion approval EditorID is the original proposer, not the
// reviewer.
type EditEvent struct {
	SongID   int64
	Kind     TextKind
	EditorID int64
	Body     string
}

// EditResult reports an applied (or short-circuited) edit together with the
// post-edit contributor table, ordered by user id.
type EditResult struct {
	NoOp         bool
	Revision     string
	Contributors []Contributor
}
