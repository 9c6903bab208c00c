package verseroom

import (
	"time"
)

const (
	EventKindTextUpdated        = "text.updated"
	EventKindSuggestionResolved = "suggestion.resolved"
)

// ContributorShare is the wire form of one contributor's stake in a text.
type ContributorShare struct {
	UserID  int64 `json:"userId"`
	Percent int   `json:"percent"`
}

// Event is broadcast over the realtime socket whenever a song text changes
// or a suggestion is resolved.
type Event struct {
	Kind         string             `json:"kind"`
	SongID       int64              `json:"songId"`
	TextKind     string             `json:"textKind,omitempty"`
	Revision     string             `json:"revision,omitempty"`
	EditorID     int64              `json:"editorId,omitempty"`
	SuggestionID int64              `json:"suggestionId,omitempty"`
	Status       string             `json:"status,omitempty"`
	Contributors []ContributorShare `json:"contributors,omitempty"`
	Timestamp    time.Time          `json:"timestamp"`
}

// EditTextRequest is the body of a direct edit or a suggestion submission.
type EditTextRequest struct {
	Body string `json:"body"`
}

// EditTextResponse reports the outcome of an applied edit. NoOp is true when
// the normalized text was already identical and nothing was written.
type EditTextResponse struct {
	NoOp         bool               `json:"noop"`
	Revision     string             `json:"revision,omitempty"`
	Contributors []ContributorShare `json:"contributors"`
}

type CreateSongRequest struct {
	Title  string `json:"title"`
	Artist string `json:"artist,omitempty"`
}

type RegisterRequest struct {
	Handle string `json:"handle"`
	Role   string `json:"role,omitempty"`
}

type RegisterResponse struct {
	UserID int64  `json:"userId"`
	Handle string `json:"handle"`
	Token  string `json:"token"`
}
