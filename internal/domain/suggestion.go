package domain

import "time"

type SuggestionStatus string

const (
	SuggestionPending  SuggestionStatus = "pending"
	SuggestionApproved SuggestionStatus = "approved"
	SuggestionRejected SuggestionStatus = "rejected"
)

// Suggestion is a proposed text edit awaiting moderation. When approved it
// is replayed as an EditEvent credited to the proposer.
type Suggestion struct {
	ID         int64            `json:"id"`
	SongID     int64            `json:"songId"`
	Kind       TextKind         `json:"kind"`
	Body       string           `json:"body"`
	ProposerID int64            `json:"proposerId"`
	Status     SuggestionStatus `json:"status"`
	ReviewerID *int64           `json:"reviewerId,omitempty"`
	CreatedAt  time.Time        `json:"createdAt"`
	UpdatedAt  time.Time        `json:"updatedAt"`
}
