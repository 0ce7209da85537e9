package models

import "time"

// VoteType is a reader reaction to an assistant message.
type VoteType string

const (
	VoteLike    VoteType = "like"
	VoteDislike VoteType = "dislike"
)

// Vote is an append-only reaction record for one message.
type Vote struct {
	ID        int64     `json:"id"`
	MessageID int64     `json:"message_id"`
	VoteType  VoteType  `json:"vote_type"`
	CreatedAt time.Time `json:"created_at"`
}
