package models

import "time"

// Role identifies who authored a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	// RoleSystem only appears on outbound provider requests, never in
	// stored messages.
	RoleSystem Role = "system"
)

// Origin records which completion stage produced an assistant message.
type Origin string

const (
	OriginPrimary Origin = "primary"
	OriginBackup  Origin = "backup"
	OriginOffline Origin = "offline"
)

// Message is a single conversation turn entry. Origin is only set on
// assistant messages.
type Message struct {
	ID             int64     `json:"id"`
	ConversationID string    `json:"conversation_id"`
	Role           Role      `json:"role"`
	Content        string    `json:"content"`
	Origin         Origin    `json:"origin,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}
