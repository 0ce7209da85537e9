package models

import (
	"strings"
	"time"
)

const (
	// MaxTitleLen bounds stored conversation titles.
	MaxTitleLen = 100
	// DerivedTitleLen bounds titles derived from the first user message.
	DerivedTitleLen = 50

	DefaultTitle = "محادثة جديدة"
)

// Conversation groups an ordered sequence of messages.
type Conversation struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ConversationSummary is the list-view projection of a conversation.
type ConversationSummary struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DeriveTitle builds a conversation title from the first user message:
// everything up to the first line break, truncated to DerivedTitleLen runes.
func DeriveTitle(firstUserMessage string) string {
	title := firstUserMessage
	if idx := strings.IndexByte(title, '\n'); idx >= 0 {
		title = title[:idx]
	}
	title = strings.TrimSpace(title)
	if runes := []rune(title); len(runes) > DerivedTitleLen {
		title = string(runes[:DerivedTitleLen])
	}
	if title == "" {
		return DefaultTitle
	}
	return title
}
