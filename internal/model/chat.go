package model

import "time"

// ChatMessage is one turn in the conversation with the AI companion.
// IsFromUser distinguishes user-authored messages from companion replies.
// Conversations are ordered by timestamp ascending.
type ChatMessage struct {
	ID         int64     `json:"id"`
	UserID     int64     `json:"userId"`
	Content    string    `json:"content"`
	IsFromUser bool      `json:"isFromUser"`
	Timestamp  time.Time `json:"timestamp"`
}
