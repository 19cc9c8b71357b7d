package models

import "time"

type ChatRole string

const (
	ChatRoleUser ChatRole = "user"
	ChatRoleBot  ChatRole = "bot"
)

// ChatMessage is one persisted turn of a conversation with the assistant.
type ChatMessage struct {
	ID             string            `json:"id"`
	UserID         string            `json:"userId"`
	ConversationID string            `json:"conversationId"`
	Role           ChatRole          `json:"role"`
	Message        string            `json:"message"`
	Metadata       map[string]string `json:"metadata,omitempty"`
	CreatedAt      time.Time         `json:"createdAt"`
}
