package types

import "time"

type MessageRole string

const (
	RoleUser      MessageRole = "user"
	RoleAssistant MessageRole = "assistant"
	RoleSystem    MessageRole = "system"
)

type ChatMessage struct {
	Role      MessageRole `json:"role"`
	Content   string      `json:"content"`
	Timestamp time.Time   `json:"timestamp"`
}

// SessionStatus is the payload of GET /session/{user_id}/status.
type SessionStatus struct {
	UserID              string    `json:"user_id"`
	IsReadyForNewSearch bool      `json:"is_ready_for_new_search"`
	MessageCount        int       `json:"message_count"`
	LastActivity        time.Time `json:"last_activity"`
}
