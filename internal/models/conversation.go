package models

import (
	"time"

	"gorm.io/datatypes"
)

// Message roles.
const (
	RoleMessageUser      = "user"
	RoleMessageAssistant = "assistant"
	RoleMessageSystem    = "system"
)

// Conversation groups the chat turns of one client session. Created lazily on
// the first message for a session and reused while IsActive holds.
type Conversation struct {
	ID        uint              `gorm:"primaryKey" json:"id"`
	UserID    uint              `gorm:"not null;index" json:"user_id"`
	SessionID string            `gorm:"size:100;not null;uniqueIndex" json:"session_id"`
	Context   datatypes.JSONMap `json:"context"`
	Intent    string            `gorm:"size:50" json:"intent"`
	IsActive  bool              `gorm:"default:true" json:"is_active"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Message is one chat turn. Append-only; bulk-deleted when a conversation is
// cleared.
type Message struct {
	ID             uint              `gorm:"primaryKey" json:"id"`
	ConversationID uint              `gorm:"not null;index" json:"conversation_id"`
	Role           string            `gorm:"size:20;not null" json:"role"`
	Content        string            `gorm:"type:text;not null" json:"content"`
	MessageType    string            `gorm:"size:50" json:"message_type"`
	Metadata       datatypes.JSONMap `json:"metadata"`
	ModelUsed      string            `gorm:"size:100" json:"model_used"`
	TokensUsed     int               `json:"tokens_used"`
	ResponseTime   float64           `json:"response_time"`
	CreatedAt      time.Time         `json:"created_at"`
}
