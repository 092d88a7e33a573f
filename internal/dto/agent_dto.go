package dto

type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
	UserID    uint   `json:"user_id"`
}

type ChatResponse struct {
	Success      bool                   `json:"success"`
	SessionID    string                 `json:"session_id"`
	Response     string                 `json:"response"`
	Metadata     map[string]interface{} `json:"metadata"`
	Intent       string                 `json:"intent"`
	ResponseTime float64                `json:"response_time"`
}

// WSInbound is the websocket message envelope sent by clients.
type WSInbound struct {
	Message string `json:"message"`
	UserID  uint   `json:"user_id"`
}

// WSOutbound is the websocket envelope sent back; Type is either
// "agent_response" or "error".
type WSOutbound struct {
	Type         string                 `json:"type"`
	Content      string                 `json:"content,omitempty"`
	Message      string                 `json:"message,omitempty"`
	Metadata     map[string]interface{} `json:"metadata,omitempty"`
	Intent       string                 `json:"intent,omitempty"`
	ResponseTime float64                `json:"response_time,omitempty"`
}

type VoiceMessageRequest struct {
	AudioData string `json:"audio_data"` // base64 encoded
	SessionID string `json:"session_id"`
	UserID    uint   `json:"user_id"`
}

type MessageView struct {
	ID        uint                   `json:"id"`
	Role      string                 `json:"role"`
	Content   string                 `json:"content"`
	Metadata  map[string]interface{} `json:"metadata"`
	CreatedAt string                 `json:"created_at"`
}

type ConversationResponse struct {
	SessionID      string        `json:"session_id"`
	ConversationID uint          `json:"conversation_id"`
	Messages       []MessageView `json:"messages"`
}
