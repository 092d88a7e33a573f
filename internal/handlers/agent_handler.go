package handlers

import (
	"encoding/base64"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/visioneers/marketplace-api/internal/dto"
	"github.com/visioneers/marketplace-api/internal/services"
)

// AgentHandler serves the buyer-facing shopping assistant endpoints.
type AgentHandler struct {
	agent *services.AgentService
	media *services.MediaService
}

func NewAgentHandler(agent *services.AgentService, media *services.MediaService) *AgentHandler {
	return &AgentHandler{agent: agent, media: media}
}

func (h *AgentHandler) Chat(c *fiber.Ctx) error {
	var req dto.ChatRequest
	if err := c.BodyParser(&req); err != nil || req.Message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "message is required",
		})
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}
	if req.UserID == 0 {
		req.UserID = 1
	}

	turn, err := h.agent.ProcessBuyerMessage(req.Message, req.UserID, req.SessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process message",
		})
	}

	return c.JSON(dto.ChatResponse{
		Success:      true,
		SessionID:    req.SessionID,
		Response:     turn.Content,
		Metadata:     turn.Metadata,
		Intent:       turn.Intent,
		ResponseTime: turn.ResponseTime,
	})
}

func (h *AgentHandler) GetConversation(c *fiber.Ctx) error {
	sessionID := c.Params("session_id")

	conversation, messages, err := h.agent.GetConversation(sessionID)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Conversation not found",
		})
	}

	views := make([]dto.MessageView, 0, len(messages))
	for _, m := range messages {
		views = append(views, dto.MessageView{
			ID:        m.ID,
			Role:      m.Role,
			Content:   m.Content,
			Metadata:  map[string]interface{}(m.Metadata),
			CreatedAt: m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		})
	}

	return c.JSON(dto.ConversationResponse{
		SessionID:      sessionID,
		ConversationID: conversation.ID,
		Messages:       views,
	})
}

func (h *AgentHandler) ClearConversation(c *fiber.Ctx) error {
	if err := h.agent.ClearConversation(c.Params("session_id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to clear conversation",
		})
	}
	return c.JSON(fiber.Map{"message": "Conversation cleared"})
}

func (h *AgentHandler) AnalyzeMessageIntent(c *fiber.Ctx) error {
	message := c.Query("message")
	if message == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "message is required",
		})
	}

	return c.JSON(fiber.Map{"intent": h.agent.AnalyzeIntent(message)})
}

func (h *AgentHandler) Suggestions(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "query is required",
		})
	}

	products, err := h.agent.Suggestions(query)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to load suggestions",
		})
	}
	if len(products) > 5 {
		products = products[:5]
	}
	return c.JSON(productList(products))
}

// VoiceMessage transcribes buyer audio, runs a chat turn, and synthesizes the
// reply back to audio when TTS is available.
func (h *AgentHandler) VoiceMessage(c *fiber.Ctx) error {
	var req dto.VoiceMessageRequest
	if err := c.BodyParser(&req); err != nil || req.AudioData == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "audio_data is required",
		})
	}

	audio, err := base64.StdEncoding.DecodeString(req.AudioData)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "audio_data must be base64 encoded",
		})
	}

	transcript, err := h.media.SpeechToText(audio)
	if err != nil {
		return c.Status(fiber.StatusBadGateway).JSON(dto.ErrorResponse{
			Error: true, Message: "Transcription failed",
		})
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	userID := req.UserID
	if userID == 0 {
		userID = 1
	}

	turn, err := h.agent.ProcessBuyerMessage(transcript, userID, sessionID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process message",
		})
	}

	resp := fiber.Map{
		"success":       true,
		"session_id":    sessionID,
		"transcription": transcript,
		"response":      turn.Content,
		"metadata":      turn.Metadata,
		"intent":        turn.Intent,
		"response_time": turn.ResponseTime,
	}

	// Reply audio is best effort.
	if speech, err := h.media.TextToSpeech(turn.Content); err == nil {
		resp["audio_response"] = base64.StdEncoding.EncodeToString(speech)
	}

	return c.JSON(resp)
}
