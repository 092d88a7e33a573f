package handlers

import (
	"log/slog"
	"sync"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/visioneers/marketplace-api/internal/dto"
	"github.com/visioneers/marketplace-api/internal/services"
)

// AgentWSHandler streams assistant turns over a websocket, one connection per
// chat session. A reconnect for the same session replaces the old connection.
type AgentWSHandler struct {
	agent *services.AgentService

	mu    sync.Mutex
	conns map[string]*websocket.Conn
}

func NewAgentWSHandler(agent *services.AgentService) *AgentWSHandler {
	return &AgentWSHandler{
		agent: agent,
		conns: make(map[string]*websocket.Conn),
	}
}

// Upgrade gates the route to real websocket requests.
func (h *AgentWSHandler) Upgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// Serve is the connection loop. Each inbound envelope is processed as one
// buyer chat turn; processing failures go back as an error envelope and the
// connection stays open.
func (h *AgentWSHandler) Serve(c *websocket.Conn) {
	sessionID := c.Params("session_id")

	h.register(sessionID, c)
	defer h.unregister(sessionID, c)

	for {
		var in dto.WSInbound
		if err := c.ReadJSON(&in); err != nil {
			return
		}
		if in.Message == "" {
			h.send(c, dto.WSOutbound{Type: "error", Message: "message is required"})
			continue
		}

		userID := in.UserID
		if userID == 0 {
			userID = 1
		}

		turn, err := h.agent.ProcessBuyerMessage(in.Message, userID, sessionID)
		if err != nil {
			slog.Error("websocket turn failed", "session_id", sessionID, "error", err)
			h.send(c, dto.WSOutbound{Type: "error", Message: "Failed to process message"})
			continue
		}

		h.send(c, dto.WSOutbound{
			Type:         "agent_response",
			Content:      turn.Content,
			Metadata:     turn.Metadata,
			Intent:       turn.Intent,
			ResponseTime: turn.ResponseTime,
		})
	}
}

func (h *AgentWSHandler) register(sessionID string, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if old, ok := h.conns[sessionID]; ok && old != c {
		old.Close()
	}
	h.conns[sessionID] = c
}

func (h *AgentWSHandler) unregister(sessionID string, c *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.conns[sessionID] == c {
		delete(h.conns, sessionID)
	}
	c.Close()
}

func (h *AgentWSHandler) send(c *websocket.Conn, out dto.WSOutbound) {
	if err := c.WriteJSON(out); err != nil {
		slog.Warn("websocket write failed", "error", err)
	}
}
