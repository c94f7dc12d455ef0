package handlers

import (
	"encoding/json"
	"net/http"

	"hangout-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for MVP
	},
}

// ControlMessage is a client→server message on the realtime channel.
type ControlMessage struct {
	Type   string `json:"type"`
	UserID string `json:"userId,omitempty"`
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	hub      *services.Hub
	verifier services.TokenVerifier
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(hub *services.Hub, verifier services.TokenVerifier) *WebSocketHandler {
	return &WebSocketHandler{
		hub:      hub,
		verifier: verifier,
	}
}

// HandleWebSocket authenticates the handshake, registers the connection as a
// session and runs the control-message read loop until disconnect. A handle
// whose token fails verification is dropped before it reaches the hub.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		respondError(w, "token required", http.StatusUnauthorized)
		return
	}

	userID, err := h.verifier.Verify(token)
	if err != nil {
		respondError(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	sessionID := h.hub.Register(userID, conn)
	defer h.hub.Unregister(sessionID)

	greeting := services.NewEvent(services.EventConnected)
	greeting.Message = "Connected to hangout notifications"
	if err := h.hub.Send(sessionID, greeting); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to send connected greeting")
	}

	log.Info().Str("user_id", userID).Str("session_id", sessionID).Msg("WebSocket connection established")

	for {
		_, messageBytes, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}

		var msg ControlMessage
		if err := json.Unmarshal(messageBytes, &msg); err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to parse WebSocket message")
			h.sendError(sessionID, "Invalid message format")
			continue
		}

		h.handleControl(sessionID, userID, msg)
	}
}

// handleControl processes client control messages. Room membership is
// supplementary to the automatic registration on connect.
func (h *WebSocketHandler) handleControl(sessionID, userID string, msg ControlMessage) {
	switch msg.Type {
	case "join_user_room":
		if msg.UserID == "" {
			h.sendError(sessionID, "userId is required")
			return
		}
		h.hub.Join(sessionID, msg.UserID)
		log.Info().
			Str("session_id", sessionID).
			Str("room", msg.UserID).
			Msg("Session joined room")
	case "leave_user_room":
		if msg.UserID == "" {
			h.sendError(sessionID, "userId is required")
			return
		}
		h.hub.Leave(sessionID, msg.UserID)
		log.Info().
			Str("session_id", sessionID).
			Str("room", msg.UserID).
			Msg("Session left room")
	default:
		log.Warn().Str("user_id", userID).Str("type", msg.Type).Msg("Unknown control message")
		h.sendError(sessionID, "Unknown message type")
	}
}

// sendError sends an error event to a single session
func (h *WebSocketHandler) sendError(sessionID, message string) {
	event := services.NewEvent("error")
	event.Message = message
	if err := h.hub.Send(sessionID, event); err != nil {
		log.Error().Err(err).Str("session_id", sessionID).Msg("Failed to send error event")
	}
}
