package services

import (
	"encoding/json"
	"sync"
	"time"

	"hangout-backend/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// Realtime event types pushed to clients.
const (
	EventConnected       = "connected"
	EventHangoutRequest  = "hangout_request"
	EventHangoutResponse = "hangout_response"
	EventLocationUpdate  = "location_update"
)

// Event is a realtime notification payload. Events are transient: built,
// delivered to whatever sessions are live, and discarded. The authoritative
// state lives in the request store and can be re-fetched on reconnect.
type Event struct {
	Type        string              `json:"type"`
	RequestID   string              `json:"requestId,omitempty"`
	FromUser    *models.DisplayInfo `json:"fromUser,omitempty"`
	Status      string              `json:"status,omitempty"`
	Message     string              `json:"message,omitempty"`
	NearbyUsers []models.NearbyUser `json:"nearbyUsers,omitempty"`
	Timestamp   string              `json:"timestamp"`
}

// NewEvent returns an Event of the given type stamped with the current time.
func NewEvent(eventType string) Event {
	return Event{Type: eventType, Timestamp: time.Now().UTC().Format(time.RFC3339)}
}

// Conn is the subset of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// session is one live connection. gorilla/websocket allows a single
// concurrent writer per connection, hence the write mutex.
type session struct {
	id     string
	userID string
	conn   Conn
	mu     sync.Mutex
}

func (s *session) write(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// room is the set of sessions subscribed to one user's events. Mutating or
// fanning out to a room takes only the room lock, so unrelated users never
// serialize behind each other.
type room struct {
	mu       sync.Mutex
	sessions map[string]*session
}

// Hub routes notification events to the live sessions of their target user.
// A user may hold any number of concurrent sessions (multi-device); every
// one of them receives published events.
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]*room
	// index tracks each session and the rooms it belongs to.
	index map[string]*sessionEntry
}

type sessionEntry struct {
	session *session
	rooms   map[string]bool
}

// NewHub creates a new notification hub
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[string]*room),
		index: make(map[string]*sessionEntry),
	}
}

// Register adds a connection as a new session for an authenticated user and
// returns the session id. The caller must have verified the user's identity
// before calling. The session automatically joins its own user's room.
func (h *Hub) Register(userID string, conn Conn) string {
	s := &session{id: uuid.New().String(), userID: userID, conn: conn}

	h.mu.Lock()
	h.index[s.id] = &sessionEntry{session: s, rooms: map[string]bool{userID: true}}
	rm := h.room(userID)
	h.mu.Unlock()

	rm.mu.Lock()
	rm.sessions[s.id] = s
	rm.mu.Unlock()

	log.Info().Str("user_id", userID).Str("session_id", s.id).Msg("Session registered")
	return s.id
}

// Unregister removes a session from every room it joined and closes its
// connection. Unregistering an unknown or already-removed session is a no-op.
func (h *Hub) Unregister(sessionID string) {
	h.mu.Lock()
	entry, ok := h.index[sessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(h.index, sessionID)

	rooms := make([]*room, 0, len(entry.rooms))
	for userID := range entry.rooms {
		if rm, ok := h.rooms[userID]; ok {
			rooms = append(rooms, rm)
		}
	}
	h.mu.Unlock()

	for _, rm := range rooms {
		rm.mu.Lock()
		delete(rm.sessions, sessionID)
		rm.mu.Unlock()
	}

	entry.session.conn.Close()
	log.Info().
		Str("user_id", entry.session.userID).
		Str("session_id", sessionID).
		Msg("Session unregistered")
}

// Join subscribes a session to another user's room.
func (h *Hub) Join(sessionID, userID string) {
	h.mu.Lock()
	entry, ok := h.index[sessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	entry.rooms[userID] = true
	rm := h.room(userID)
	h.mu.Unlock()

	rm.mu.Lock()
	rm.sessions[sessionID] = entry.session
	rm.mu.Unlock()
}

// Leave removes a session from a user's room.
func (h *Hub) Leave(sessionID, userID string) {
	h.mu.Lock()
	entry, ok := h.index[sessionID]
	if !ok {
		h.mu.Unlock()
		return
	}
	delete(entry.rooms, userID)
	rm := h.rooms[userID]
	h.mu.Unlock()

	if rm == nil {
		return
	}
	rm.mu.Lock()
	delete(rm.sessions, sessionID)
	rm.mu.Unlock()
}

// Publish fans an event out to every session in the target user's room and
// returns the delivery count. Delivery is best-effort and at-most-once: with
// no live sessions the event is dropped and 0 returned, nothing is queued or
// retried. A session whose write fails is discarded.
func (h *Hub) Publish(targetUserID string, event Event) int {
	data, err := json.Marshal(event)
	if err != nil {
		log.Error().Err(err).Str("type", event.Type).Msg("Failed to marshal event")
		return 0
	}

	h.mu.RLock()
	rm := h.rooms[targetUserID]
	h.mu.RUnlock()
	if rm == nil {
		return 0
	}

	var failed []string
	delivered := 0

	rm.mu.Lock()
	for id, s := range rm.sessions {
		if err := s.write(data); err != nil {
			log.Warn().
				Err(err).
				Str("user_id", targetUserID).
				Str("session_id", id).
				Msg("Failed to write event, dropping session")
			failed = append(failed, id)
			continue
		}
		delivered++
	}
	rm.mu.Unlock()

	for _, id := range failed {
		h.Unregister(id)
	}

	return delivered
}

// Send writes an event to a single session.
func (h *Hub) Send(sessionID string, event Event) error {
	h.mu.RLock()
	entry, ok := h.index[sessionID]
	h.mu.RUnlock()
	if !ok {
		return nil
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	return entry.session.write(data)
}

// IsOnline reports whether a user has at least one live session.
func (h *Hub) IsOnline(userID string) bool {
	h.mu.RLock()
	rm := h.rooms[userID]
	h.mu.RUnlock()
	if rm == nil {
		return false
	}
	rm.mu.Lock()
	defer rm.mu.Unlock()
	return len(rm.sessions) > 0
}

// room returns the room for a user, creating it if needed. Callers must hold
// h.mu.
func (h *Hub) room(userID string) *room {
	rm, ok := h.rooms[userID]
	if !ok {
		rm = &room{sessions: make(map[string]*session)}
		h.rooms[userID] = rm
	}
	return rm
}
