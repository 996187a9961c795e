package services

import (
	"encoding/json"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"tapp-club-backend/internal/models"
)

// StreamEvent is the frame pushed to conversation stream subscribers
type StreamEvent struct {
	Type    string              `json:"type"`
	Message *models.ChatMessage `json:"message,omitempty"`
}

// ConversationHub manages live WebSocket subscriptions to group
// conversations. Subscribers only ever receive frames; writes are
// serialized through the hub lock so a connection never sees interleaved
// frames.
type ConversationHub struct {
	mu   sync.RWMutex
	subs map[string]map[*websocket.Conn]struct{}
}

// NewConversationHub creates a new conversation hub
func NewConversationHub() *ConversationHub {
	return &ConversationHub{
		subs: make(map[string]map[*websocket.Conn]struct{}),
	}
}

// Register subscribes a connection to a group's stream
func (h *ConversationHub) Register(groupID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.subs[groupID] == nil {
		h.subs[groupID] = make(map[*websocket.Conn]struct{})
	}
	h.subs[groupID][conn] = struct{}{}

	log.Info().Str("group_id", groupID).Int("subscribers", len(h.subs[groupID])).Msg("Conversation subscriber registered")
}

// Unregister drops a connection from a group's stream and closes it
func (h *ConversationHub) Unregister(groupID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.subs[groupID][conn]; !exists {
		return
	}
	conn.Close()
	delete(h.subs[groupID], conn)
	if len(h.subs[groupID]) == 0 {
		delete(h.subs, groupID)
	}

	log.Info().Str("group_id", groupID).Msg("Conversation subscriber unregistered")
}

// Subscribers returns the number of live subscribers for a group
func (h *ConversationHub) Subscribers(groupID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[groupID])
}

// BroadcastMessage pushes a message frame to every subscriber of the
// group. Connections that fail the write are dropped.
func (h *ConversationHub) BroadcastMessage(groupID string, msg *models.ChatMessage) {
	data, err := json.Marshal(StreamEvent{Type: "message", Message: msg})
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("Failed to marshal stream event")
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.subs[groupID] {
		if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
			log.Error().Err(err).Str("group_id", groupID).Msg("Failed to push stream event, dropping subscriber")
			conn.Close()
			delete(h.subs[groupID], conn)
		}
	}
	if len(h.subs[groupID]) == 0 {
		delete(h.subs, groupID)
	}
}
