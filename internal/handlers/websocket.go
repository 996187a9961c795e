package handlers

import (
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"tapp-club-backend/internal/services"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// StreamHandler handles live conversation stream subscriptions
type StreamHandler struct {
	hub          *services.ConversationHub
	groupService *services.GroupService
}

// NewStreamHandler creates a new stream handler
func NewStreamHandler(hub *services.ConversationHub, groupService *services.GroupService) *StreamHandler {
	return &StreamHandler{
		hub:          hub,
		groupService: groupService,
	}
}

// Stream handles GET /groups/{id}/ws. The subscriber identifies itself
// with the user_id query parameter and must be a member of the group; the
// connection then receives every message posted to the group until either
// side closes it. Inbound frames are discarded.
func (h *StreamHandler) Stream(w http.ResponseWriter, r *http.Request) {
	groupID, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}
	userID, err := parseID("user_id", r.URL.Query().Get("user_id"))
	if err != nil {
		respondAppError(w, err)
		return
	}

	if err := h.groupService.CheckMember(r.Context(), groupID, userID); err != nil {
		respondAppError(w, err)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Str("group_id", groupID).Msg("Failed to upgrade WebSocket connection")
		return
	}

	h.hub.Register(groupID, conn)
	defer h.hub.Unregister(groupID, conn)

	log.Info().
		Str("group_id", groupID).
		Str("user_id", userID).
		Msg("Conversation stream opened")

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("group_id", groupID).Msg("Conversation stream error")
			}
			break
		}
	}
}
