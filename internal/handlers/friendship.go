package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"tapp-club-backend/internal/services"
)

// FriendshipHandler handles friend-request HTTP requests
type FriendshipHandler struct {
	friendshipService *services.FriendshipService
}

// NewFriendshipHandler creates a new friendship handler
func NewFriendshipHandler(friendshipService *services.FriendshipService) *FriendshipHandler {
	return &FriendshipHandler{
		friendshipService: friendshipService,
	}
}

type sendFriendRequestRequest struct {
	RequesterID string `json:"requester_id"`
	AddresseeID string `json:"addressee_id"`
}

// Send handles POST /friend-requests
func (h *FriendshipHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req sendFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	requesterID, err := parseID("requester_id", req.RequesterID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	addresseeID, err := parseID("addressee_id", req.AddresseeID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	friendship, err := h.friendshipService.SendRequest(ctx, requesterID, addresseeID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("requester_id", requesterID).
		Str("addressee_id", addresseeID).
		Msg("Friend request sent")

	respondJSON(w, http.StatusCreated, friendship)
}

type respondFriendRequestRequest struct {
	ResponderID string `json:"responder_id"`
	Action      string `json:"action"`
}

// Respond handles PATCH /friend-requests/{requester_id}
func (h *FriendshipHandler) Respond(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	requesterID, err := pathID(r, "requester_id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	var req respondFriendRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	responderID, err := parseID("responder_id", req.ResponderID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	if err := h.friendshipService.Respond(ctx, requesterID, responderID, req.Action); err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("requester_id", requesterID).
		Str("responder_id", responderID).
		Str("action", req.Action).
		Msg("Friend request responded")

	respondJSON(w, http.StatusOK, MessageResponse{Message: "friend request " + req.Action})
}
