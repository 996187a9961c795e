package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/rs/zerolog/log"

	"tapp-club-backend/internal/services"
)

// GroupHandler handles group and conversation HTTP requests
type GroupHandler struct {
	groupService *services.GroupService
}

// NewGroupHandler creates a new group handler
func NewGroupHandler(groupService *services.GroupService) *GroupHandler {
	return &GroupHandler{
		groupService: groupService,
	}
}

type createGroupRequest struct {
	CreatorID        string   `json:"creator_id"`
	Name             string   `json:"name"`
	PictureURL       *string  `json:"picture_url"`
	InitialMemberIDs []string `json:"initial_member_ids"`
}

// Create handles POST /groups
func (h *GroupHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createGroupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	creatorID, err := parseID("creator_id", req.CreatorID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	memberIDs, err := parseIDs("initial_member_ids", req.InitialMemberIDs)
	if err != nil {
		respondAppError(w, err)
		return
	}

	group, err := h.groupService.Create(ctx, creatorID, req.Name, req.PictureURL, memberIDs)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("group_id", group.ID).
		Str("creator_id", creatorID).
		Msg("Group created")

	respondJSON(w, http.StatusCreated, group)
}

// AddMembers handles POST /groups/{id}/members
func (h *GroupHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	var req addMembersRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userIDs, err := parseIDs("user_ids", req.UserIDs)
	if err != nil {
		respondAppError(w, err)
		return
	}

	added, err := h.groupService.AddMembers(ctx, id, userIDs)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("group_id", id).
		Int("added_count", added).
		Msg("Group members added")

	respondJSON(w, http.StatusOK, addMembersResponse{
		Message:    fmt.Sprintf("operation complete, %d new member(s) added", added),
		AddedCount: added,
	})
}

// ListForUser handles GET /users/{id}/groups
func (h *GroupHandler) ListForUser(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	previews, err := h.groupService.ListForUser(ctx, id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, previews)
}

type postMessageRequest struct {
	UserID         string `json:"user_id"`
	MessageType    string `json:"message_type"`
	MessageContent string `json:"message_content"`
}

// PostMessage handles POST /groups/{id}/conversations
func (h *GroupHandler) PostMessage(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	var req postMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := parseID("user_id", req.UserID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	msg, err := h.groupService.PostMessage(ctx, id, userID, req.MessageType, req.MessageContent)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, msg)
}

// GetConversation handles GET /groups/{id}/conversations
func (h *GroupHandler) GetConversation(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	messages, err := h.groupService.RecentMessages(ctx, id, limit)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, messages)
}
