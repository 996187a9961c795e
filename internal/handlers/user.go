package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"tapp-club-backend/internal/models"
	"tapp-club-backend/internal/services"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
	}
}

type resolveUserRequest struct {
	AuthSubject string `json:"auth_subject"`
}

type resolveUserResponse struct {
	UserID string `json:"user_id"`
}

// Resolve handles POST /users
func (h *UserHandler) Resolve(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req resolveUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	userID, err := h.userService.Resolve(ctx, req.AuthSubject)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, resolveUserResponse{UserID: userID})
}

// GetBySubject handles GET /users/by-sub/{sub}
func (h *UserHandler) GetBySubject(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	user, err := h.userService.GetBySubject(ctx, chi.URLParam(r, "sub"))
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, user)
}

// Update handles PATCH /users/{id}
func (h *UserHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	var upd models.UserUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	user, err := h.userService.Update(ctx, id, upd)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().Str("user_id", id).Msg("User profile updated")

	respondJSON(w, http.StatusOK, user)
}

type pushTokenRequest struct {
	PushToken *string `json:"push_token"`
}

// UpdatePushToken handles PUT /users/{id}/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	var req pushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.userService.UpdatePushToken(ctx, id, req.PushToken); err != nil {
		respondAppError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Profile handles GET /users/{id}/profile
func (h *UserHandler) Profile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	profile, err := h.userService.Profile(ctx, id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, profile)
}
