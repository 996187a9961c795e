package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"tapp-club-backend/internal/models"
	"tapp-club-backend/internal/services"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService  *services.EventService
	uploadService *services.UploadService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *services.EventService, uploadService *services.UploadService) *EventHandler {
	return &EventHandler{
		eventService:  eventService,
		uploadService: uploadService,
	}
}

type createEventRequest struct {
	CreatorID   string    `json:"creator_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"starts_at"`
}

// Create handles POST /events
func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createEventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	creatorID, err := parseID("creator_id", req.CreatorID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	event, err := h.eventService.Create(ctx, creatorID, req.Name, req.Description, req.Location, req.StartsAt)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("event_id", event.ID).
		Str("creator_id", creatorID).
		Msg("Event created")

	respondJSON(w, http.StatusCreated, event)
}

// Get handles GET /events/{id}
func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	detail, err := h.eventService.Get(ctx, id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// Update handles PATCH /events/{id}
func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	var upd models.EventUpdate
	if err := json.NewDecoder(r.Body).Decode(&upd); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.eventService.Update(ctx, id, upd)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().Str("event_id", id).Msg("Event updated")

	respondJSON(w, http.StatusOK, event)
}

type addMembersRequest struct {
	UserIDs []string `json:"user_ids"`
}

type addMembersResponse struct {
	Message    string `json:"message"`
	AddedCount int    `json:"added_count"`
}

// AddMembers handles POST /events/{id}/members
func (h *EventHandler) AddMembers(w http.ResponseWriter, r *http.Request) {
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

	added, err := h.eventService.AddMembers(ctx, id, userIDs)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("event_id", id).
		Int("added_count", added).
		Msg("Event members added")

	respondJSON(w, http.StatusOK, addMembersResponse{
		Message:    fmt.Sprintf("operation complete, %d new member(s) added", added),
		AddedCount: added,
	})
}

type addPictureRequest struct {
	UploaderID string `json:"uploader_id"`
	PictureURL string `json:"picture_url"`
}

// AddPicture handles POST /events/{id}/pictures
func (h *EventHandler) AddPicture(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	var req addPictureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	uploaderID, err := parseID("uploader_id", req.UploaderID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	pic, err := h.eventService.AddPicture(ctx, id, uploaderID, req.PictureURL)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("event_id", id).
		Str("picture_id", pic.ID).
		Msg("Event picture added")

	respondJSON(w, http.StatusCreated, pic)
}

type uploadURLRequest struct {
	UploaderID  string `json:"uploader_id"`
	ContentType string `json:"content_type"`
}

// UploadURL handles POST /events/{id}/pictures/upload-url
func (h *EventHandler) UploadURL(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	var req uploadURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	uploaderID, err := parseID("uploader_id", req.UploaderID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	target, err := h.uploadService.EventPictureUploadURL(ctx, id, uploaderID, req.ContentType)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, target)
}

type tapRequest struct {
	TapperID string `json:"tapper_id"`
	TappedID string `json:"tapped_id"`
}

type tapResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Tap handles POST /events/{id}/tap
func (h *EventHandler) Tap(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	var req tapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	tapperID, err := parseID("tapper_id", req.TapperID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	tappedID, err := parseID("tapped_id", req.TappedID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	if err := h.eventService.Tap(ctx, id, tapperID, tappedID); err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("event_id", id).
		Str("tapper_id", tapperID).
		Str("tapped_id", tappedID).
		Msg("Tap recorded")

	respondJSON(w, http.StatusOK, tapResponse{
		Status:  "tapped",
		Message: "tap recorded for both users",
	})
}
