package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"tapp-club-backend/internal/services"
)

// PostHandler handles post-related HTTP requests
type PostHandler struct {
	postService *services.PostService
}

// NewPostHandler creates a new post handler
func NewPostHandler(postService *services.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
	}
}

type createPostRequest struct {
	EventID     string  `json:"event_id"`
	PosterID    string  `json:"poster_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
}

// Create handles POST /posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	eventID, err := parseID("event_id", req.EventID)
	if err != nil {
		respondAppError(w, err)
		return
	}
	posterID, err := parseID("poster_id", req.PosterID)
	if err != nil {
		respondAppError(w, err)
		return
	}

	post, err := h.postService.Create(ctx, eventID, posterID, req.Title, req.Description)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("post_id", post.ID).
		Str("event_id", eventID).
		Str("poster_id", posterID).
		Msg("Post created")

	respondJSON(w, http.StatusCreated, post)
}

// Get handles GET /posts/{id}
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := pathID(r, "id")
	if err != nil {
		respondAppError(w, err)
		return
	}

	detail, err := h.postService.Get(ctx, id)
	if err != nil {
		respondAppError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, detail)
}

// AddPicture handles POST /posts/{id}/pictures
func (h *PostHandler) AddPicture(w http.ResponseWriter, r *http.Request) {
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

	pic, err := h.postService.AddPicture(ctx, id, uploaderID, req.PictureURL)
	if err != nil {
		respondAppError(w, err)
		return
	}

	log.Info().
		Str("post_id", id).
		Str("picture_id", pic.ID).
		Msg("Post picture added")

	respondJSON(w, http.StatusCreated, pic)
}
