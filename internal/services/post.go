package services

import (
	"context"

	"github.com/google/uuid"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
)

// PostStore is the persistence surface of the post service.
type PostStore interface {
	Create(ctx context.Context, post *models.Post) error
	GetDetail(ctx context.Context, id string) (*models.PostDetail, error)
	AddPicture(ctx context.Context, pic *models.PostPicture, uploaderID string) error
}

// EventMembership is the slice of the event store used to authorize
// event-scoped writes.
type EventMembership interface {
	Exists(ctx context.Context, id string) (bool, error)
	IsMember(ctx context.Context, eventID, userID string) (bool, error)
}

// PostService handles posts and their picture galleries
type PostService struct {
	store  PostStore
	events EventMembership
}

// NewPostService creates a new post service
func NewPostService(store PostStore, events EventMembership) *PostService {
	return &PostService{
		store:  store,
		events: events,
	}
}

// Create creates a post on an event. The event must exist and the poster
// must be one of its members; the checks run in that order so a missing
// event never reads as a membership failure.
func (s *PostService) Create(ctx context.Context, eventID, posterID, title string, description *string) (*models.Post, error) {
	if title == "" {
		return nil, errs.InvalidArgument("post title is required")
	}

	exists, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NotFound("event not found")
	}
	member, err := s.events.IsMember(ctx, eventID, posterID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errs.Forbidden("only event members can create posts")
	}

	post := &models.Post{
		ID:          uuid.New().String(),
		EventID:     eventID,
		PosterID:    posterID,
		Title:       title,
		Description: description,
	}
	if err := s.store.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// Get returns a post with its poster and pictures
func (s *PostService) Get(ctx context.Context, id string) (*models.PostDetail, error) {
	return s.store.GetDetail(ctx, id)
}

// AddPicture adds a picture to a post's gallery. Only the original poster
// may extend the gallery.
func (s *PostService) AddPicture(ctx context.Context, postID, uploaderID, pictureURL string) (*models.PostPicture, error) {
	if pictureURL == "" {
		return nil, errs.InvalidArgument("picture url is required")
	}

	pic := &models.PostPicture{
		ID:         uuid.New().String(),
		PostID:     postID,
		PictureURL: pictureURL,
	}
	if err := s.store.AddPicture(ctx, pic, uploaderID); err != nil {
		return nil, err
	}
	return pic, nil
}
