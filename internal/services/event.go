package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
)

// EventStore is the persistence surface of the event service.
type EventStore interface {
	CreateWithCreator(ctx context.Context, event *models.Event) error
	GetByID(ctx context.Context, id string) (*models.Event, error)
	Update(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error)
	Exists(ctx context.Context, id string) (bool, error)
	AddMembers(ctx context.Context, eventID string, userIDs []string) (int, error)
	IsMember(ctx context.Context, eventID, userID string) (bool, error)
	Tap(ctx context.Context, eventID, tapperID, tappedID string) error
	Attendees(ctx context.Context, eventID string) ([]models.UserSummary, error)
	Pictures(ctx context.Context, eventID string) ([]models.EventPictureDetail, error)
	AddPicture(ctx context.Context, pic *models.EventPicture) error
}

// EventService handles events, their rosters, galleries and taps
type EventService struct {
	store EventStore
}

// NewEventService creates a new event service
func NewEventService(store EventStore) *EventService {
	return &EventService{store: store}
}

// dedupe returns ids with duplicates removed, preserving first-seen order.
func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// Create creates an event; the creator is always enrolled as its first
// member.
func (s *EventService) Create(ctx context.Context, creatorID, name, description, location string, startsAt time.Time) (*models.Event, error) {
	if name == "" {
		return nil, errs.InvalidArgument("event name is required")
	}
	if startsAt.IsZero() {
		return nil, errs.InvalidArgument("event start time is required")
	}

	event := &models.Event{
		ID:          uuid.New().String(),
		Name:        name,
		Description: description,
		Location:    location,
		StartsAt:    startsAt,
		CreatedBy:   creatorID,
	}
	if err := s.store.CreateWithCreator(ctx, event); err != nil {
		return nil, err
	}
	return event, nil
}

// Get assembles the event detail view: core fields, the attendee roster
// and the ordered picture gallery.
func (s *EventService) Get(ctx context.Context, id string) (*models.EventDetail, error) {
	event, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	attendees, err := s.store.Attendees(ctx, id)
	if err != nil {
		return nil, err
	}
	pictures, err := s.store.Pictures(ctx, id)
	if err != nil {
		return nil, err
	}
	if attendees == nil {
		attendees = []models.UserSummary{}
	}
	if pictures == nil {
		pictures = []models.EventPictureDetail{}
	}

	return &models.EventDetail{
		Event:     *event,
		Attendees: attendees,
		Pictures:  pictures,
	}, nil
}

// Update applies a partial event update
func (s *EventService) Update(ctx context.Context, id string, upd models.EventUpdate) (*models.Event, error) {
	if upd.IsEmpty() {
		return nil, errs.InvalidArgument("no update data provided")
	}
	return s.store.Update(ctx, id, upd)
}

// AddMembers enrolls users into an event. Duplicates in the request and
// users that already belong are skipped; the returned count is how many
// memberships were actually created.
func (s *EventService) AddMembers(ctx context.Context, eventID string, userIDs []string) (int, error) {
	if len(userIDs) == 0 {
		return 0, errs.InvalidArgument("no user ids provided")
	}
	return s.store.AddMembers(ctx, eventID, dedupe(userIDs))
}

// Tap records a mutual tap between two event members. Both membership
// rows flip together or not at all.
func (s *EventService) Tap(ctx context.Context, eventID, tapperID, tappedID string) error {
	if tapperID == tappedID {
		return errs.InvalidArgument("cannot tap yourself")
	}
	return s.store.Tap(ctx, eventID, tapperID, tappedID)
}

// AddPicture adds a picture to an event's gallery. Missing events are
// reported before membership so callers can tell the two apart.
func (s *EventService) AddPicture(ctx context.Context, eventID, uploaderID, pictureURL string) (*models.EventPicture, error) {
	if pictureURL == "" {
		return nil, errs.InvalidArgument("picture url is required")
	}

	exists, err := s.store.Exists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NotFound("event not found")
	}
	member, err := s.store.IsMember(ctx, eventID, uploaderID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errs.Forbidden("only event members can add pictures")
	}

	pic := &models.EventPicture{
		ID:         uuid.New().String(),
		EventID:    eventID,
		UploaderID: uploaderID,
		PictureURL: pictureURL,
	}
	if err := s.store.AddPicture(ctx, pic); err != nil {
		return nil, err
	}
	return pic, nil
}
