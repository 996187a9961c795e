package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
)

const (
	usernameSuffixLen = 12
	latestEventsLimit = 12
)

// UserStore is the persistence surface the user service depends on.
type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
	Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error)
	UpdatePushToken(ctx context.Context, userID string, pushToken *string) error
}

// FriendCounter exposes the accepted-friend count used by profiles.
type FriendCounter interface {
	CountAccepted(ctx context.Context, userID string) (int, error)
}

// EventAggregator exposes the per-user event aggregates used by profiles.
type EventAggregator interface {
	CountForUser(ctx context.Context, userID string) (int, error)
	LatestForUser(ctx context.Context, userID string, limit int) ([]models.EventPreview, error)
}

// UserService handles identity resolution and profile reads
type UserService struct {
	users   UserStore
	friends FriendCounter
	events  EventAggregator
}

// NewUserService creates a new user service
func NewUserService(users UserStore, friends FriendCounter, events EventAggregator) *UserService {
	return &UserService{
		users:   users,
		friends: friends,
		events:  events,
	}
}

// Resolve returns the internal id for an external auth subject, creating
// the user on first sight with a generated placeholder username. A
// concurrent first-sight race surfaces as Conflict and can be retried as
// a plain lookup.
func (s *UserService) Resolve(ctx context.Context, subject string) (string, error) {
	if subject == "" {
		return "", errs.InvalidArgument("auth subject is required")
	}

	user, err := s.users.GetBySubject(ctx, subject)
	if err == nil {
		return user.ID, nil
	}
	if errs.CodeOf(err) != errs.CodeNotFound {
		return "", err
	}

	id := uuid.New().String()
	newUser := &models.User{
		ID:          id,
		Username:    generateUsername(id),
		AuthSubject: subject,
	}
	if err := s.users.Create(ctx, newUser); err != nil {
		return "", err
	}
	return id, nil
}

// generateUsername derives a placeholder username from the user's own id
func generateUsername(id string) string {
	hex := strings.ReplaceAll(id, "-", "")
	return "user_" + hex[:usernameSuffixLen]
}

// GetBySubject retrieves the full user record for an auth subject
func (s *UserService) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	if subject == "" {
		return nil, errs.InvalidArgument("auth subject is required")
	}
	return s.users.GetBySubject(ctx, subject)
}

// Update applies a partial profile update
func (s *UserService) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	if upd.IsEmpty() {
		return nil, errs.InvalidArgument("no update data provided")
	}
	return s.users.Update(ctx, id, upd)
}

// UpdatePushToken registers or clears the user's device push token
func (s *UserService) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	return s.users.UpdatePushToken(ctx, userID, pushToken)
}

// Profile assembles the aggregate profile view: identity fields, friend
// and event counts and the user's most recent events. A user with no
// friends or events still resolves with zero counts and empty lists.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.Profile, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	friendCount, err := s.friends.CountAccepted(ctx, userID)
	if err != nil {
		return nil, err
	}
	eventCount, err := s.events.CountForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	latest, err := s.events.LatestForUser(ctx, userID, latestEventsLimit)
	if err != nil {
		return nil, err
	}
	if latest == nil {
		latest = []models.EventPreview{}
	}

	return &models.Profile{
		UserID:       user.ID,
		Username:     user.Username,
		PFP:          user.PFP,
		Description:  user.Description,
		FriendCount:  friendCount,
		EventCount:   eventCount,
		LatestEvents: latest,
	}, nil
}
