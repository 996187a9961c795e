package services

import (
	"context"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
)

// FriendshipStore is the persistence surface of the friendship state
// machine.
type FriendshipStore interface {
	Create(ctx context.Context, f *models.Friendship) error
	RespondPending(ctx context.Context, userOneID, userTwoID, requesterID, responderID string, status models.FriendshipStatus) error
}

// Notifier delivers best-effort push notifications. Deliveries never
// block or fail the calling operation.
type Notifier interface {
	NotifyUser(userID, title, body string)
	NotifyGroup(groupID, exceptUserID, title, body string)
}

// FriendshipService drives the friend-request lifecycle
type FriendshipService struct {
	store    FriendshipStore
	notifier Notifier
}

// NewFriendshipService creates a new friendship service
func NewFriendshipService(store FriendshipStore, notifier Notifier) *FriendshipService {
	return &FriendshipService{
		store:    store,
		notifier: notifier,
	}
}

// canonicalPair orders two user ids so the smaller comes first. Canonical
// uuid strings compare lexicographically in the same order as the uuid
// values the store compares.
func canonicalPair(a, b string) (string, string) {
	if a > b {
		return b, a
	}
	return a, b
}

// SendRequest records a pending friend request from requester to
// addressee. The pair is stored in canonical order, so a mirrored request
// collides with the original instead of creating a second row.
func (s *FriendshipService) SendRequest(ctx context.Context, requesterID, addresseeID string) (*models.Friendship, error) {
	if requesterID == addresseeID {
		return nil, errs.InvalidArgument("cannot send a friend request to yourself")
	}

	userOneID, userTwoID := canonicalPair(requesterID, addresseeID)
	friendship := &models.Friendship{
		UserOneID:    userOneID,
		UserTwoID:    userTwoID,
		Status:       models.FriendshipPending,
		ActionUserID: requesterID,
	}
	if err := s.store.Create(ctx, friendship); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		s.notifier.NotifyUser(addresseeID, "New friend request", "Someone wants to be your friend")
	}
	return friendship, nil
}

// Respond finalizes a pending request. Only the addressee of a still
// pending request can respond; anything else leaves no matching row and
// comes back as NotFound.
func (s *FriendshipService) Respond(ctx context.Context, requesterID, responderID, action string) error {
	status := models.FriendshipStatus(action)
	if status != models.FriendshipAccepted && status != models.FriendshipDeclined {
		return errs.InvalidArgument(`action must be "accepted" or "declined"`)
	}

	userOneID, userTwoID := canonicalPair(requesterID, responderID)
	return s.store.RespondPending(ctx, userOneID, userTwoID, requesterID, responderID, status)
}
