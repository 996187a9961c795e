package services

import (
	"context"
	"time"

	"github.com/google/uuid"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
)

const (
	defaultMessageLimit = 20
	maxMessageLimit     = 100
)

// GroupStore is the persistence surface of the group service.
type GroupStore interface {
	CreateWithMembers(ctx context.Context, group *models.Group, memberIDs []string) error
	AddMembers(ctx context.Context, groupID string, userIDs []string) (int, error)
	Exists(ctx context.Context, id string) (bool, error)
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	ListForUser(ctx context.Context, userID string) ([]models.GroupPreview, error)
}

// ConversationStore is the persistence surface of the message log.
type ConversationStore interface {
	Append(ctx context.Context, msg *models.ChatMessage) error
	Recent(ctx context.Context, groupID string, limit int) ([]models.ChatMessage, error)
}

// Broadcaster fans a stored message out to live stream subscribers.
type Broadcaster interface {
	BroadcastMessage(groupID string, msg *models.ChatMessage)
}

// GroupService handles groups, their rosters and the conversation log
type GroupService struct {
	store    GroupStore
	convs    ConversationStore
	hub      Broadcaster
	notifier Notifier
}

// NewGroupService creates a new group service
func NewGroupService(store GroupStore, convs ConversationStore, hub Broadcaster, notifier Notifier) *GroupService {
	return &GroupService{
		store:    store,
		convs:    convs,
		hub:      hub,
		notifier: notifier,
	}
}

// Create creates a group whose member set is the union of the initial
// members and the creator, so the creator always belongs regardless of
// the requested list.
func (s *GroupService) Create(ctx context.Context, creatorID, name string, pictureURL *string, initialMemberIDs []string) (*models.Group, error) {
	if name == "" {
		return nil, errs.InvalidArgument("group name is required")
	}

	members := make([]string, 0, len(initialMemberIDs)+1)
	members = append(members, initialMemberIDs...)
	members = append(members, creatorID)
	members = dedupe(members)

	group := &models.Group{
		ID:         uuid.New().String(),
		Name:       name,
		PictureURL: pictureURL,
	}
	if err := s.store.CreateWithMembers(ctx, group, members); err != nil {
		return nil, err
	}
	return group, nil
}

// AddMembers enrolls users into a group, skipping duplicates and existing
// members, and returns the number of memberships actually created.
func (s *GroupService) AddMembers(ctx context.Context, groupID string, userIDs []string) (int, error) {
	if len(userIDs) == 0 {
		return 0, errs.InvalidArgument("no user ids provided")
	}
	return s.store.AddMembers(ctx, groupID, dedupe(userIDs))
}

// ListForUser returns the user's groups with their latest messages, most
// recently active first. A user with no groups gets an empty list.
func (s *GroupService) ListForUser(ctx context.Context, userID string) ([]models.GroupPreview, error) {
	previews, err := s.store.ListForUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if previews == nil {
		previews = []models.GroupPreview{}
	}
	return previews, nil
}

// CheckMember verifies that the group exists and that the user belongs to
// it, mapping the two failures to NotFound and Forbidden respectively.
func (s *GroupService) CheckMember(ctx context.Context, groupID, userID string) error {
	exists, err := s.store.Exists(ctx, groupID)
	if err != nil {
		return err
	}
	if !exists {
		return errs.NotFound("group not found")
	}
	member, err := s.store.IsMember(ctx, groupID, userID)
	if err != nil {
		return err
	}
	if !member {
		return errs.Forbidden("user is not a member of this group")
	}
	return nil
}

// PostMessage appends a message to the group's log, then fans it out to
// live subscribers and pushes a notification to the other members. The
// fan-out is best effort; only the append can fail the call.
func (s *GroupService) PostMessage(ctx context.Context, groupID, posterID, messageType, content string) (*models.ChatMessage, error) {
	if content == "" {
		return nil, errs.InvalidArgument("message content is required")
	}
	if messageType == "" {
		messageType = "text"
	}

	msg := &models.ChatMessage{
		ID:             uuid.New().String(),
		GroupID:        groupID,
		PosterID:       posterID,
		MessageType:    messageType,
		MessageContent: content,
		SentAt:         time.Now().UTC(),
	}
	if err := s.convs.Append(ctx, msg); err != nil {
		return nil, err
	}

	if s.hub != nil {
		s.hub.BroadcastMessage(groupID, msg)
	}
	if s.notifier != nil {
		s.notifier.NotifyGroup(groupID, posterID, msg.PosterName, content)
	}
	return msg, nil
}

// RecentMessages returns the newest messages of a group, newest first.
// Non-positive limits fall back to the default and oversized limits are
// clamped.
func (s *GroupService) RecentMessages(ctx context.Context, groupID string, limit int) ([]models.ChatMessage, error) {
	if limit <= 0 {
		limit = defaultMessageLimit
	}
	if limit > maxMessageLimit {
		limit = maxMessageLimit
	}

	messages, err := s.convs.Recent(ctx, groupID, limit)
	if err != nil {
		return nil, err
	}
	if messages == nil {
		messages = []models.ChatMessage{}
	}
	return messages, nil
}
