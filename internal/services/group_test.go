package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
)

type fakeGroupStore struct {
	groups      map[string]*models.Group
	members     map[string]map[string]struct{}
	previews    []models.GroupPreview
	createdWith [][]string
}

func newFakeGroupStore() *fakeGroupStore {
	return &fakeGroupStore{
		groups:  make(map[string]*models.Group),
		members: make(map[string]map[string]struct{}),
	}
}

func (f *fakeGroupStore) CreateWithMembers(ctx context.Context, group *models.Group, memberIDs []string) error {
	group.CreatedAt = time.Now()
	f.groups[group.ID] = group
	roster := make(map[string]struct{}, len(memberIDs))
	for _, id := range memberIDs {
		roster[id] = struct{}{}
	}
	f.members[group.ID] = roster
	f.createdWith = append(f.createdWith, memberIDs)
	return nil
}

func (f *fakeGroupStore) AddMembers(ctx context.Context, groupID string, userIDs []string) (int, error) {
	roster, ok := f.members[groupID]
	if !ok {
		return 0, errs.NotFound("group or one or more users not found")
	}
	added := 0
	for _, id := range userIDs {
		if _, exists := roster[id]; !exists {
			roster[id] = struct{}{}
			added++
		}
	}
	return added, nil
}

func (f *fakeGroupStore) Exists(ctx context.Context, id string) (bool, error) {
	_, ok := f.groups[id]
	return ok, nil
}

func (f *fakeGroupStore) IsMember(ctx context.Context, groupID, userID string) (bool, error) {
	_, ok := f.members[groupID][userID]
	return ok, nil
}

func (f *fakeGroupStore) ListForUser(ctx context.Context, userID string) ([]models.GroupPreview, error) {
	return f.previews, nil
}

// fakeConversationStore fills PosterName on append the way the real store
// does with its username lookup.
type fakeConversationStore struct {
	names     map[string]string
	messages  []models.ChatMessage
	appendErr error

	recentLimits []int
}

func (f *fakeConversationStore) Append(ctx context.Context, msg *models.ChatMessage) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	name, ok := f.names[msg.PosterID]
	if !ok {
		return errs.NotFound("user not found")
	}
	msg.PosterName = name
	f.messages = append(f.messages, *msg)
	return nil
}

func (f *fakeConversationStore) Recent(ctx context.Context, groupID string, limit int) ([]models.ChatMessage, error) {
	f.recentLimits = append(f.recentLimits, limit)
	return f.messages, nil
}

type fakeBroadcaster struct {
	groupIDs []string
	messages []*models.ChatMessage
}

func (f *fakeBroadcaster) BroadcastMessage(groupID string, msg *models.ChatMessage) {
	f.groupIDs = append(f.groupIDs, groupID)
	f.messages = append(f.messages, msg)
}

func newGroupService(store *fakeGroupStore, convs *fakeConversationStore, hub *fakeBroadcaster, notifier *fakeNotifier) *GroupService {
	return NewGroupService(store, convs, hub, notifier)
}

func TestGroupCreate_CreatorAlwaysMember(t *testing.T) {
	store := newFakeGroupStore()
	svc := newGroupService(store, &fakeConversationStore{}, &fakeBroadcaster{}, &fakeNotifier{})

	group, err := svc.Create(context.Background(), userLow, "hiking club", nil, []string{userHigh})
	require.NoError(t, err)

	require.Len(t, store.createdWith, 1)
	assert.Equal(t, []string{userHigh, userLow}, store.createdWith[0])
	_, creatorIn := store.members[group.ID][userLow]
	assert.True(t, creatorIn)
}

func TestGroupCreate_DeduplicatesMembers(t *testing.T) {
	store := newFakeGroupStore()
	svc := newGroupService(store, &fakeConversationStore{}, &fakeBroadcaster{}, &fakeNotifier{})

	_, err := svc.Create(context.Background(), userLow, "hiking club", nil, []string{userHigh, userHigh, userLow})
	require.NoError(t, err)

	require.Len(t, store.createdWith, 1)
	assert.Equal(t, []string{userHigh, userLow}, store.createdWith[0])
}

func TestGroupCreate_RequiresName(t *testing.T) {
	svc := newGroupService(newFakeGroupStore(), &fakeConversationStore{}, &fakeBroadcaster{}, &fakeNotifier{})

	_, err := svc.Create(context.Background(), userLow, "", nil, nil)
	assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))
}

func TestGroupAddMembers_EmptyList(t *testing.T) {
	svc := newGroupService(newFakeGroupStore(), &fakeConversationStore{}, &fakeBroadcaster{}, &fakeNotifier{})

	_, err := svc.AddMembers(context.Background(), "any", nil)
	assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))
}

func TestGroupAddMembers_SkipsExisting(t *testing.T) {
	store := newFakeGroupStore()
	svc := newGroupService(store, &fakeConversationStore{}, &fakeBroadcaster{}, &fakeNotifier{})
	group, err := svc.Create(context.Background(), userLow, "hiking club", nil, nil)
	require.NoError(t, err)

	added, err := svc.AddMembers(context.Background(), group.ID, []string{userLow, userHigh, userHigh})
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestPostMessage_AppendsAndFansOut(t *testing.T) {
	store := newFakeGroupStore()
	convs := &fakeConversationStore{names: map[string]string{userLow: "alice"}}
	hub := &fakeBroadcaster{}
	notifier := &fakeNotifier{}
	svc := newGroupService(store, convs, hub, notifier)
	group, err := svc.Create(context.Background(), userLow, "hiking club", nil, nil)
	require.NoError(t, err)

	msg, err := svc.PostMessage(context.Background(), group.ID, userLow, "text", "anyone up for saturday?")
	require.NoError(t, err)

	assert.Equal(t, "alice", msg.PosterName)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.SentAt.IsZero())
	require.Len(t, convs.messages, 1)

	require.Len(t, hub.messages, 1)
	assert.Equal(t, group.ID, hub.groupIDs[0])
	assert.Same(t, msg, hub.messages[0])

	require.Len(t, notifier.groupNotifies, 1)
	assert.Equal(t, group.ID, notifier.groupNotifies[0])
	assert.Equal(t, userLow, notifier.groupExcepts[0], "the poster must not be notified")
}

func TestPostMessage_RequiresContent(t *testing.T) {
	svc := newGroupService(newFakeGroupStore(), &fakeConversationStore{}, &fakeBroadcaster{}, &fakeNotifier{})

	_, err := svc.PostMessage(context.Background(), "any", userLow, "text", "")
	assert.Equal(t, errs.CodeInvalidArgument, errs.CodeOf(err))
}

func TestPostMessage_DefaultsTypeToText(t *testing.T) {
	convs := &fakeConversationStore{names: map[string]string{userLow: "alice"}}
	svc := newGroupService(newFakeGroupStore(), convs, &fakeBroadcaster{}, &fakeNotifier{})

	msg, err := svc.PostMessage(context.Background(), "g1", userLow, "", "hello")
	require.NoError(t, err)
	assert.Equal(t, "text", msg.MessageType)

	msg, err = svc.PostMessage(context.Background(), "g1", userLow, "image", "https://cdn/pic.jpg")
	require.NoError(t, err)
	assert.Equal(t, "image", msg.MessageType)
}

func TestPostMessage_AppendFailureSkipsFanOut(t *testing.T) {
	convs := &fakeConversationStore{appendErr: errs.NotFound("group or user not found")}
	hub := &fakeBroadcaster{}
	notifier := &fakeNotifier{}
	svc := newGroupService(newFakeGroupStore(), convs, hub, notifier)

	_, err := svc.PostMessage(context.Background(), "g1", userLow, "text", "hello")
	assert.Equal(t, errs.CodeNotFound, errs.CodeOf(err))
	assert.Empty(t, hub.messages, "failed append must not broadcast")
	assert.Empty(t, notifier.groupNotifies)
}

func TestRecentMessages_ClampsLimit(t *testing.T) {
	convs := &fakeConversationStore{}
	svc := newGroupService(newFakeGroupStore(), convs, &fakeBroadcaster{}, &fakeNotifier{})

	for _, tc := range []struct {
		requested int
		effective int
	}{
		{0, 20},
		{-5, 20},
		{7, 7},
		{1000, 100},
	} {
		_, err := svc.RecentMessages(context.Background(), "g1", tc.requested)
		require.NoError(t, err)
		assert.Equal(t, tc.effective, convs.recentLimits[len(convs.recentLimits)-1])
	}
}

func TestRecentMessages_EmptyLogIsNotAnError(t *testing.T) {
	svc := newGroupService(newFakeGroupStore(), &fakeConversationStore{}, &fakeBroadcaster{}, &fakeNotifier{})

	messages, err := svc.RecentMessages(context.Background(), "g1", 0)
	require.NoError(t, err)
	assert.NotNil(t, messages)
	assert.Empty(t, messages)
}

func TestListGroupsForUser_EmptyIsNotAnError(t *testing.T) {
	svc := newGroupService(newFakeGroupStore(), &fakeConversationStore{}, &fakeBroadcaster{}, &fakeNotifier{})

	previews, err := svc.ListForUser(context.Background(), userLow)
	require.NoError(t, err)
	assert.NotNil(t, previews)
	assert.Empty(t, previews)
}

func TestCheckMember(t *testing.T) {
	store := newFakeGroupStore()
	svc := newGroupService(store, &fakeConversationStore{}, &fakeBroadcaster{}, &fakeNotifier{})
	group, err := svc.Create(context.Background(), userLow, "hiking club", nil, nil)
	require.NoError(t, err)

	assert.NoError(t, svc.CheckMember(context.Background(), group.ID, userLow))

	err = svc.CheckMember(context.Background(), group.ID, userHigh)
	assert.Equal(t, errs.CodeForbidden, errs.CodeOf(err))

	err = svc.CheckMember(context.Background(), "99999999-9999-9999-9999-999999999999", userLow)
	assert.Equal(t, errs.CodeNotFound, errs.CodeOf(err))
}
