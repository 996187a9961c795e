package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapp-club-backend/internal/errs"
	"tapp-club-backend/internal/models"
	"tapp-club-backend/internal/services"
)

const (
	aliceID = "11111111-1111-1111-1111-111111111111"
	bobID   = "22222222-2222-2222-2222-222222222222"
)

func doJSON(router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func errorMessage(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error
}

type fakeFriendshipStore struct {
	rows map[string]*models.Friendship
}

func newFakeFriendshipStore() *fakeFriendshipStore {
	return &fakeFriendshipStore{rows: make(map[string]*models.Friendship)}
}

func (f *fakeFriendshipStore) Create(ctx context.Context, fr *models.Friendship) error {
	key := fr.UserOneID + "|" + fr.UserTwoID
	if _, exists := f.rows[key]; exists {
		return errs.Conflict("a friendship or pending request already exists between these users")
	}
	stored := *fr
	f.rows[key] = &stored
	return nil
}

func (f *fakeFriendshipStore) RespondPending(ctx context.Context, userOneID, userTwoID, requesterID, responderID string, status models.FriendshipStatus) error {
	row, ok := f.rows[userOneID+"|"+userTwoID]
	if !ok || row.Status != models.FriendshipPending || row.ActionUserID != requesterID {
		return errs.NotFound("no pending friend request found to respond to")
	}
	row.Status = status
	row.ActionUserID = responderID
	return nil
}

func friendshipRouter(store services.FriendshipStore) *chi.Mux {
	h := NewFriendshipHandler(services.NewFriendshipService(store, nil))
	r := chi.NewRouter()
	r.Post("/friend-requests", h.Send)
	r.Patch("/friend-requests/{requester_id}", h.Respond)
	return r
}

func TestSendFriendRequest(t *testing.T) {
	router := friendshipRouter(newFakeFriendshipStore())

	rec := doJSON(router, "POST", "/friend-requests",
		`{"requester_id":"`+bobID+`","addressee_id":"`+aliceID+`"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var friendship models.Friendship
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &friendship))
	assert.Equal(t, aliceID, friendship.UserOneID)
	assert.Equal(t, bobID, friendship.UserTwoID)
	assert.Equal(t, models.FriendshipPending, friendship.Status)
}

func TestSendFriendRequest_Duplicate(t *testing.T) {
	router := friendshipRouter(newFakeFriendshipStore())
	body := `{"requester_id":"` + bobID + `","addressee_id":"` + aliceID + `"}`

	require.Equal(t, http.StatusCreated, doJSON(router, "POST", "/friend-requests", body).Code)

	rec := doJSON(router, "POST", "/friend-requests", body)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestSendFriendRequest_InvalidBody(t *testing.T) {
	router := friendshipRouter(newFakeFriendshipStore())

	rec := doJSON(router, "POST", "/friend-requests", `{"requester_id":`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid request body", errorMessage(t, rec))
}

func TestSendFriendRequest_MalformedID(t *testing.T) {
	router := friendshipRouter(newFakeFriendshipStore())

	rec := doJSON(router, "POST", "/friend-requests",
		`{"requester_id":"not-a-uuid","addressee_id":"`+aliceID+`"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid requester_id", errorMessage(t, rec))
}

func TestRespondFriendRequest(t *testing.T) {
	router := friendshipRouter(newFakeFriendshipStore())
	require.Equal(t, http.StatusCreated, doJSON(router, "POST", "/friend-requests",
		`{"requester_id":"`+bobID+`","addressee_id":"`+aliceID+`"}`).Code)

	rec := doJSON(router, "PATCH", "/friend-requests/"+bobID,
		`{"responder_id":"`+aliceID+`","action":"accepted"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "friend request accepted", resp.Message)
}

func TestRespondFriendRequest_NothingPending(t *testing.T) {
	router := friendshipRouter(newFakeFriendshipStore())

	rec := doJSON(router, "PATCH", "/friend-requests/"+bobID,
		`{"responder_id":"`+aliceID+`","action":"accepted"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRespondFriendRequest_MalformedPathID(t *testing.T) {
	router := friendshipRouter(newFakeFriendshipStore())

	rec := doJSON(router, "PATCH", "/friend-requests/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid requester_id", errorMessage(t, rec))
}

type fakeUserStore struct {
	bySubject map[string]*models.User
	tokens    map[string]*string
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		bySubject: make(map[string]*models.User),
		tokens:    make(map[string]*string),
	}
}

func (f *fakeUserStore) Create(ctx context.Context, user *models.User) error {
	f.bySubject[user.AuthSubject] = user
	return nil
}

func (f *fakeUserStore) GetByID(ctx context.Context, id string) (*models.User, error) {
	for _, user := range f.bySubject {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, errs.NotFound("user not found")
}

func (f *fakeUserStore) GetBySubject(ctx context.Context, subject string) (*models.User, error) {
	user, ok := f.bySubject[subject]
	if !ok {
		return nil, errs.NotFound("user not found")
	}
	return user, nil
}

func (f *fakeUserStore) Update(ctx context.Context, id string, upd models.UserUpdate) (*models.User, error) {
	user, err := f.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if upd.Username != nil {
		user.Username = *upd.Username
	}
	return user, nil
}

func (f *fakeUserStore) UpdatePushToken(ctx context.Context, userID string, pushToken *string) error {
	if _, err := f.GetByID(ctx, userID); err != nil {
		return err
	}
	f.tokens[userID] = pushToken
	return nil
}

func userRouter(store *fakeUserStore) *chi.Mux {
	h := NewUserHandler(services.NewUserService(store, nil, nil))
	r := chi.NewRouter()
	r.Post("/users", h.Resolve)
	r.Put("/users/{id}/push-token", h.UpdatePushToken)
	return r
}

func TestResolveUser(t *testing.T) {
	router := userRouter(newFakeUserStore())

	rec := doJSON(router, "POST", "/users", `{"auth_subject":"auth0|abc123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.UserID)

	// Resolving the same subject again yields the same id.
	again := doJSON(router, "POST", "/users", `{"auth_subject":"auth0|abc123"}`)
	require.Equal(t, http.StatusOK, again.Code)
	var second struct {
		UserID string `json:"user_id"`
	}
	require.NoError(t, json.Unmarshal(again.Body.Bytes(), &second))
	assert.Equal(t, resp.UserID, second.UserID)
}

func TestResolveUser_MissingSubject(t *testing.T) {
	router := userRouter(newFakeUserStore())

	rec := doJSON(router, "POST", "/users", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdatePushToken(t *testing.T) {
	store := newFakeUserStore()
	store.bySubject["auth0|abc123"] = &models.User{ID: aliceID, AuthSubject: "auth0|abc123"}
	router := userRouter(store)

	rec := doJSON(router, "PUT", "/users/"+aliceID+"/push-token", `{"push_token":"apns-token-1"}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
	require.NotNil(t, store.tokens[aliceID])
	assert.Equal(t, "apns-token-1", *store.tokens[aliceID])
}

func TestUpdatePushToken_ClearsWithNull(t *testing.T) {
	store := newFakeUserStore()
	store.bySubject["auth0|abc123"] = &models.User{ID: aliceID, AuthSubject: "auth0|abc123"}
	router := userRouter(store)

	rec := doJSON(router, "PUT", "/users/"+aliceID+"/push-token", `{"push_token":null}`)
	require.Equal(t, http.StatusNoContent, rec.Code)
	token, recorded := store.tokens[aliceID]
	require.True(t, recorded)
	assert.Nil(t, token)
}

func TestEventGet_MalformedID(t *testing.T) {
	h := NewEventHandler(nil, nil)
	r := chi.NewRouter()
	r.Get("/events/{id}", h.Get)

	rec := doJSON(r, "GET", "/events/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", errorMessage(t, rec))
}

func TestEventCreate_InvalidBody(t *testing.T) {
	h := NewEventHandler(nil, nil)
	r := chi.NewRouter()
	r.Post("/events", h.Create)

	rec := doJSON(r, "POST", "/events", `not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPostGet_MalformedID(t *testing.T) {
	h := NewPostHandler(nil)
	r := chi.NewRouter()
	r.Get("/posts/{id}", h.Get)

	rec := doJSON(r, "GET", "/posts/not-a-uuid", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid id", errorMessage(t, rec))
}

func agentRouter(t *testing.T, providerHandler http.HandlerFunc) *chi.Mux {
	t.Helper()
	provider := httptest.NewServer(providerHandler)
	t.Cleanup(provider.Close)

	h := NewAgentHandler(services.NewAgentService(provider.URL, "test-key", "test-model"))
	r := chi.NewRouter()
	r.Get("/agent", h.Query)
	return r
}

func TestAgentQuery(t *testing.T) {
	router := agentRouter(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"the park opens at nine"}]}}]}`))
	})

	rec := doJSON(router, "GET", "/agent?request=when+does+the+park+open", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/plain; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "the park opens at nine", rec.Body.String())
}

func TestAgentQuery_MissingPrompt(t *testing.T) {
	router := agentRouter(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("provider must not be called without a prompt")
	})

	rec := doJSON(router, "GET", "/agent", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "request prompt is required", errorMessage(t, rec))
}

func TestAgentQuery_ProviderDown(t *testing.T) {
	router := agentRouter(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	})

	rec := doJSON(router, "GET", "/agent?request=hello", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "agent provider returned status 502", errorMessage(t, rec))
}
