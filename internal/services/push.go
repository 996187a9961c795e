package services

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sideshow/apns2"
	"github.com/sideshow/apns2/payload"
	"github.com/sideshow/apns2/token"
)

const (
	pushLookupTimeout = 10 * time.Second
	pushBodyLimit     = 120
)

// PushTokenStore looks up APNs device tokens for delivery targets.
type PushTokenStore interface {
	PushToken(ctx context.Context, userID string) (*string, error)
	GroupPushTokens(ctx context.Context, groupID, exceptUserID string) ([]string, error)
}

// PushService delivers best-effort APNs notifications. Without a signing
// key it stays disabled and every delivery is a no-op.
type PushService struct {
	client *apns2.Client
	topic  string
	tokens PushTokenStore
}

// NewPushService creates a new push service. An empty key file path
// disables delivery entirely.
func NewPushService(keyFile, keyID, teamID, topic string, production bool, tokens PushTokenStore) (*PushService, error) {
	if keyFile == "" {
		return &PushService{tokens: tokens}, nil
	}

	authKey, err := token.AuthKeyFromFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load APNs signing key: %w", err)
	}
	client := apns2.NewTokenClient(&token.Token{
		AuthKey: authKey,
		KeyID:   keyID,
		TeamID:  teamID,
	})
	if production {
		client = client.Production()
	} else {
		client = client.Development()
	}

	return &PushService{
		client: client,
		topic:  topic,
		tokens: tokens,
	}, nil
}

// Enabled reports whether deliveries actually go out
func (s *PushService) Enabled() bool {
	return s.client != nil
}

// NotifyUser pushes a notification to a single user's device, if one is
// registered. Runs in the background; failures are logged, never
// surfaced.
func (s *PushService) NotifyUser(userID, title, body string) {
	if !s.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushLookupTimeout)
		defer cancel()

		deviceToken, err := s.tokens.PushToken(ctx, userID)
		if err != nil {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to look up push token")
			return
		}
		if deviceToken == nil {
			return
		}
		s.send(*deviceToken, title, body)
	}()
}

// NotifyGroup pushes a notification to every member of a group except the
// originating user. Runs in the background; failures are logged, never
// surfaced.
func (s *PushService) NotifyGroup(groupID, exceptUserID, title, body string) {
	if !s.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), pushLookupTimeout)
		defer cancel()

		deviceTokens, err := s.tokens.GroupPushTokens(ctx, groupID, exceptUserID)
		if err != nil {
			log.Error().Err(err).Str("group_id", groupID).Msg("Failed to look up group push tokens")
			return
		}
		for _, deviceToken := range deviceTokens {
			s.send(deviceToken, title, body)
		}
	}()
}

func (s *PushService) send(deviceToken, title, body string) {
	notification := &apns2.Notification{
		DeviceToken: deviceToken,
		Topic:       s.topic,
		Payload:     payload.NewPayload().AlertTitle(title).AlertBody(truncate(body, pushBodyLimit)),
	}

	res, err := s.client.Push(notification)
	if err != nil {
		log.Error().Err(err).Msg("Failed to deliver push notification")
		return
	}
	if !res.Sent() {
		log.Warn().Str("reason", res.Reason).Msg("Push notification rejected")
	}
}

// truncate shortens s to at most max runes, appending an ellipsis when it
// had to cut.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
