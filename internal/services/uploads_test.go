package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tapp-club-backend/internal/errs"
)

const uploadEventID = "44444444-4444-4444-4444-444444444444"

func uploadMembership() *fakeEventMembership {
	return &fakeEventMembership{
		events: map[string]map[string]bool{
			uploadEventID: {userLow: true},
		},
	}
}

func TestUploadURL_Disabled(t *testing.T) {
	svc, err := NewUploadService("", "", "", "", "", uploadMembership())
	require.NoError(t, err)
	require.False(t, svc.Enabled())

	_, err = svc.EventPictureUploadURL(context.Background(), uploadEventID, userLow, "")
	assert.Equal(t, errs.CodeUnavailable, errs.CodeOf(err))
}

func TestUploadURL_IssuesPresignedSlot(t *testing.T) {
	svc, err := NewUploadService("us-east-1", "tapp-media", "AKIDEXAMPLE", "secret", "http://localhost:9000", uploadMembership())
	require.NoError(t, err)
	require.True(t, svc.Enabled())

	target, err := svc.EventPictureUploadURL(context.Background(), uploadEventID, userLow, "image/png")
	require.NoError(t, err)

	assert.Equal(t, 300, target.ExpiresIn)
	assert.Contains(t, target.UploadURL, "tapp-media")
	assert.Contains(t, target.UploadURL, "/events/"+uploadEventID+"/")
	assert.Contains(t, target.UploadURL, "X-Amz-Signature")

	assert.True(t, strings.HasPrefix(target.PictureURL, "http://localhost:9000/tapp-media/events/"+uploadEventID+"/"), target.PictureURL)
	assert.True(t, strings.HasSuffix(target.PictureURL, ".jpg"), target.PictureURL)
}

func TestUploadURL_VirtualHostedObjectURL(t *testing.T) {
	svc, err := NewUploadService("eu-west-1", "tapp-media", "AKIDEXAMPLE", "secret", "", uploadMembership())
	require.NoError(t, err)

	target, err := svc.EventPictureUploadURL(context.Background(), uploadEventID, userLow, "")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(target.PictureURL, "https://tapp-media.s3.eu-west-1.amazonaws.com/events/"), target.PictureURL)
}

func TestUploadURL_MissingEvent(t *testing.T) {
	svc, err := NewUploadService("us-east-1", "tapp-media", "AKIDEXAMPLE", "secret", "", uploadMembership())
	require.NoError(t, err)

	_, err = svc.EventPictureUploadURL(context.Background(), "99999999-9999-9999-9999-999999999999", userLow, "")
	assert.Equal(t, errs.CodeNotFound, errs.CodeOf(err))
}

func TestUploadURL_NonMember(t *testing.T) {
	svc, err := NewUploadService("us-east-1", "tapp-media", "AKIDEXAMPLE", "secret", "", uploadMembership())
	require.NoError(t, err)

	_, err = svc.EventPictureUploadURL(context.Background(), uploadEventID, userHigh, "")
	assert.Equal(t, errs.CodeForbidden, errs.CodeOf(err))
}
