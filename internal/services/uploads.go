package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"tapp-club-backend/internal/errs"
)

const uploadURLTTL = 5 * time.Minute

// UploadTarget is the issued pre-signed upload slot: where to PUT the
// bytes and the canonical object URL to submit back to the gallery.
type UploadTarget struct {
	UploadURL  string `json:"upload_url"`
	PictureURL string `json:"picture_url"`
	ExpiresIn  int    `json:"expires_in"`
}

// UploadService issues pre-signed S3 URLs for gallery uploads. Without a
// configured bucket it stays disabled.
type UploadService struct {
	presign  *s3.PresignClient
	bucket   string
	region   string
	endpoint string
	events   EventMembership
}

// NewUploadService creates a new upload service. An empty bucket disables
// the service; a non-empty endpoint switches to path-style addressing for
// S3-compatible stores.
func NewUploadService(region, bucket, accessKey, secretKey, endpoint string, events EventMembership) (*UploadService, error) {
	if bucket == "" {
		return &UploadService{events: events}, nil
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if accessKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		))
	}
	cfg, err := awsconfig.LoadDefaultConfig(context.Background(), loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &UploadService{
		presign:  s3.NewPresignClient(client),
		bucket:   bucket,
		region:   region,
		endpoint: strings.TrimSuffix(endpoint, "/"),
		events:   events,
	}, nil
}

// Enabled reports whether upload URLs can be issued
func (s *UploadService) Enabled() bool {
	return s.presign != nil
}

// EventPictureUploadURL authorizes the uploader against the event and
// issues a pre-signed PUT URL for a fresh gallery object.
func (s *UploadService) EventPictureUploadURL(ctx context.Context, eventID, uploaderID, contentType string) (*UploadTarget, error) {
	if !s.Enabled() {
		return nil, errs.Unavailable("uploads are not configured")
	}

	exists, err := s.events.Exists(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, errs.NotFound("event not found")
	}
	member, err := s.events.IsMember(ctx, eventID, uploaderID)
	if err != nil {
		return nil, err
	}
	if !member {
		return nil, errs.Forbidden("only event members can upload pictures")
	}

	if contentType == "" {
		contentType = "image/jpeg"
	}
	key := fmt.Sprintf("events/%s/%s.jpg", eventID, uuid.New().String())

	request, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
	}, func(opts *s3.PresignOptions) {
		opts.Expires = uploadURLTTL
	})
	if err != nil {
		return nil, errs.Upstream("failed to generate pre-signed URL", err)
	}

	return &UploadTarget{
		UploadURL:  request.URL,
		PictureURL: s.objectURL(key),
		ExpiresIn:  int(uploadURLTTL.Seconds()),
	}, nil
}

func (s *UploadService) objectURL(key string) string {
	if s.endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", s.endpoint, s.bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", s.bucket, s.region, key)
}
