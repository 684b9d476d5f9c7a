package storage

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"social-scheduler/domain/model"
	"social-scheduler/infrastructure/configuration"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

// S3MediaArchive keeps a private copy of every media file fetched for publishing.
type S3MediaArchive struct {
	uploader uploader
	bucket   string
	baseURL  string
}

// NewS3MediaArchive configures an uploader targeting the archive bucket (S3 or an S3-compatible store).
func NewS3MediaArchive(ctx context.Context, cfg configuration.MediaArchive) (*S3MediaArchive, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("media archive: bucket is required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := strings.TrimSpace(cfg.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	up := manager.NewUploader(client, func(u *manager.Uploader) {
		u.PartSize = 8 * 1024 * 1024
		u.LeavePartsOnError = false
	})
	return newS3MediaArchive(up, cfg.Bucket, cfg.PublicBaseURL), nil
}

func newS3MediaArchive(up uploader, bucket, baseURL string) *S3MediaArchive {
	return &S3MediaArchive{uploader: up, bucket: bucket, baseURL: strings.TrimSuffix(baseURL, "/")}
}

// Save uploads the media under key and returns its location.
func (s *S3MediaArchive) Save(ctx context.Context, key string, media *model.Media) (string, error) {
	key = strings.TrimLeft(key, "/")
	if key == "" {
		return "", fmt.Errorf("media archive: empty key")
	}
	if media == nil {
		return "", fmt.Errorf("media archive: nothing to store for %s", key)
	}

	input := &s3.PutObjectInput{
		Bucket:   aws.String(s.bucket),
		Key:      aws.String(key),
		Body:     bytes.NewReader(media.Data),
		Metadata: map[string]string{"source-url": media.SourceURL},
	}
	if media.ContentType != "" {
		input.ContentType = aws.String(media.ContentType)
	}
	if _, err := s.uploader.Upload(ctx, input); err != nil {
		return "", fmt.Errorf("media archive upload %s: %w", key, err)
	}

	if s.baseURL == "" {
		return fmt.Sprintf("s3://%s/%s", s.bucket, key), nil
	}
	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}
