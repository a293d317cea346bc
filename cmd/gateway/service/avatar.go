package service

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/walruspass/walruspass/common/config"
	"github.com/walruspass/walruspass/common/logger"
)

// AvatarStore uploads profile avatars to an S3-compatible bucket and hands
// back the public URL stored on the profile row.
type AvatarStore struct {
	client        *s3.Client
	bucket        string
	publicBaseURL string
	log           *logger.Logger
}

func NewAvatarStore(ctx context.Context, cfg config.ObjectStoreConfig, log *logger.Logger) (*AvatarStore, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load object store config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			// MinIO and friends route by path, not subdomain
			o.UsePathStyle = true
		}
	})

	base := cfg.PublicBaseURL
	if base == "" {
		base = cfg.Endpoint
	}

	return &AvatarStore{
		client:        client,
		bucket:        cfg.Bucket,
		publicBaseURL: strings.TrimRight(base, "/"),
		log:           log,
	}, nil
}

// Upload stores the avatar under a per-user key and returns its public URL
func (s *AvatarStore) Upload(ctx context.Context, userID, filename, contentType string, body io.Reader) (string, error) {
	key := fmt.Sprintf("%s/%s%s", userID, uuid.NewString(), path.Ext(filename))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		s.log.Error("avatar upload failed", "user_id", userID, "error", err)
		return "", fmt.Errorf("failed to upload avatar: %w", err)
	}

	url := fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, key)
	s.log.Info("avatar uploaded", "user_id", userID, "url", url)
	return url, nil
}
