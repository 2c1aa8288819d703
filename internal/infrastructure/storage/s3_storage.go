// Package storage provides object storage implementations for payment
// evidence files.
package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	billingapp "github.com/dormhub/backend/internal/application/billing"
	infraconfig "github.com/dormhub/backend/internal/infrastructure/config"
)

// Ensure S3EvidenceStorage implements EvidenceStorage
var _ billingapp.EvidenceStorage = (*S3EvidenceStorage)(nil)

// S3EvidenceStorage stores payment slips in an S3-compatible bucket.
// Works against AWS S3 as well as MinIO-style stores via a custom
// endpoint with path-style addressing.
type S3EvidenceStorage struct {
	client        *s3.Client
	presignClient *s3.PresignClient
	bucket        string
	presignExpiry time.Duration
	logger        *zap.Logger
}

// NewS3EvidenceStorage creates a new S3EvidenceStorage from configuration
func NewS3EvidenceStorage(cfg *infraconfig.StorageConfig, logger *zap.Logger) (*S3EvidenceStorage, error) {
	if cfg == nil {
		return nil, errors.New("storage configuration is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}
	if cfg.AccessKeyID == "" || cfg.SecretAccessKey == "" {
		return nil, errors.New("storage credentials are required")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.ForcePathStyle
		if cfg.Endpoint != "" {
			endpoint := cfg.Endpoint
			if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
				endpoint = "https://" + endpoint
			}
			o.BaseEndpoint = aws.String(endpoint)
		}
	})

	expiry := cfg.PresignExpiry
	if expiry == 0 {
		expiry = 15 * time.Minute
	}

	return &S3EvidenceStorage{
		client:        client,
		presignClient: s3.NewPresignClient(client),
		bucket:        cfg.Bucket,
		presignExpiry: expiry,
		logger:        logger,
	}, nil
}

// Upload writes a payment slip and returns a presigned URL for it.
// The payment record keeps the storage key, so the URL expiring is
// fine; a fresh one can be presigned any time.
func (s *S3EvidenceStorage) Upload(ctx context.Context, storageKey, contentType string, data []byte) (string, error) {
	if storageKey == "" {
		return "", errors.New("storage key is required")
	}
	if len(data) == 0 {
		return "", errors.New("evidence payload is empty")
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(storageKey),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload evidence: %w", err)
	}

	url, _, err := s.GenerateDownloadURL(ctx, storageKey, s.presignExpiry)
	if err != nil {
		return "", err
	}

	s.logger.Debug("payment evidence uploaded",
		zap.String("key", storageKey),
		zap.Int("bytes", len(data)))
	return url, nil
}

// GenerateDownloadURL returns a time-limited URL for an existing slip
func (s *S3EvidenceStorage) GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error) {
	if storageKey == "" {
		return "", time.Time{}, errors.New("storage key is required")
	}
	if expiresIn <= 0 {
		expiresIn = s.presignExpiry
	}

	presignReq, err := s.presignClient.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(storageKey),
	}, s3.WithPresignExpires(expiresIn))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to presign download URL: %w", err)
	}

	return presignReq.URL, time.Now().Add(expiresIn), nil
}
