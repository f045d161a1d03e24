package services

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"shop-backend/internal/config"
)

// LogoUpload is one image file to store.
type LogoUpload struct {
	Filename    string
	ContentType string
	Body        io.Reader
}

// StorageService uploads store assets to an S3-compatible bucket. Works
// against AWS S3 or any endpoint-compatible service.
type StorageService struct {
	client    *s3.Client
	bucket    string
	publicURL string
}

// NewStorageService returns nil when no bucket is configured; callers treat a
// nil service as storage disabled.
func NewStorageService(ctx context.Context, cfg *config.Config) (*StorageService, error) {
	if cfg.Storage.Bucket == "" {
		return nil, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.Storage.Region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load storage config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})

	publicURL := cfg.Storage.Endpoint
	if publicURL == "" {
		publicURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Storage.Bucket, cfg.Storage.Region)
	} else {
		publicURL = strings.TrimSuffix(publicURL, "/") + "/" + cfg.Storage.Bucket
	}

	return &StorageService{
		client:    client,
		bucket:    cfg.Storage.Bucket,
		publicURL: publicURL,
	}, nil
}

// UploadLogo writes the image under logos/<storeID>/ and returns its public URL.
func (s *StorageService) UploadLogo(ctx context.Context, storeID int, upload *LogoUpload) (string, error) {
	ext := strings.ToLower(path.Ext(upload.Filename))
	switch ext {
	case ".png", ".jpg", ".jpeg", ".webp", ".svg":
	default:
		return "", fmt.Errorf("unsupported logo format %q", ext)
	}

	key := fmt.Sprintf("logos/%d/%d%s", storeID, time.Now().UnixMilli(), ext)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        upload.Body,
		ContentType: aws.String(upload.ContentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}
	return s.publicURL + "/" + key, nil
}
