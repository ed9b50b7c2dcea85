package storage

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
	"github.com/vendsight/vendsight-backend/config"
)

// Archiver stores raw upload payloads for audit and re-import.
type Archiver interface {
	Archive(ctx context.Context, filename string, body []byte) (string, error)
}

type S3Storage struct {
	client *s3.Client
	bucket string
}

func NewS3Storage(cfg *config.S3Config) *S3Storage {
	var awsCfg aws.Config
	var err error

	// Static credentials when provided, default chain otherwise
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		awsCfg = aws.Config{
			Region: cfg.Region,
			Credentials: credentials.NewStaticCredentialsProvider(
				cfg.AccessKeyID,
				cfg.SecretAccessKey,
				"",
			),
		}
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.Region),
		)
		if err != nil {
			awsCfg = aws.Config{Region: cfg.Region}
		}
	}

	return &S3Storage{
		client: s3.NewFromConfig(awsCfg),
		bucket: cfg.Bucket,
	}
}

// Archive stores the raw file under a unique key and returns the key.
func (s *S3Storage) Archive(ctx context.Context, filename string, body []byte) (string, error) {
	ext := filepath.Ext(filename)
	key := fmt.Sprintf("uploads/%s%s", uuid.New().String(), ext)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("failed to archive upload: %w", err)
	}

	return key, nil
}
