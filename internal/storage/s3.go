package storage

import (
	"context"
	"fmt"
	"io"
	"log"
	"path"
	"strings"
	"time"

	appconfig "khata-backend/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// BillStore keeps transaction bill images in an S3-compatible bucket
// (Cloudflare R2 in production). It is injected into the services that need
// it; nothing in the ledger path depends on it succeeding.
type BillStore struct {
	client *s3.Client
	bucket string
}

// NewBillStore builds a store from the attachments section of the config.
// Returns nil (store disabled) when no credentials are configured.
func NewBillStore(cfg *appconfig.Config) *BillStore {
	if cfg.Attachments.AccessKey == "" || cfg.Attachments.SecretKey == "" {
		log.Println("[Attachments] No credentials configured, bill uploads disabled")
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.Attachments.AccessKey,
			cfg.Attachments.SecretKey,
			"",
		)),
		awsconfig.WithRegion(cfg.Attachments.Region),
	)
	if err != nil {
		log.Printf("[Attachments] Failed to configure store: %v", err)
		return nil
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Attachments.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Attachments.Endpoint)
		}
	})

	return &BillStore{client: client, bucket: cfg.Attachments.Bucket}
}

// BillKey generates a unique object key for an uploaded bill, keeping the
// original file extension.
func BillKey(filename string) string {
	ext := strings.TrimPrefix(path.Ext(filename), ".")
	if ext == "" {
		ext = "bin"
	}
	return fmt.Sprintf("transaction_bills/bill_%s.%s", strings.ReplaceAll(uuid.NewString(), "-", ""), ext)
}

// Put uploads a bill under the given key.
func (s *BillStore) Put(ctx context.Context, key string, contentType string, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		ContentType: aws.String(contentType),
		Body:        body,
	})
	if err != nil {
		return fmt.Errorf("failed to upload bill %s: %w", key, err)
	}
	return nil
}

// Delete removes a bill object. Callers treat failures as best-effort.
func (s *BillStore) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete bill %s: %w", key, err)
	}
	return nil
}
