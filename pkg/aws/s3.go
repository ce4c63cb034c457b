package aws

import (
	"context"
	"fmt"
	"io"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// BlobStore abstracts evidence-file storage so services can be tested without S3.
type BlobStore interface {
	Store(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error)
	Retrieve(ctx context.Context, key string) (io.ReadCloser, error)
}

// S3BlobStore stores blobs in a single S3 bucket.
type S3BlobStore struct {
	client *s3.Client
	bucket string
}

func NewS3BlobStore(cfg sdkaws.Config, bucket string) *S3BlobStore {
	return &S3BlobStore{client: s3.NewFromConfig(cfg), bucket: bucket}
}

// Store uploads the object and returns the key it was stored under.
func (s *S3BlobStore) Store(ctx context.Context, key, contentType string, body io.Reader, size int64) (string, error) {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        &s.bucket,
		Key:           &key,
		Body:          body,
		ContentType:   &contentType,
		ContentLength: &size,
	})
	if err != nil {
		return "", fmt.Errorf("s3 put object failed for key %s: %w", key, err)
	}
	return key, nil
}

// Retrieve streams the object body back to the caller. The caller must close it.
func (s *S3BlobStore) Retrieve(ctx context.Context, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	})
	if err != nil {
		return nil, fmt.Errorf("s3 get object failed for key %s: %w", key, err)
	}
	return out.Body, nil
}

// GeneratePresignedGetURL generates a presigned GET URL so admins can view
// payment evidence without proxying bytes through the service.
func (s *S3BlobStore) GeneratePresignedGetURL(ctx context.Context, key string, expirySeconds int64) (string, error) {
	presigner := s3.NewPresignClient(s.client)

	presigned, err := presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, func(o *s3.PresignOptions) {
		o.Expires = time.Duration(expirySeconds) * time.Second
	})
	if err != nil {
		return "", fmt.Errorf("failed to presign get object: %w", err)
	}

	return presigned.URL, nil
}
