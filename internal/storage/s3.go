package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API is the subset of the S3 client S3Store uses
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads objects to a bucket and serves them from a CDN or bucket URL
type S3Store struct {
	client  S3API
	bucket  string
	prefix  string
	baseURL string
}

// NewS3Store creates an S3 backed store. An empty assetsBaseURL falls back
// to the virtual-hosted bucket URL.
func NewS3Store(client S3API, bucket, prefix, region, assetsBaseURL string) *S3Store {
	baseURL := strings.TrimRight(assetsBaseURL, "/")
	if baseURL == "" {
		baseURL = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", bucket, region)
	}
	return &S3Store{client: client, bucket: bucket, prefix: prefix, baseURL: baseURL}
}

// Backend implements FileStore
func (s *S3Store) Backend() string {
	return "s3"
}

// Save uploads body under prefix+name
func (s *S3Store) Save(ctx context.Context, name, contentType string, body io.Reader) (string, error) {
	key := s.prefix + name

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return "", fmt.Errorf("failed to upload %s to S3: %w", key, err)
	}

	return fmt.Sprintf("%s/%s", s.baseURL, key), nil
}
