package storage

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/d60-Lab/clipshare/config"
)

type s3Backend struct {
	client  *s3.Client
	bucket  string
	baseURL string
}

// NewS3 targets AWS S3, or any S3-compatible endpoint when cfg.Endpoint is set.
func NewS3(cfg config.StorageConfig) (Backend, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage.bucket is required")
	}
	opts := s3.Options{
		Region:      cfg.Region,
		Credentials: credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
		opts.UsePathStyle = true
	}

	base := cfg.PublicBaseURL
	if base == "" {
		base = fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
	return &s3Backend{client: s3.New(opts), bucket: cfg.Bucket, baseURL: base}, nil
}

func (b *s3Backend) Put(ctx context.Context, obj Object) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(b.bucket),
		Key:           aws.String(obj.Key),
		Body:          obj.Body,
		ContentLength: aws.Int64(obj.Size),
		ContentType:   aws.String(obj.ContentType),
		CacheControl:  aws.String(CacheControl),
	})
	return err
}

func (b *s3Backend) URL(key string) string { return joinURL(b.baseURL, key) }
