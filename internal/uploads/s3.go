package uploads

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// putObjectAPI is the part of the S3 client the store uses.
type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Config configures NewS3.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	Prefix          string
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// S3 stores uploads as objects under Prefix in Bucket.
type S3 struct {
	client putObjectAPI
	bucket string
	prefix string
	base   string
}

// NewS3 builds a client from static settings. Empty credentials fall back to
// anonymous requests, which suits local S3-compatible servers.
func NewS3(cfg S3Config) (*S3, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, fmt.Errorf("uploads: s3 bucket is required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	opts := s3.Options{
		Region:       region,
		UsePathStyle: cfg.UsePathStyle,
	}
	if cfg.AccessKeyID != "" {
		opts.Credentials = aws.CredentialsProviderFunc(func(context.Context) (aws.Credentials, error) {
			return aws.Credentials{
				AccessKeyID:     cfg.AccessKeyID,
				SecretAccessKey: cfg.SecretAccessKey,
				Source:          "parkentry-config",
			}, nil
		})
	}
	if cfg.Endpoint != "" {
		opts.BaseEndpoint = aws.String(cfg.Endpoint)
	}

	base := fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, region)
	if cfg.Endpoint != "" {
		base = strings.TrimRight(cfg.Endpoint, "/") + "/" + cfg.Bucket
	}
	return newS3(s3.New(opts), cfg.Bucket, cfg.Prefix, base), nil
}

func newS3(client putObjectAPI, bucket, prefix, base string) *S3 {
	return &S3{client: client, bucket: bucket, prefix: prefix, base: base}
}

func (s *S3) Save(ctx context.Context, name, contentType string, data []byte) (string, error) {
	if name == "" || strings.ContainsAny(name, "/\\") {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(s.prefix + name),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
		Metadata: map[string]string{
			"upload-time": time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return "", fmt.Errorf("uploads: s3 put %s: %w", name, err)
	}
	return name, nil
}

func (s *S3) Link(name string) string {
	return s.base + "/" + s.prefix + name
}
