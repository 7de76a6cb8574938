// Package s3 wraps the AWS SDK client for export artifact storage. It works
// against AWS proper as well as S3-compatible endpoints (R2, MinIO, HiDrive).
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	appcfg "github.com/seoforge/core/internal/config"
)

// ErrNotConfigured is returned when the stored config has no usable S3 options.
var ErrNotConfigured = errors.New("s3 storage is not configured")

type Client struct {
	api  *s3.Client
	opts appcfg.S3Options
}

// NewClient builds a client from the runtime S3 options. Returns
// ErrNotConfigured when the required fields are missing.
func NewClient(ctx context.Context, opts appcfg.S3Options) (*Client, error) {
	if strings.TrimSpace(opts.Bucket) == "" ||
		strings.TrimSpace(opts.AccessKeyID) == "" ||
		strings.TrimSpace(opts.SecretAccessKey) == "" {
		return nil, ErrNotConfigured
	}

	region := strings.TrimSpace(opts.Region)
	if region == "" {
		region = "auto"
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(region),
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(opts.AccessKeyID, opts.SecretAccessKey, ""),
		),
	)
	if err != nil {
		return nil, err
	}

	api := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint := normalizeEndpoint(opts.Endpoint); endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
		if opts.PathStyleAccess {
			o.UsePathStyle = true
		}
	})

	return &Client{api: api, opts: opts}, nil
}

// Upload puts the object and returns its public URL.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	key = strings.TrimPrefix(strings.TrimSpace(key), "/")
	if key == "" {
		return "", errors.New("empty object key")
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	_, err := c.api.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.opts.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload failed: %w", err)
	}

	return c.publicURL(key), nil
}

func (c *Client) publicURL(key string) string {
	if domain := strings.TrimRight(strings.TrimSpace(c.opts.CustomDomain), "/"); domain != "" {
		return domain + "/" + key
	}
	if endpoint := normalizeEndpoint(c.opts.Endpoint); endpoint != "" {
		return fmt.Sprintf("%s/%s/%s", endpoint, c.opts.Bucket, key)
	}
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.opts.Bucket, c.opts.Region, key)
}

func normalizeEndpoint(endpoint string) string {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return ""
	}
	if !strings.HasPrefix(endpoint, "http://") && !strings.HasPrefix(endpoint, "https://") {
		endpoint = "https://" + endpoint
	}
	return strings.TrimRight(endpoint, "/")
}
