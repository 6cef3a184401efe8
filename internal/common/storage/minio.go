// Package storage wraps MinIO/S3 access to the applicant document bucket.
package storage

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"vyapara-admin/internal/common/config"
)

// Object describes a stored document object.
type Object struct {
	Key          string
	Name         string
	Size         int64
	ContentType  string
	LastModified time.Time
}

// Client wraps MinIO interactions for the document bucket.
type Client struct {
	client *minio.Client
	bucket string
	region string
}

// New creates a MinIO client from the storage config.
func New(cfg config.StorageConfig) (*Client, error) {
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("init minio: %w", err)
	}
	return &Client{
		client: mc,
		bucket: cfg.Bucket,
		region: cfg.Region,
	}, nil
}

// EnsureBucket makes sure the document bucket exists before use.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", c.bucket, err)
	}
	if !exists {
		if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{Region: c.region}); err != nil {
			return fmt.Errorf("make bucket %s: %w", c.bucket, err)
		}
	}
	return nil
}

// List returns the objects stored under prefix, typically "<applicantID>/".
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	opts := minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}

	var objects []Object
	for info := range c.client.ListObjects(ctx, c.bucket, opts) {
		if info.Err != nil {
			return nil, fmt.Errorf("list objects under %s: %w", prefix, info.Err)
		}
		objects = append(objects, Object{
			Key:          info.Key,
			Name:         baseName(info.Key),
			Size:         info.Size,
			ContentType:  info.ContentType,
			LastModified: info.LastModified,
		})
	}
	return objects, nil
}

// PresignGet returns a signed GET URL for the object, valid for expirySeconds.
func (c *Client) PresignGet(ctx context.Context, objectKey string, expirySeconds int64) (string, error) {
	u, err := c.client.PresignedGetObject(ctx, c.bucket, objectKey, time.Duration(expirySeconds)*time.Second, url.Values{})
	if err != nil {
		return "", fmt.Errorf("presign object %s: %w", objectKey, err)
	}
	return u.String(), nil
}

func baseName(key string) string {
	for i := len(key) - 1; i >= 0; i-- {
		if key[i] == '/' {
			return key[i+1:]
		}
	}
	return key
}
