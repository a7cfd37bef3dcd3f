package minio

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"mediaflow/internal/config"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	emptySessionToken           = ""
	errFailedCreateClientFmt    = "failed to create MinIO client: %w"
	errFailedPutObjectFmt       = "failed to put object %s: %w"
	errFailedGetObjectFmt       = "failed to get object %s: %w"
	errFailedDeleteObjectFmt    = "failed to delete object %s: %w"
	errFailedDeleteObjectsFmt   = "failed to delete %d objects, first %s: %w"
	errFailedPresignURLFmt      = "failed to generate presigned URL for %s: %w"
	errFailedEnsureBucketFmt    = "failed to ensure bucket %s: %w"
	defaultObjectContentType    = "application/octet-stream"
	objectMetadataUploadedAtKey = "uploaded-at"
)

// Client stores objects on a MinIO or other S3-compatible server.
type Client struct {
	client *minio.Client
	bucket string
}

func NewClient(cfg *config.MinioConfig, bucket string) (*Client, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, emptySessionToken),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf(errFailedCreateClientFmt, err)
	}

	return &Client{client: client, bucket: bucket}, nil
}

// EnsureBucket creates the bucket on first start.
func (c *Client) EnsureBucket(ctx context.Context) error {
	exists, err := c.client.BucketExists(ctx, c.bucket)
	if err != nil {
		return fmt.Errorf(errFailedEnsureBucketFmt, c.bucket, err)
	}
	if exists {
		return nil
	}

	if err := c.client.MakeBucket(ctx, c.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf(errFailedEnsureBucketFmt, c.bucket, err)
	}

	return nil
}

func (c *Client) Put(ctx context.Context, key string, body io.ReadSeeker, size int64, contentType string) error {
	if contentType == "" {
		contentType = defaultObjectContentType
	}

	_, err := c.client.PutObject(ctx, c.bucket, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
		UserMetadata: map[string]string{
			objectMetadataUploadedAtKey: time.Now().UTC().Format(time.RFC3339),
		},
	})
	if err != nil {
		return fmt.Errorf(errFailedPutObjectFmt, key, err)
	}

	return nil
}

func (c *Client) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	obj, err := c.client.GetObject(ctx, c.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf(errFailedGetObjectFmt, key, err)
	}

	// GetObject is lazy; Stat surfaces a missing key before the body is read.
	if _, err := obj.Stat(); err != nil {
		obj.Close()
		return nil, fmt.Errorf(errFailedGetObjectFmt, key, err)
	}

	return obj, nil
}

func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.client.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf(errFailedDeleteObjectFmt, key, err)
	}

	return nil
}

func (c *Client) DeleteMany(ctx context.Context, keys []string) error {
	objects := make(chan minio.ObjectInfo, len(keys))
	for _, key := range keys {
		objects <- minio.ObjectInfo{Key: key}
	}
	close(objects)

	var failed int
	var first minio.RemoveObjectError
	for removeErr := range c.client.RemoveObjects(ctx, c.bucket, objects, minio.RemoveObjectsOptions{}) {
		if failed == 0 {
			first = removeErr
		}
		failed++
	}

	if failed > 0 {
		return fmt.Errorf(errFailedDeleteObjectsFmt, failed, first.ObjectName, first.Err)
	}

	return nil
}

func (c *Client) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	u, err := c.client.PresignedGetObject(ctx, c.bucket, key, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf(errFailedPresignURLFmt, key, err)
	}

	return u.String(), nil
}
