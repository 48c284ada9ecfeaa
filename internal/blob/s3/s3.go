// Package s3 stores blobs in an S3 compatible bucket.
package s3

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
	// PublicURL prefixes object names in returned references. When empty the
	// bucket's virtual host URL on Endpoint is used.
	PublicURL string
}

type Store struct {
	client    *minio.Client
	bucket    string
	publicURL string
}

func New(ctx context.Context, opts Options) (*Store, error) {
	const op = "blob.s3.New"

	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	exists, err := client.BucketExists(ctx, opts.Bucket)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if !exists {
		if err = client.MakeBucket(ctx, opts.Bucket, minio.MakeBucketOptions{Region: opts.Region}); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return &Store{
		client:    client,
		bucket:    opts.Bucket,
		publicURL: publicURL(opts),
	}, nil
}

func (s *Store) Store(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	const op = "blob.s3.Store"

	_, err := s.client.PutObject(ctx, s.bucket, name, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}

	return s.publicURL + "/" + strings.TrimPrefix(name, "/"), nil
}

// Delete is idempotent: S3 reports success for missing keys.
func (s *Store) Delete(ctx context.Context, name string) error {
	const op = "blob.s3.Delete"

	if err := s.client.RemoveObject(ctx, s.bucket, name, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func publicURL(opts Options) string {
	if opts.PublicURL != "" && !strings.HasPrefix(opts.PublicURL, "/") {
		return strings.TrimSuffix(opts.PublicURL, "/")
	}

	scheme := "http"
	if opts.UseSSL {
		scheme = "https"
	}

	return fmt.Sprintf("%s://%s/%s", scheme, opts.Endpoint, opts.Bucket)
}
