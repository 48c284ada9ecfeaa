// Package blob defines the byte store for image files and picks the backend
// configured for the process.
package blob

import (
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"

	"imageBackend/internal/blob/local"
	"imageBackend/internal/blob/s3"
	"imageBackend/internal/config"
)

const (
	ModeLocal = "local"
	ModeS3    = "s3"

	prefix = "images"
)

type Store interface {
	// Store writes data under name and returns a reference clients can fetch
	// it from.
	Store(ctx context.Context, name string, data []byte, contentType string) (string, error)
	// Delete removes name. Deleting a missing blob is not an error.
	Delete(ctx context.Context, name string) error
}

func New(ctx context.Context, cfg *config.Storage) (Store, error) {
	switch cfg.Mode {
	case ModeLocal:
		return local.New(cfg.LocalRoot, cfg.PublicURL)
	case ModeS3:
		return s3.New(ctx, s3.Options{
			Endpoint:  cfg.Endpoint,
			AccessKey: cfg.AccessKey,
			SecretKey: cfg.SecretKey,
			Bucket:    cfg.Bucket,
			Region:    cfg.Region,
			UseSSL:    cfg.UseSSL,
			PublicURL: cfg.PublicURL,
		})
	}

	return nil, fmt.Errorf("unknown storage mode %q", cfg.Mode)
}

// Key derives the blob name of an image from its id and final filename.
func Key(id uuid.UUID, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	base := slug.Make(strings.TrimSuffix(filename, path.Ext(filename)))
	if base == "" {
		base = "image"
	}

	return path.Join(prefix, id.String()+"_"+base+ext)
}
