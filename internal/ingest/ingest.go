// Package ingest turns upload requests into persisted image records and keeps
// records and blobs in step on update and delete.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"imageBackend/internal/blob"
	"imageBackend/internal/lib/apperr"
	"imageBackend/internal/lib/logger/sl"
	"imageBackend/internal/metrics"
	"imageBackend/internal/models"
	"imageBackend/internal/processor"
	"imageBackend/internal/tags"
)

type ImageRepository interface {
	CreateImage(ctx context.Context, in models.NewImage) (*models.Image, error)
	GetImage(ctx context.Context, id uuid.UUID) (*models.Image, error)
	UpdateImage(ctx context.Context, id uuid.UUID, upd models.ImageUpdate) (*models.Image, error)
	DeleteImage(ctx context.Context, id uuid.UUID) (*models.Image, error)
}

type TagResolver interface {
	Resolve(ctx context.Context, names []string) ([]models.Tag, error)
}

type BlobStore interface {
	Store(ctx context.Context, name string, data []byte, contentType string) (string, error)
}

// Discarder removes a blob in the background. It never reports failure.
type Discarder interface {
	Discard(ctx context.Context, key string)
}

type UploadInput struct {
	Title       string               `json:"title" validate:"required,max=255"`
	Description *string              `json:"description" validate:"omitnil,max=4000"`
	Tags        []string             `json:"tags" validate:"dive,max=50"`
	AliasTags   []string             `json:"tags[]" validate:"dive,max=50"`
	FileExt     string               `json:"file_ext"`
	File        *processor.RawUpload `json:"image" validate:"required"`
}

// UpdateInput holds the fields a client may change. A nil Tags leaves the
// tag set alone; an empty one clears it.
type UpdateInput struct {
	Title       *string  `json:"title" validate:"omitnil,min=1,max=255"`
	Description *string  `json:"description" validate:"omitnil,max=4000"`
	Tags        []string `json:"tags" validate:"omitempty,dive,max=50"`
}

type Deps struct {
	Normalizer *processor.Normalizer
	Pool       *processor.Pool
	Tags       TagResolver
	Images     ImageRepository
	Blobs      BlobStore
	Cleanup    Discarder
	Metrics    *metrics.Metrics
}

type Service struct {
	log        *slog.Logger
	validate   *validator.Validate
	normalizer *processor.Normalizer
	pool       *processor.Pool
	tags       TagResolver
	images     ImageRepository
	blobs      BlobStore
	cleanup    Discarder
	metrics    *metrics.Metrics
}

func New(log *slog.Logger, deps Deps) *Service {
	return &Service{
		log:        log,
		validate:   NewValidator(),
		normalizer: deps.Normalizer,
		pool:       deps.Pool,
		tags:       deps.Tags,
		images:     deps.Images,
		blobs:      deps.Blobs,
		cleanup:    deps.Cleanup,
		metrics:    deps.Metrics,
	}
}

// NewValidator reports fields under their json names.
func NewValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Upload validates and normalizes the image, resolves its tags, stores the
// blob and writes the record. A rejected upload leaves nothing behind; tags
// created before a later storage failure are kept.
func (s *Service) Upload(ctx context.Context, in UploadInput) (*models.Image, error) {
	const op = "ingest.Upload"

	log := s.log.With(slog.String("op", op))

	img, err := s.upload(ctx, log, in)
	switch {
	case err == nil:
		s.metrics.Upload(metrics.UploadCreated)
	case apperr.IsValidation(err):
		s.metrics.Upload(metrics.UploadRejected)
	default:
		s.metrics.Upload(metrics.UploadFailed)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return img, nil
}

func (s *Service) upload(ctx context.Context, log *slog.Logger, in UploadInput) (*models.Image, error) {
	if err := s.validate.Struct(in); err != nil {
		return nil, apperr.Validation("invalid request", err)
	}
	if len(in.File.Data) == 0 {
		return nil, apperr.Validation("received empty file", nil)
	}
	if in.FileExt != "" {
		if _, err := processor.FormatFromExt(in.FileExt); err != nil {
			return nil, apperr.Validation("unsupported extension", err)
		}
	}

	var normalized *processor.Normalized
	err := s.pool.Do(ctx, func() error {
		start := time.Now()

		var err error
		normalized, err = s.normalizer.Normalize(*in.File, in.FileExt)
		if err != nil {
			return err
		}

		s.metrics.ObserveNormalize(string(normalized.Action), time.Since(start))
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("image normalized",
		slog.String("action", string(normalized.Action)),
		slog.String("filename", normalized.Filename),
		slog.Int64("size", normalized.Size),
	)

	tagList, err := s.tags.Resolve(ctx, tags.MergeKeys(in.Tags, in.AliasTags))
	if err != nil {
		return nil, err
	}

	id := uuid.New()
	key := blob.Key(id, normalized.Filename)

	url, err := s.blobs.Store(ctx, key, normalized.Data, normalized.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store blob: %w", err)
	}

	img, err := s.images.CreateImage(ctx, models.NewImage{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Filename:    normalized.Filename,
		BlobKey:     key,
		URL:         url,
		ContentType: normalized.ContentType,
		Size:        normalized.Size,
		Width:       normalized.Width,
		Height:      normalized.Height,
		Tags:        tagList,
	})
	if err != nil {
		log.Error("failed to save image record, discarding blob", slog.String("blob_key", key), sl.Err(err))
		s.cleanup.Discard(ctx, key)
		return nil, fmt.Errorf("create image: %w", err)
	}

	log.Info("image uploaded", slog.String("image_id", img.ID.String()), slog.Int("tags", len(img.Tags)))

	return img, nil
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateInput) (*models.Image, error) {
	const op = "ingest.Update"

	if err := s.validate.Struct(in); err != nil {
		return nil, fmt.Errorf("%s: %w", op, apperr.Validation("invalid request", err))
	}

	if _, err := s.images.GetImage(ctx, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	upd := models.ImageUpdate{
		Title:       in.Title,
		Description: in.Description,
	}

	if in.Tags != nil {
		tagList, err := s.tags.Resolve(ctx, in.Tags)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		upd.Tags = tagList
		upd.ReplaceTags = true
	}

	img, err := s.images.UpdateImage(ctx, id, upd)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return img, nil
}

// Delete removes the record and then, best effort, its blob.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "ingest.Delete"

	img, err := s.images.DeleteImage(ctx, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	s.cleanup.Discard(ctx, img.BlobKey)

	return nil
}

// ValidationErrors extracts validator field errors from err, if any.
func ValidationErrors(err error) (validator.ValidationErrors, bool) {
	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		return vErrs, true
	}
	return nil, false
}
