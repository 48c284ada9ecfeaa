package tags

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"imageBackend/internal/lib/logger/sl"
	"imageBackend/internal/models"
	"imageBackend/internal/storage"
)

const maxCreateAttempts = 5

//go:generate go run github.com/vektra/mockery/v2@v2.51.1 --name=Store
type Store interface {
	TagByName(ctx context.Context, name string) (*models.Tag, error)
	InsertTag(ctx context.Context, name, slug string) (*models.Tag, error)
	TagSlugs(ctx context.Context, base string) ([]string, error)
}

type Resolver struct {
	log   *slog.Logger
	store Store
}

func NewResolver(log *slog.Logger, store Store) *Resolver {
	return &Resolver{
		log:   log,
		store: store,
	}
}

// Resolve turns raw tag names into tag records, creating missing ones.
// Names are trimmed, blank names are dropped and duplicates collapse onto
// their first occurrence.
func (r *Resolver) Resolve(ctx context.Context, names []string) ([]models.Tag, error) {
	const op = "tags.Resolve"

	clean := Normalize(names)
	tags := make([]models.Tag, 0, len(clean))

	for _, name := range clean {
		tag, err := r.GetOrCreate(ctx, name)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		tags = append(tags, *tag)
	}

	return tags, nil
}

// GetOrCreate ensures a tag named exactly name exists. Two callers racing on
// the same new name both end up with the single row the store kept: the
// loser's insert fails with storage.ErrTagExists and it reads the winner's.
func (r *Resolver) GetOrCreate(ctx context.Context, name string) (*models.Tag, error) {
	const op = "tags.GetOrCreate"

	base := Slugify(name)

	for attempt := 0; attempt < maxCreateAttempts; attempt++ {
		tag, err := r.store.TagByName(ctx, name)
		if err == nil {
			return tag, nil
		}
		if !errors.Is(err, storage.ErrTagNotFound) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		taken, err := r.store.TagSlugs(ctx, base)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		tag, err = r.store.InsertTag(ctx, name, NextSlug(base, taken))
		if err == nil {
			r.log.Debug("tag created", slog.String("op", op), slog.String("name", tag.Name), slog.String("slug", tag.Slug))
			return tag, nil
		}
		if !errors.Is(err, storage.ErrTagExists) {
			return nil, fmt.Errorf("%s: %w", op, err)
		}

		r.log.Debug("tag insert conflicted, retrying", slog.String("op", op), slog.String("name", name), sl.Err(err))
	}

	return nil, fmt.Errorf("%s: gave up on tag %q after %d attempts", op, name, maxCreateAttempts)
}

// MergeKeys joins the tag lists submitted under the primary and the bracketed
// alias key, primary entries first.
func MergeKeys(primary, alias []string) []string {
	merged := make([]string, 0, len(primary)+len(alias))
	merged = append(merged, primary...)
	return append(merged, alias...)
}

// Normalize trims names, drops blanks and removes repeats, keeping order.
func Normalize(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := make([]string, 0, len(names))

	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}

	return out
}
