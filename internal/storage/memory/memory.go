// Package memory is a process-local persistence driver with the same
// uniqueness rules as the postgres one.
package memory

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"imageBackend/internal/models"
	"imageBackend/internal/storage"
	"imageBackend/internal/tags"
)

type Storage struct {
	mu      sync.RWMutex
	images  map[uuid.UUID]*models.Image
	order   []uuid.UUID
	tags    map[int64]models.Tag
	byName  map[string]int64
	bySlug  map[string]int64
	lastTag int64
	now     func() time.Time
}

func New() *Storage {
	return &Storage{
		images: make(map[uuid.UUID]*models.Image),
		tags:   make(map[int64]models.Tag),
		byName: make(map[string]int64),
		bySlug: make(map[string]int64),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Storage) CreateImage(_ context.Context, in models.NewImage) (*models.Image, error) {
	const op = "storage.memory.CreateImage"

	s.mu.Lock()
	defer s.mu.Unlock()

	id := in.ID
	if id == uuid.Nil {
		id = uuid.New()
	}
	if _, ok := s.images[id]; ok {
		return nil, fmt.Errorf("%s: image %s already exists", op, id)
	}

	for _, t := range in.Tags {
		if _, ok := s.tags[t.ID]; !ok {
			return nil, fmt.Errorf("%s: %w: id %d", op, storage.ErrTagNotFound, t.ID)
		}
	}

	now := s.now()
	img := &models.Image{
		ID:          id,
		Title:       in.Title,
		Description: in.Description,
		Filename:    in.Filename,
		BlobKey:     in.BlobKey,
		URL:         in.URL,
		ContentType: in.ContentType,
		Size:        in.Size,
		Width:       in.Width,
		Height:      in.Height,
		Tags:        uniqueTags(in.Tags),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	s.images[id] = img
	s.order = append(s.order, id)

	return cloneImage(img), nil
}

func (s *Storage) GetImage(_ context.Context, id uuid.UUID) (*models.Image, error) {
	const op = "storage.memory.GetImage"

	s.mu.RLock()
	defer s.mu.RUnlock()

	img, ok := s.images[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrImageNotFound)
	}

	return cloneImage(img), nil
}

func (s *Storage) UpdateImage(_ context.Context, id uuid.UUID, upd models.ImageUpdate) (*models.Image, error) {
	const op = "storage.memory.UpdateImage"

	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrImageNotFound)
	}

	if upd.Title != nil {
		img.Title = *upd.Title
	}
	if upd.Description != nil {
		d := *upd.Description
		img.Description = &d
	}
	if upd.ReplaceTags {
		img.Tags = uniqueTags(upd.Tags)
	}
	img.UpdatedAt = s.now()

	return cloneImage(img), nil
}

func (s *Storage) DeleteImage(_ context.Context, id uuid.UUID) (*models.Image, error) {
	const op = "storage.memory.DeleteImage"

	s.mu.Lock()
	defer s.mu.Unlock()

	img, ok := s.images[id]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrImageNotFound)
	}

	delete(s.images, id)
	for i, oid := range s.order {
		if oid == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}

	return img, nil
}

func (s *Storage) ListImages(_ context.Context, filter models.ImageFilter) ([]models.Image, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	wanted := make(map[string]struct{}, len(filter.Tags))
	for _, t := range filter.Tags {
		wanted[t] = struct{}{}
	}

	out := make([]models.Image, 0, len(s.order))
	for _, id := range s.order {
		img := s.images[id]
		if len(wanted) > 0 && !hasAnyTag(img, wanted) {
			continue
		}
		if !inDateRange(img.CreatedAt, filter) {
			continue
		}
		out = append(out, *cloneImage(img))
	}

	if filter.Random {
		rand.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	} else {
		sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	}

	if filter.Offset > 0 {
		if filter.Offset >= len(out) {
			return []models.Image{}, nil
		}
		out = out[filter.Offset:]
	}
	if filter.Limit > 0 && filter.Limit < len(out) {
		out = out[:filter.Limit]
	}

	return out, nil
}

func (s *Storage) ListTags(_ context.Context) ([]models.Tag, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Tag, 0, len(s.tags))
	for _, t := range s.tags {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (s *Storage) TagByName(_ context.Context, name string) (*models.Tag, error) {
	const op = "storage.memory.TagByName"

	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byName[name]
	if !ok {
		return nil, fmt.Errorf("%s: %w", op, storage.ErrTagNotFound)
	}

	t := s.tags[id]
	return &t, nil
}

func (s *Storage) InsertTag(_ context.Context, name, slug string) (*models.Tag, error) {
	const op = "storage.memory.InsertTag"

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byName[name]; ok {
		return nil, fmt.Errorf("%s: name %q: %w", op, name, storage.ErrTagExists)
	}
	if _, ok := s.bySlug[slug]; ok {
		return nil, fmt.Errorf("%s: slug %q: %w", op, slug, storage.ErrTagExists)
	}

	s.lastTag++
	t := models.Tag{ID: s.lastTag, Name: name, Slug: slug}
	s.tags[t.ID] = t
	s.byName[name] = t.ID
	s.bySlug[slug] = t.ID

	return &t, nil
}

func (s *Storage) TagSlugs(_ context.Context, base string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []string
	for slug := range s.bySlug {
		if tags.HasSlugPrefix(slug, base) {
			out = append(out, slug)
		}
	}

	return out, nil
}

func (s *Storage) Close() error {
	return nil
}

func hasAnyTag(img *models.Image, wanted map[string]struct{}) bool {
	for _, t := range img.Tags {
		if _, ok := wanted[t.Name]; ok {
			return true
		}
	}
	return false
}

func inDateRange(created time.Time, f models.ImageFilter) bool {
	day := models.Day(created)

	if f.CreatedDate != nil && !day.Equal(models.Day(*f.CreatedDate)) {
		return false
	}
	if f.CreatedAfter != nil && day.Before(models.Day(*f.CreatedAfter)) {
		return false
	}
	if f.CreatedBefore != nil && day.After(models.Day(*f.CreatedBefore)) {
		return false
	}
	return true
}

func uniqueTags(in []models.Tag) []models.Tag {
	seen := make(map[int64]struct{}, len(in))
	out := make([]models.Tag, 0, len(in))
	for _, t := range in {
		if _, ok := seen[t.ID]; ok {
			continue
		}
		seen[t.ID] = struct{}{}
		out = append(out, t)
	}
	return out
}

func cloneImage(img *models.Image) *models.Image {
	c := *img
	c.Tags = append([]models.Tag{}, img.Tags...)
	if img.Description != nil {
		d := *img.Description
		c.Description = &d
	}
	return &c
}
