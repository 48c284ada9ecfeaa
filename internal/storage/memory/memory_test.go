package memory

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"imageBackend/internal/models"
	"imageBackend/internal/storage"
)

func seed(t *testing.T, s *Storage, title string, created time.Time, tagList ...models.Tag) *models.Image {
	t.Helper()

	s.now = func() time.Time { return created }

	img, err := s.CreateImage(context.Background(), models.NewImage{
		ID:      uuid.New(),
		Title:   title,
		BlobKey: "images/" + title,
		Tags:    tagList,
	})
	require.NoError(t, err)
	return img
}

func titles(images []models.Image) []string {
	out := make([]string, 0, len(images))
	for _, img := range images {
		out = append(out, img.Title)
	}
	return out
}

func day(s string) *time.Time {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func TestListImagesFilters(t *testing.T) {
	ctx := context.Background()
	s := New()

	cat, err := s.InsertTag(ctx, "cat", "cat")
	require.NoError(t, err)
	dog, err := s.InsertTag(ctx, "dog", "dog")
	require.NoError(t, err)

	seed(t, s, "first", time.Date(2024, 3, 1, 23, 59, 0, 0, time.UTC), *cat)
	seed(t, s, "second", time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC), *dog)
	seed(t, s, "third", time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC), *cat, *dog)
	seed(t, s, "fourth", time.Date(2024, 3, 4, 8, 0, 0, 0, time.UTC))

	tests := []struct {
		name   string
		filter models.ImageFilter
		want   []string
	}{
		{name: "All", filter: models.ImageFilter{}, want: []string{"first", "second", "third", "fourth"}},
		{name: "Tag", filter: models.ImageFilter{Tags: []string{"cat"}}, want: []string{"first", "third"}},
		{name: "Tags OR", filter: models.ImageFilter{Tags: []string{"cat", "dog"}}, want: []string{"first", "second", "third"}},
		{name: "Unknown Tag", filter: models.ImageFilter{Tags: []string{"bird"}}, want: []string{}},
		{name: "Exact Date", filter: models.ImageFilter{CreatedDate: day("2024-03-02")}, want: []string{"second"}},
		{name: "After Inclusive", filter: models.ImageFilter{CreatedAfter: day("2024-03-03")}, want: []string{"third", "fourth"}},
		{name: "Before Inclusive", filter: models.ImageFilter{CreatedBefore: day("2024-03-02")}, want: []string{"first", "second"}},
		{name: "Range", filter: models.ImageFilter{CreatedAfter: day("2024-03-02"), CreatedBefore: day("2024-03-03")}, want: []string{"second", "third"}},
		{name: "Limit", filter: models.ImageFilter{Limit: 2}, want: []string{"first", "second"}},
		{name: "Offset", filter: models.ImageFilter{Offset: 1, Limit: 2}, want: []string{"second", "third"}},
		{name: "Offset Past End", filter: models.ImageFilter{Offset: 10}, want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images, err := s.ListImages(ctx, tt.filter)
			require.NoError(t, err)
			require.Equal(t, tt.want, titles(images))
		})
	}

	t.Run("Random", func(t *testing.T) {
		images, err := s.ListImages(ctx, models.ImageFilter{Random: true})
		require.NoError(t, err)
		require.ElementsMatch(t, []string{"first", "second", "third", "fourth"}, titles(images))
	})
}

func TestImageLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New()

	tag, err := s.InsertTag(ctx, "sea", "sea")
	require.NoError(t, err)

	img := seed(t, s, "wave", time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC), *tag, *tag)
	require.Len(t, img.Tags, 1)

	desc := "blue"
	updated, err := s.UpdateImage(ctx, img.ID, models.ImageUpdate{Description: &desc})
	require.NoError(t, err)
	require.Equal(t, "wave", updated.Title)
	require.Equal(t, "blue", *updated.Description)
	require.Len(t, updated.Tags, 1)
	require.Equal(t, img.CreatedAt, updated.CreatedAt)

	updated, err = s.UpdateImage(ctx, img.ID, models.ImageUpdate{ReplaceTags: true})
	require.NoError(t, err)
	require.Empty(t, updated.Tags)

	// Returned records are copies.
	updated.Title = "mutated"
	got, err := s.GetImage(ctx, img.ID)
	require.NoError(t, err)
	require.Equal(t, "wave", got.Title)

	deleted, err := s.DeleteImage(ctx, img.ID)
	require.NoError(t, err)
	require.Equal(t, "images/wave", deleted.BlobKey)

	_, err = s.GetImage(ctx, img.ID)
	require.ErrorIs(t, err, storage.ErrImageNotFound)
	_, err = s.UpdateImage(ctx, img.ID, models.ImageUpdate{})
	require.ErrorIs(t, err, storage.ErrImageNotFound)
	_, err = s.DeleteImage(ctx, img.ID)
	require.ErrorIs(t, err, storage.ErrImageNotFound)

	// Tags outlive the images that used them.
	_, err = s.TagByName(ctx, "sea")
	require.NoError(t, err)
}

func TestCreateImageUnknownTag(t *testing.T) {
	s := New()

	_, err := s.CreateImage(context.Background(), models.NewImage{
		Title: "ghost",
		Tags:  []models.Tag{{ID: 99, Name: "ghost", Slug: "ghost"}},
	})
	require.ErrorIs(t, err, storage.ErrTagNotFound)
}

func TestInsertTagUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.InsertTag(ctx, "Test Tag", "test-tag")
	require.NoError(t, err)

	_, err = s.InsertTag(ctx, "Test Tag", "test-tag-2")
	require.ErrorIs(t, err, storage.ErrTagExists)

	_, err = s.InsertTag(ctx, "test tag", "test-tag")
	require.ErrorIs(t, err, storage.ErrTagExists)

	_, err = s.InsertTag(ctx, "test tag", "test-tag-2")
	require.NoError(t, err)

	slugs, err := s.TagSlugs(ctx, "test-tag")
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"test-tag", "test-tag-2"}, slugs)

	_, err = s.TagByName(ctx, "missing")
	require.ErrorIs(t, err, storage.ErrTagNotFound)
}
