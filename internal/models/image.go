package models

import (
	"time"

	"github.com/google/uuid"
)

type Tag struct {
	ID   int64  `json:"-" db:"id"`
	Name string `json:"name" db:"name"`
	Slug string `json:"slug" db:"slug"`
}

type Image struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Title       string    `json:"title" db:"title"`
	Description *string   `json:"description" db:"description"`
	Filename    string    `json:"filename" db:"filename"`
	BlobKey     string    `json:"-" db:"blob_key"`
	URL         string    `json:"image" db:"url"`
	ContentType string    `json:"content_type" db:"content_type"`
	Size        int64     `json:"size" db:"size_bytes"`
	Width       int       `json:"width" db:"width"`
	Height      int       `json:"height" db:"height"`
	Tags        []Tag     `json:"tags"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// NewImage is an assembled record that has not been written yet.
type NewImage struct {
	ID          uuid.UUID
	Title       string
	Description *string
	Filename    string
	BlobKey     string
	URL         string
	ContentType string
	Size        int64
	Width       int
	Height      int
	Tags        []Tag
}

// ImageUpdate carries the mutable fields of an image. Nil fields are left
// untouched; Tags replaces the whole set only when ReplaceTags is true.
type ImageUpdate struct {
	Title       *string
	Description *string
	Tags        []Tag
	ReplaceTags bool
}

type ImageFilter struct {
	Tags          []string
	CreatedDate   *time.Time
	CreatedAfter  *time.Time
	CreatedBefore *time.Time
	Random        bool
	Limit         int
	Offset        int
}

func TagNames(tags []Tag) []string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return names
}

// Day truncates t to midnight UTC. Date filters compare whole days.
func Day(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
