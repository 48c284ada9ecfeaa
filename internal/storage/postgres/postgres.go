package postgres

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"imageBackend/internal/config"
	"imageBackend/internal/models"
	"imageBackend/internal/storage"
	"imageBackend/internal/tags"
)

//go:embed schema.sql
var schema string

const imageColumns = `id, title, description, filename, blob_key, url, content_type, size_bytes, width, height, created_at, updated_at`

const uniqueViolation = "23505"

type Storage struct {
	DB *sql.DB
}

type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

type rowScanner interface {
	Scan(dest ...any) error
}

func InitDB(dbCfg *config.Database) (*Storage, error) {
	connStr := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		dbCfg.Host,
		dbCfg.Port,
		dbCfg.User,
		dbCfg.Password,
		dbCfg.DBName,
		dbCfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	if err = db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to the database: %w", err)
	}

	return &Storage{DB: db}, nil
}

func (s *Storage) Migrate(ctx context.Context) error {
	const op = "storage.postgres.Migrate"

	if _, err := s.DB.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (s *Storage) CreateImage(ctx context.Context, in models.NewImage) (*models.Image, error) {
	const op = "storage.postgres.CreateImage"

	id := in.ID
	if id == uuid.Nil {
		id = uuid.New()
	}

	var image *models.Image

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := `
        INSERT INTO images (id, title, description, filename, blob_key, url, content_type, size_bytes, width, height)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING ` + imageColumns

		var err error
		image, err = scanImage(tx.QueryRowContext(ctx, query,
			id,
			in.Title,
			nullString(in.Description),
			in.Filename,
			in.BlobKey,
			in.URL,
			in.ContentType,
			in.Size,
			in.Width,
			in.Height,
		))
		if err != nil {
			return err
		}

		if err = linkTags(ctx, tx, id, in.Tags); err != nil {
			return err
		}

		image.Tags, err = imageTags(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

func (s *Storage) GetImage(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	const op = "storage.postgres.GetImage"

	query := `SELECT ` + imageColumns + ` FROM images WHERE id = $1`

	image, err := scanImage(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: image with ID %s: %w", op, id, storage.ErrImageNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if image.Tags, err = imageTags(ctx, s.DB, id); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

func (s *Storage) UpdateImage(ctx context.Context, id uuid.UUID, upd models.ImageUpdate) (*models.Image, error) {
	const op = "storage.postgres.UpdateImage"

	var image *models.Image

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := `
        UPDATE images
        SET title = COALESCE($2, title), description = COALESCE($3, description), updated_at = NOW()
        WHERE id = $1
        RETURNING ` + imageColumns

		var err error
		image, err = scanImage(tx.QueryRowContext(ctx, query, id, nullString(upd.Title), nullString(upd.Description)))
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return fmt.Errorf("image with ID %s: %w", id, storage.ErrImageNotFound)
			}
			return err
		}

		if upd.ReplaceTags {
			if _, err = tx.ExecContext(ctx, `DELETE FROM image_tags WHERE image_id = $1`, id); err != nil {
				return err
			}
			if err = linkTags(ctx, tx, id, upd.Tags); err != nil {
				return err
			}
		}

		image.Tags, err = imageTags(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

// DeleteImage removes the record and its tag links and returns what was
// deleted. Tags themselves are kept.
func (s *Storage) DeleteImage(ctx context.Context, id uuid.UUID) (*models.Image, error) {
	const op = "storage.postgres.DeleteImage"

	query := `DELETE FROM images WHERE id = $1 RETURNING ` + imageColumns

	image, err := scanImage(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: image with ID %s: %w", op, id, storage.ErrImageNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return image, nil
}

func (s *Storage) ListImages(ctx context.Context, filter models.ImageFilter) ([]models.Image, error) {
	const op = "storage.postgres.ListImages"

	query, args := buildListQuery(filter)

	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	images := make([]models.Image, 0)
	index := make(map[uuid.UUID]int)
	ids := make([]string, 0)

	for rows.Next() {
		image, err := scanImage(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		image.Tags = []models.Tag{}
		index[image.ID] = len(images)
		ids = append(ids, image.ID.String())
		images = append(images, *image)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if len(ids) == 0 {
		return images, nil
	}

	tagRows, err := s.DB.QueryContext(ctx, `
        SELECT it.image_id, t.id, t.name, t.slug
        FROM image_tags it
        JOIN tags t ON t.id = it.tag_id
        WHERE it.image_id = ANY($1::uuid[])
        ORDER BY t.id`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer tagRows.Close()

	for tagRows.Next() {
		var (
			imageID uuid.UUID
			tag     models.Tag
		)
		if err = tagRows.Scan(&imageID, &tag.ID, &tag.Name, &tag.Slug); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if i, ok := index[imageID]; ok {
			images[i].Tags = append(images[i].Tags, tag)
		}
	}
	if err = tagRows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return images, nil
}

func (s *Storage) ListTags(ctx context.Context) ([]models.Tag, error) {
	const op = "storage.postgres.ListTags"

	rows, err := s.DB.QueryContext(ctx, `SELECT id, name, slug FROM tags ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	out := make([]models.Tag, 0)
	for rows.Next() {
		var t models.Tag
		if err = rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		out = append(out, t)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return out, nil
}

func (s *Storage) TagByName(ctx context.Context, name string) (*models.Tag, error) {
	const op = "storage.postgres.TagByName"

	var t models.Tag
	err := s.DB.QueryRowContext(ctx, `SELECT id, name, slug FROM tags WHERE name = $1`, name).Scan(&t.ID, &t.Name, &t.Slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrTagNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &t, nil
}

func (s *Storage) InsertTag(ctx context.Context, name, slug string) (*models.Tag, error) {
	const op = "storage.postgres.InsertTag"

	t := models.Tag{Name: name, Slug: slug}
	err := s.DB.QueryRowContext(ctx, `INSERT INTO tags (name, slug) VALUES ($1, $2) RETURNING id`, name, slug).Scan(&t.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("%s: %w", op, storage.ErrTagExists)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &t, nil
}

func (s *Storage) TagSlugs(ctx context.Context, base string) ([]string, error) {
	const op = "storage.postgres.TagSlugs"

	rows, err := s.DB.QueryContext(ctx,
		`SELECT slug FROM tags WHERE slug = $1 OR slug LIKE $2 ESCAPE '\'`,
		base, escapeLike(base)+"-%",
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var slug string
		if err = rows.Scan(&slug); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		if tags.HasSlugPrefix(slug, base) {
			out = append(out, slug)
		}
	}

	return out, rows.Err()
}

func (s *Storage) Close() error {
	return s.DB.Close()
}

func (s *Storage) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if err = fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	return tx.Commit()
}

func linkTags(ctx context.Context, q querier, imageID uuid.UUID, list []models.Tag) error {
	for _, t := range list {
		_, err := q.ExecContext(ctx,
			`INSERT INTO image_tags (image_id, tag_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
			imageID, t.ID,
		)
		if err != nil {
			return fmt.Errorf("link tag %q: %w", t.Name, err)
		}
	}
	return nil
}

func imageTags(ctx context.Context, q querier, imageID uuid.UUID) ([]models.Tag, error) {
	rows, err := q.QueryContext(ctx, `
        SELECT t.id, t.name, t.slug
        FROM image_tags it
        JOIN tags t ON t.id = it.tag_id
        WHERE it.image_id = $1
        ORDER BY t.id`, imageID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]models.Tag, 0)
	for rows.Next() {
		var t models.Tag
		if err = rows.Scan(&t.ID, &t.Name, &t.Slug); err != nil {
			return nil, err
		}
		out = append(out, t)
	}

	return out, rows.Err()
}

func scanImage(row rowScanner) (*models.Image, error) {
	var (
		image       models.Image
		description sql.NullString
	)

	err := row.Scan(
		&image.ID,
		&image.Title,
		&description,
		&image.Filename,
		&image.BlobKey,
		&image.URL,
		&image.ContentType,
		&image.Size,
		&image.Width,
		&image.Height,
		&image.CreatedAt,
		&image.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		image.Description = &description.String
	}

	return &image, nil
}

// buildListQuery renders filter as SQL. Date bounds are whole days in UTC
// and inclusive on both ends.
func buildListQuery(filter models.ImageFilter) (string, []any) {
	var (
		where []string
		args  []any
	)

	arg := func(v any) string {
		args = append(args, v)
		return "$" + strconv.Itoa(len(args))
	}

	if len(filter.Tags) > 0 {
		where = append(where, `EXISTS (SELECT 1 FROM image_tags it JOIN tags t ON t.id = it.tag_id WHERE it.image_id = i.id AND t.name = ANY(`+arg(pq.Array(filter.Tags))+`))`)
	}
	if filter.CreatedDate != nil {
		day := models.Day(*filter.CreatedDate)
		where = append(where, `i.created_at >= `+arg(day)+` AND i.created_at < `+arg(day.AddDate(0, 0, 1)))
	}
	if filter.CreatedAfter != nil {
		where = append(where, `i.created_at >= `+arg(models.Day(*filter.CreatedAfter)))
	}
	if filter.CreatedBefore != nil {
		where = append(where, `i.created_at < `+arg(models.Day(*filter.CreatedBefore).AddDate(0, 0, 1)))
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + imageColumns + ` FROM images i`)
	if len(where) > 0 {
		b.WriteString(` WHERE ` + strings.Join(where, ` AND `))
	}
	if filter.Random {
		b.WriteString(` ORDER BY random()`)
	} else {
		b.WriteString(` ORDER BY i.created_at, i.id`)
	}
	if filter.Limit > 0 {
		b.WriteString(` LIMIT ` + arg(filter.Limit))
	}
	if filter.Offset > 0 {
		b.WriteString(` OFFSET ` + arg(filter.Offset))
	}

	return b.String(), args
}

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
